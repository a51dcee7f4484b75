package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Scheduling backend (EasyAppointments-compatible REST API)
	SchedulingBaseURL  string
	SchedulingUsername string
	SchedulingPassword string
	SchedulingTimeout  time.Duration

	// Booking flow behavior
	BookingSubmitTimeout time.Duration
	BookingFlowTTL       time.Duration
	OptimisticSubmit     bool

	// Portal sessions
	SessionSecret string
	SessionTTL    time.Duration

	// Catalog cache
	CatalogCacheTTL time.Duration

	// Headless CMS (blog)
	CMSBaseURL   string
	CMSProjectID string
	CMSDataset   string

	// SendGrid Email Configuration
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		SchedulingBaseURL:  getEnv("SCHEDULING_BASE_URL", "http://localhost:8080/index.php/api/v1"),
		SchedulingUsername: getEnv("SCHEDULING_USERNAME", ""),
		SchedulingPassword: getEnv("SCHEDULING_PASSWORD", ""),
		SchedulingTimeout:  getEnvAsDuration("SCHEDULING_TIMEOUT", 15*time.Second),

		BookingSubmitTimeout: getEnvAsDuration("BOOKING_SUBMIT_TIMEOUT", 5*time.Second),
		BookingFlowTTL:       getEnvAsDuration("BOOKING_FLOW_TTL", 2*time.Hour),
		OptimisticSubmit:     getEnvAsBool("BOOKING_OPTIMISTIC_SUBMIT", true),

		SessionSecret: getEnv("SESSION_SECRET", ""),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 7*24*time.Hour),

		CatalogCacheTTL: getEnvAsDuration("CATALOG_CACHE_TTL", 5*time.Minute),

		CMSBaseURL:   getEnv("CMS_BASE_URL", ""),
		CMSProjectID: getEnv("CMS_PROJECT_ID", ""),
		CMSDataset:   getEnv("CMS_DATASET", "production"),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Lumina Dental"),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
