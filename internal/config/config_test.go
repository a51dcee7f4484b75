package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q", cfg.Env)
	}
	if cfg.BookingSubmitTimeout != 5*time.Second {
		t.Errorf("BookingSubmitTimeout = %v, want 5s", cfg.BookingSubmitTimeout)
	}
	if cfg.BookingFlowTTL != 2*time.Hour {
		t.Errorf("BookingFlowTTL = %v", cfg.BookingFlowTTL)
	}
	if !cfg.OptimisticSubmit {
		t.Error("OptimisticSubmit default = false, want true")
	}
	if cfg.SessionTTL != 7*24*time.Hour {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.CatalogCacheTTL != 5*time.Minute {
		t.Errorf("CatalogCacheTTL = %v", cfg.CatalogCacheTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BOOKING_SUBMIT_TIMEOUT", "2s")
	t.Setenv("BOOKING_OPTIMISTIC_SUBMIT", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://luminadental.com, https://www.luminadental.com")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.BookingSubmitTimeout != 2*time.Second {
		t.Errorf("BookingSubmitTimeout = %v", cfg.BookingSubmitTimeout)
	}
	if cfg.OptimisticSubmit {
		t.Error("OptimisticSubmit override ignored")
	}
	want := []string{"https://luminadental.com", "https://www.luminadental.com"}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[0] != want[0] || cfg.CORSAllowedOrigins[1] != want[1] {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadBadDurationFallsBack(t *testing.T) {
	t.Setenv("BOOKING_SUBMIT_TIMEOUT", "soon")
	cfg := Load()
	if cfg.BookingSubmitTimeout != 5*time.Second {
		t.Errorf("BookingSubmitTimeout = %v, want default on parse failure", cfg.BookingSubmitTimeout)
	}
}
