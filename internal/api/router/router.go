// Package router assembles the portal's HTTP routes.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lumina-dental/portal/internal/accounts"
	"github.com/lumina-dental/portal/internal/blog"
	"github.com/lumina-dental/portal/internal/catalog"
	"github.com/lumina-dental/portal/internal/http/handlers"
	httpmiddleware "github.com/lumina-dental/portal/internal/http/middleware"
	"github.com/lumina-dental/portal/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger          *logging.Logger
	AccountsHandler *accounts.Handler
	CatalogHandler  *catalog.Handler
	BookingHandler  *handlers.BookingHandler
	BlogHandler     *blog.Handler

	SessionVerifier   httpmiddleware.SessionVerifier
	SessionCookieName string

	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates the chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.SessionVerifier != nil {
		cookieName := cfg.SessionCookieName
		if cookieName == "" {
			cookieName = accounts.SessionCookieName
		}
		r.Use(httpmiddleware.Session(cookieName, cfg.SessionVerifier))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.AccountsHandler != nil {
			api.Route("/auth", func(auth chi.Router) {
				auth.Use(httpmiddleware.RateLimit(2, 10))
				auth.Post("/register", cfg.AccountsHandler.Register)
				auth.Post("/login", cfg.AccountsHandler.Login)
				auth.Post("/logout", cfg.AccountsHandler.Logout)
			})
			api.Group(func(me chi.Router) {
				me.Use(httpmiddleware.RequireSession)
				me.Get("/me", cfg.AccountsHandler.Me)
				me.Get("/me/appointments", cfg.AccountsHandler.MyAppointments)
			})
		}

		if cfg.CatalogHandler != nil {
			api.Get("/services", cfg.CatalogHandler.Services)
			api.Get("/providers", cfg.CatalogHandler.Providers)
			api.Get("/availabilities", cfg.CatalogHandler.Availabilities)
		}

		if cfg.BookingHandler != nil {
			api.Route("/booking/flows", func(flows chi.Router) {
				flows.Use(httpmiddleware.RateLimit(5, 20))
				flows.Post("/", cfg.BookingHandler.Create)
				flows.Route("/{id}", func(flow chi.Router) {
					flow.Get("/", cfg.BookingHandler.Get)
					flow.Patch("/fields", cfg.BookingHandler.UpdateFields)
					flow.Post("/advance", cfg.BookingHandler.Advance)
					flow.Post("/back", cfg.BookingHandler.Back)
					flow.Post("/submit", cfg.BookingHandler.Submit)
					flow.Delete("/", cfg.BookingHandler.Cancel)
				})
			})
		}

		if cfg.BlogHandler != nil {
			api.Route("/blog/posts", func(posts chi.Router) {
				posts.Get("/", cfg.BlogHandler.List)
				posts.Get("/{slug}", cfg.BlogHandler.Get)
			})
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
