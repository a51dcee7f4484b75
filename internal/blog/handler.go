package blog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumina-dental/portal/pkg/logging"
)

// Reader is the slice of the CMS client the handler needs.
type Reader interface {
	Posts(ctx context.Context) ([]Post, error)
	PostBySlug(ctx context.Context, slug string) (*Post, error)
}

// Handler exposes the blog read endpoints.
type Handler struct {
	reader Reader
	logger *logging.Logger
}

// NewHandler creates a blog handler.
func NewHandler(reader Reader, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{reader: reader, logger: logger}
}

type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// List handles GET /api/blog/posts.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.reader.Posts(r.Context())
	if err != nil {
		if errors.Is(err, ErrDisabled) {
			h.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "ok", Data: []Post{}})
			return
		}
		h.logger.Error("failed to list posts", "error", err)
		h.writeJSON(w, http.StatusBadGateway, envelope{Message: "failed to load posts"})
		return
	}
	h.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "ok", Data: posts})
}

// Get handles GET /api/blog/posts/{slug}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, err := h.reader.PostBySlug(r.Context(), slug)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrDisabled):
			h.writeJSON(w, http.StatusNotFound, envelope{Message: "post not found"})
		default:
			h.logger.Error("failed to load post", "error", err, "slug", slug)
			h.writeJSON(w, http.StatusBadGateway, envelope{Message: "failed to load post"})
		}
		return
	}
	h.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "ok", Data: post})
}
