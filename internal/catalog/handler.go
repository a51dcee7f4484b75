package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/lumina-dental/portal/internal/scheduling"
	"github.com/lumina-dental/portal/pkg/logging"
)

// SlotSource fetches open appointment slots from the scheduling backend.
type SlotSource interface {
	GetAvailabilities(ctx context.Context, providerID, serviceID int, date string) ([]string, error)
}

// Handler exposes the catalog and availability endpoints.
type Handler struct {
	cache  *Cache
	slots  SlotSource
	logger *logging.Logger
}

// NewHandler creates a catalog handler.
func NewHandler(cache *Cache, slots SlotSource, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{cache: cache, slots: slots, logger: logger}
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

func (h *Handler) writeRemoteError(w http.ResponseWriter, err error, fallback string) {
	if msg, ok := scheduling.RemoteMessage(err); ok {
		h.writeJSON(w, http.StatusBadGateway, envelope{Message: msg})
		return
	}
	h.writeJSON(w, http.StatusBadGateway, envelope{Message: fallback})
}

// Services handles GET /api/services.
func (h *Handler) Services(w http.ResponseWriter, r *http.Request) {
	services, err := h.cache.Services(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch services", "error", err)
		h.writeRemoteError(w, err, "failed to load services")
		return
	}
	h.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "ok", Data: services})
}

// Providers handles GET /api/providers.
func (h *Handler) Providers(w http.ResponseWriter, r *http.Request) {
	providers, err := h.cache.Providers(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch providers", "error", err)
		h.writeRemoteError(w, err, "failed to load providers")
		return
	}
	h.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "ok", Data: providers})
}

// Availabilities handles GET /api/availabilities. Query parameters:
// providerId, serviceId, date (YYYY-MM-DD). Results are never cached.
func (h *Handler) Availabilities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	providerID, err := strconv.Atoi(q.Get("providerId"))
	if err != nil || providerID <= 0 {
		h.writeJSON(w, http.StatusBadRequest, envelope{Message: "providerId must be a positive integer"})
		return
	}
	serviceID, err := strconv.Atoi(q.Get("serviceId"))
	if err != nil || serviceID <= 0 {
		h.writeJSON(w, http.StatusBadRequest, envelope{Message: "serviceId must be a positive integer"})
		return
	}
	date := q.Get("date")
	if date == "" {
		h.writeJSON(w, http.StatusBadRequest, envelope{Message: "date is required (YYYY-MM-DD)"})
		return
	}

	slots, err := h.slots.GetAvailabilities(r.Context(), providerID, serviceID, date)
	if err != nil {
		h.logger.Error("failed to fetch availabilities", "error", err,
			"provider_id", providerID, "service_id", serviceID, "date", date)
		h.writeRemoteError(w, err, "failed to load availabilities")
		return
	}
	if slots == nil {
		slots = []string{}
	}
	h.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "ok", Data: slots})
}
