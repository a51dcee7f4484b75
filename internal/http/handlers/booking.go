// Package handlers holds the HTTP layer for the booking flow endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumina-dental/portal/internal/accounts"
	"github.com/lumina-dental/portal/internal/booking"
	"github.com/lumina-dental/portal/internal/http/middleware"
	"github.com/lumina-dental/portal/internal/notify"
	"github.com/lumina-dental/portal/internal/scheduling"
	"github.com/lumina-dental/portal/pkg/logging"
)

// BookingHandler drives the multi-step booking flow over HTTP. Flow state
// lives server-side in the FlowStore; the client only carries the flow id.
type BookingHandler struct {
	store     booking.FlowStore
	submitter *booking.Submitter
	history   accounts.Repository
	notifier  *notify.Service
	logger    *logging.Logger
}

// NewBookingHandler creates a booking flow handler. history and notifier may
// be nil; submissions then skip the portal record and the email.
func NewBookingHandler(store booking.FlowStore, submitter *booking.Submitter, history accounts.Repository, notifier *notify.Service, logger *logging.Logger) *BookingHandler {
	if store == nil {
		panic("handlers: flow store required")
	}
	if submitter == nil {
		panic("handlers: submitter required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingHandler{
		store:     store,
		submitter: submitter,
		history:   history,
		notifier:  notifier,
		logger:    logger,
	}
}

type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// flowView is the flow as rendered to the client, with the step named.
type flowView struct {
	ID        string        `json:"id"`
	Step      int           `json:"step"`
	StepName  string        `json:"stepName"`
	Draft     booking.Draft `json:"draft"`
	UpdatedAt string        `json:"updatedAt"`
}

func viewOf(f *booking.Flow) flowView {
	return flowView{
		ID:        f.ID,
		Step:      int(f.Step),
		StepName:  f.Step.String(),
		Draft:     f.Draft,
		UpdatedAt: f.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Create handles POST /api/booking/flows.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	flow := booking.NewFlow()
	if err := h.store.Save(r.Context(), flow); err != nil {
		h.logger.Error("failed to create booking flow", "error", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Message: "failed to start booking"})
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Success: true, Message: "booking started", Data: viewOf(flow)})
}

// Get handles GET /api/booking/flows/{id}.
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.loadFlow(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "ok", Data: viewOf(flow)})
}

// UpdateFields handles PATCH /api/booking/flows/{id}/fields. The body is a
// flat map of draft field keys to values; unknown keys reject the whole
// request and leave the draft untouched.
func (h *BookingHandler) UpdateFields(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.loadFlow(w, r)
	if !ok {
		return
	}

	var fields map[string]string
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "invalid request body"})
		return
	}
	if len(fields) == 0 {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "no fields provided"})
		return
	}

	updated := flow.Draft
	for field, value := range fields {
		if err := updated.Update(field, value); err != nil {
			writeJSON(w, http.StatusBadRequest, envelope{Message: "unknown field: " + field})
			return
		}
	}
	flow.Draft = updated

	if err := h.store.Save(r.Context(), flow); err != nil {
		h.logger.Error("failed to save booking flow", "error", err, "flow_id", flow.ID)
		writeJSON(w, http.StatusInternalServerError, envelope{Message: "failed to save booking"})
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "fields updated", Data: viewOf(flow)})
}

// Advance handles POST /api/booking/flows/{id}/advance.
func (h *BookingHandler) Advance(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.loadFlow(w, r)
	if !ok {
		return
	}

	if err := flow.Advance(); err != nil {
		if verr, isValidation := booking.AsValidationError(err); isValidation {
			writeJSON(w, http.StatusUnprocessableEntity, envelope{Message: "cannot continue yet", Errors: verr.Fields})
			return
		}
		writeJSON(w, http.StatusInternalServerError, envelope{Message: "failed to advance"})
		return
	}

	if err := h.store.Save(r.Context(), flow); err != nil {
		h.logger.Error("failed to save booking flow", "error", err, "flow_id", flow.ID)
		writeJSON(w, http.StatusInternalServerError, envelope{Message: "failed to save booking"})
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "ok", Data: viewOf(flow)})
}

// Back handles POST /api/booking/flows/{id}/back. Going back never loses
// draft fields.
func (h *BookingHandler) Back(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.loadFlow(w, r)
	if !ok {
		return
	}

	flow.GoBack()
	if err := h.store.Save(r.Context(), flow); err != nil {
		h.logger.Error("failed to save booking flow", "error", err, "flow_id", flow.ID)
		writeJSON(w, http.StatusInternalServerError, envelope{Message: "failed to save booking"})
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "ok", Data: viewOf(flow)})
}

// Cancel handles DELETE /api/booking/flows/{id}.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete booking flow", "error", err, "flow_id", id)
		writeJSON(w, http.StatusInternalServerError, envelope{Message: "failed to cancel booking"})
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "booking cancelled"})
}

// Submit handles POST /api/booking/flows/{id}/submit. On success the flow is
// deleted, the appointment is recorded against the signed-in user, and a
// confirmation email goes out; the draft survives every failure so the
// patient can correct and retry.
func (h *BookingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.loadFlow(w, r)
	if !ok {
		return
	}

	if err := h.store.BeginSubmit(r.Context(), flow.ID); err != nil {
		if errors.Is(err, booking.ErrSubmitInFlight) {
			writeJSON(w, http.StatusConflict, envelope{Message: "a submission is already in progress for this booking"})
			return
		}
		h.logger.Error("failed to acquire submit guard", "error", err, "flow_id", flow.ID)
		writeJSON(w, http.StatusInternalServerError, envelope{Message: "failed to submit booking"})
		return
	}
	defer func() {
		if err := h.store.EndSubmit(r.Context(), flow.ID); err != nil {
			h.logger.Warn("failed to release submit guard", "error", err, "flow_id", flow.ID)
		}
	}()

	result, err := h.submitter.Submit(r.Context(), &flow.Draft)
	if err != nil {
		if verr, isValidation := booking.AsValidationError(err); isValidation {
			writeJSON(w, http.StatusUnprocessableEntity, envelope{Message: "booking is incomplete", Errors: verr.Fields})
			return
		}
		if msg, isRemote := scheduling.RemoteMessage(err); isRemote {
			writeJSON(w, http.StatusBadGateway, envelope{Message: msg})
			return
		}
		h.logger.Error("booking submission failed", "error", err, "flow_id", flow.ID)
		writeJSON(w, http.StatusBadGateway, envelope{Message: "failed to submit booking, please try again"})
		return
	}

	h.recordHistory(r.Context(), flow, result)
	h.sendConfirmation(r.Context(), flow, result)

	if err := h.store.Delete(r.Context(), flow.ID); err != nil {
		h.logger.Warn("failed to delete submitted flow", "error", err, "flow_id", flow.ID)
	}

	message := "appointment booked"
	if result.Optimistic {
		message = "appointment request received"
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: message, Data: result})
}

func (h *BookingHandler) loadFlow(w http.ResponseWriter, r *http.Request) (*booking.Flow, bool) {
	id := chi.URLParam(r, "id")
	flow, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, booking.ErrFlowNotFound) {
			writeJSON(w, http.StatusNotFound, envelope{Message: "booking not found or expired"})
			return nil, false
		}
		h.logger.Error("failed to load booking flow", "error", err, "flow_id", id)
		writeJSON(w, http.StatusInternalServerError, envelope{Message: "failed to load booking"})
		return nil, false
	}
	return flow, true
}

func (h *BookingHandler) recordHistory(ctx context.Context, flow *booking.Flow, result *booking.SubmitResult) {
	if h.history == nil {
		return
	}
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return
	}
	rec := &accounts.CreateAppointmentRecord{
		UserID:      userID,
		ServiceName: flow.Draft.ServiceName,
		State:       flow.Draft.State,
		City:        flow.Draft.City,
		Address:     flow.Draft.Address,
		StartAt:     result.Start,
		CustomerID:  result.CustomerID,
		Optimistic:  result.Optimistic,
	}
	if _, err := h.history.CreateAppointment(ctx, rec); err != nil {
		h.logger.Error("failed to record appointment history", "error", err, "user_id", userID)
	}
}

func (h *BookingHandler) sendConfirmation(ctx context.Context, flow *booking.Flow, result *booking.SubmitResult) {
	if h.notifier == nil {
		return
	}
	conf := notify.BookingConfirmation{
		To:          flow.Draft.Email,
		FirstName:   flow.Draft.FirstName,
		LastName:    flow.Draft.LastName,
		ServiceName: result.ServiceName,
		Start:       result.Start,
		Location:    result.Location,
		Pending:     result.Optimistic,
	}
	// The response should not wait on the mail provider.
	go func(ctx context.Context) {
		if err := h.notifier.SendBookingConfirmation(ctx, conf); err != nil {
			h.logger.Warn("confirmation email not sent", "error", err, "to", conf.To)
		}
	}(context.WithoutCancel(ctx))
}
