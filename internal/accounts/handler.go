package accounts

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/lumina-dental/portal/internal/http/middleware"
	"github.com/lumina-dental/portal/pkg/logging"
)

// Handler handles HTTP requests for portal accounts: registration, login,
// logout, profile, and appointment history.
type Handler struct {
	repo     Repository
	sessions *SessionManager
	logger   *logging.Logger
	secure   bool
}

// NewHandler creates a new accounts handler. secure controls the session
// cookie's Secure flag (off for local development).
func NewHandler(repo Repository, sessions *SessionManager, secure bool, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, sessions: sessions, logger: logger, secure: secure}
}

// envelope is the portal's response convention.
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

// Register handles POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, envelope{Message: "invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		h.writeJSON(w, http.StatusBadRequest, envelope{Message: userMessage(err)})
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, envelope{Message: "registration failed"})
		return
	}

	user, err := h.repo.CreateUser(r.Context(), &req, hash)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			h.writeJSON(w, http.StatusConflict, envelope{Message: "an account with this email already exists"})
			return
		}
		h.logger.Error("failed to create user", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, envelope{Message: "registration failed"})
		return
	}

	h.logger.Info("user registered", "user_id", user.ID)
	h.issueSession(w, user)
	h.writeJSON(w, http.StatusCreated, envelope{Success: true, Message: "account created", Data: user})
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, envelope{Message: "invalid request body"})
		return
	}

	user, err := h.repo.GetUserByEmail(r.Context(), req.Email)
	if err != nil || !CheckPassword(user.PasswordHash, req.Password) {
		h.writeJSON(w, http.StatusUnauthorized, envelope{Message: "invalid email or password"})
		return
	}

	h.logger.Info("user logged in", "user_id", user.ID)
	h.issueSession(w, user)
	h.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "logged in", Data: user})
}

// Logout handles POST /api/auth/logout: the session cookie is cleared; the
// server keeps no session state beyond the signed token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	h.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "logged out"})
}

// Me handles GET /api/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, envelope{Message: "authentication required"})
		return
	}
	user, err := h.repo.GetUserByID(r.Context(), userID)
	if err != nil {
		h.writeJSON(w, http.StatusNotFound, envelope{Message: "account not found"})
		return
	}
	h.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "ok", Data: user})
}

// AppointmentHistory is the data payload for GET /api/me/appointments,
// split by start time relative to now.
type AppointmentHistory struct {
	Upcoming []*Appointment `json:"upcomingAppointments"`
	Previous []*Appointment `json:"previousAppointments"`
}

// MyAppointments handles GET /api/me/appointments.
func (h *Handler) MyAppointments(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, envelope{Message: "authentication required"})
		return
	}

	appts, err := h.repo.ListAppointmentsByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err, "user_id", userID)
		h.writeJSON(w, http.StatusInternalServerError, envelope{Message: "failed to load appointments"})
		return
	}

	history := AppointmentHistory{Upcoming: []*Appointment{}, Previous: []*Appointment{}}
	now := time.Now()
	for _, a := range appts {
		if a.StartAt.After(now) {
			history.Upcoming = append(history.Upcoming, a)
		} else {
			history.Previous = append(history.Previous, a)
		}
	}
	h.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "ok", Data: history})
}

func (h *Handler) issueSession(w http.ResponseWriter, user *User) {
	token, err := h.sessions.Issue(user.ID)
	if err != nil {
		h.logger.Error("failed to issue session", "error", err, "user_id", user.ID)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidName):
		return "first and last name are required"
	case errors.Is(err, ErrInvalidEmail):
		return "a valid email is required"
	case errors.Is(err, ErrWeakPassword):
		return "password must be at least 8 characters long"
	default:
		return "invalid registration data"
	}
}
