package accounts

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lumina-dental/portal/internal/http/middleware"
)

func newTestHandler(t *testing.T) (*Handler, *InMemoryRepository) {
	t.Helper()
	repo := NewInMemoryRepository()
	sessions := NewSessionManager("test-secret", time.Hour)
	return NewHandler(repo, sessions, false, nil), repo
}

func registerBody() []byte {
	body, _ := json.Marshal(RegisterRequest{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Password:  "longenough",
	})
	return body
}

func TestRegisterSetsSessionCookie(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(registerBody()))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName && c.Value != "" && c.HttpOnly {
			found = true
		}
	}
	if !found {
		t.Error("registration did not set the session cookie")
	}

	var env struct {
		Success bool `json:"success"`
		Data    User `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !env.Success || env.Data.Email != "jane@example.com" {
		t.Errorf("envelope = %+v", env)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, _ := newTestHandler(t)

	for i, want := range []int{http.StatusCreated, http.StatusConflict} {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(registerBody()))
		rec := httptest.NewRecorder()
		h.Register(rec, req)
		if rec.Code != want {
			t.Fatalf("attempt %d: status = %d, want %d", i, rec.Code, want)
		}
	}
}

func TestRegisterInvalidBody(t *testing.T) {
	h, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader([]byte(`{"email":"bad"}`)))
	rec := httptest.NewRecorder()
	h.Register(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	h, repo := newTestHandler(t)
	hash, _ := HashPassword("longenough")
	_, err := repo.CreateUser(context.Background(), &RegisterRequest{
		FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Password: "longenough",
	}, hash)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	body, _ := json.Marshal(LoginRequest{Email: "jane@example.com", Password: "longenough"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	wrong, _ := json.Marshal(LoginRequest{Email: "jane@example.com", Password: "incorrect"})
	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(wrong))
	rec = httptest.NewRecorder()
	h.Login(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status = %d", rec.Code)
	}

	unknown, _ := json.Marshal(LoginRequest{Email: "nobody@example.com", Password: "longenough"})
	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(unknown))
	rec = httptest.NewRecorder()
	h.Login(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unknown email: status = %d", rec.Code)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	h, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("logout did not clear the session cookie")
	}
}

func TestMeRequiresSession(t *testing.T) {
	h, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec := httptest.NewRecorder()
	h.Me(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestMyAppointmentsSplitsHistory(t *testing.T) {
	h, repo := newTestHandler(t)
	user, _ := repo.CreateUser(context.Background(), &RegisterRequest{
		FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Password: "longenough",
	}, "hash")

	past := time.Now().Add(-48 * time.Hour)
	future := time.Now().Add(48 * time.Hour)
	_, _ = repo.CreateAppointment(context.Background(), &CreateAppointmentRecord{UserID: user.ID, ServiceName: "Past Cleaning", StartAt: past})
	_, _ = repo.CreateAppointment(context.Background(), &CreateAppointmentRecord{UserID: user.ID, ServiceName: "Future Checkup", StartAt: future})

	req := httptest.NewRequest(http.MethodGet, "/api/me/appointments", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), user.ID))
	rec := httptest.NewRecorder()
	h.MyAppointments(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var env struct {
		Data AppointmentHistory `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Data.Upcoming) != 1 || env.Data.Upcoming[0].ServiceName != "Future Checkup" {
		t.Errorf("upcoming = %+v", env.Data.Upcoming)
	}
	if len(env.Data.Previous) != 1 || env.Data.Previous[0].ServiceName != "Past Cleaning" {
		t.Errorf("previous = %+v", env.Data.Previous)
	}
}
