package accounts

import (
	"regexp"
	"strings"
	"time"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// User is a portal account holder.
type User struct {
	ID              string    `json:"id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone,omitempty"`
	DOB             string    `json:"dob,omitempty"`
	InsuranceStatus string    `json:"insuranceStatus,omitempty"`
	PasswordHash    string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
}

// RegisterRequest is the request body for creating a portal account.
type RegisterRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	DOB             string `json:"dob"`
	InsuranceStatus string `json:"insuranceStatus"`
	Password        string `json:"password"`
}

// Validate checks the registration fields.
func (r *RegisterRequest) Validate() error {
	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "" {
		return ErrInvalidName
	}
	if !emailPattern.MatchString(strings.TrimSpace(r.Email)) {
		return ErrInvalidEmail
	}
	if len(r.Password) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// LoginRequest is the request body for logging in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Appointment is the portal's own record of a booked appointment, kept so
// the profile page can show history without round-tripping the scheduling
// backend.
type Appointment struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ServiceName string    `json:"serviceName"`
	State       string    `json:"state,omitempty"`
	City        string    `json:"city,omitempty"`
	Address     string    `json:"address,omitempty"`
	StartAt     time.Time `json:"appointmentDate"`
	CustomerID  int       `json:"customerId,omitempty"`
	Optimistic  bool      `json:"optimistic,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateAppointmentRecord captures the fields persisted after a successful
// (or optimistically successful) submission.
type CreateAppointmentRecord struct {
	UserID      string
	ServiceName string
	State       string
	City        string
	Address     string
	StartAt     time.Time
	CustomerID  int
	Optimistic  bool
}
