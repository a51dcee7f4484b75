package accounts

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for account and appointment-history
// storage.
type Repository interface {
	CreateUser(ctx context.Context, req *RegisterRequest, passwordHash string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)

	CreateAppointment(ctx context.Context, rec *CreateAppointmentRecord) (*Appointment, error)
	ListAppointmentsByUser(ctx context.Context, userID string) ([]*Appointment, error)
}

// InMemoryRepository is a Repository backed by process memory, used in
// development and tests.
type InMemoryRepository struct {
	mu           sync.RWMutex
	usersByID    map[string]*User
	usersByEmail map[string]*User
	appointments map[string][]*Appointment
}

// NewInMemoryRepository creates a new in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		usersByID:    make(map[string]*User),
		usersByEmail: make(map[string]*User),
		appointments: make(map[string][]*Appointment),
	}
}

func (r *InMemoryRepository) CreateUser(ctx context.Context, req *RegisterRequest, passwordHash string) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.usersByEmail[email]; exists {
		return nil, ErrEmailTaken
	}
	user := &User{
		ID:              uuid.NewString(),
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           email,
		Phone:           req.Phone,
		DOB:             req.DOB,
		InsuranceStatus: req.InsuranceStatus,
		PasswordHash:    passwordHash,
		CreatedAt:       time.Now().UTC(),
	}
	r.usersByID[user.ID] = user
	r.usersByEmail[email] = user
	return user, nil
}

func (r *InMemoryRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.usersByEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (r *InMemoryRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.usersByID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (r *InMemoryRepository) CreateAppointment(ctx context.Context, rec *CreateAppointmentRecord) (*Appointment, error) {
	appt := &Appointment{
		ID:          uuid.NewString(),
		UserID:      rec.UserID,
		ServiceName: rec.ServiceName,
		State:       rec.State,
		City:        rec.City,
		Address:     rec.Address,
		StartAt:     rec.StartAt,
		CustomerID:  rec.CustomerID,
		Optimistic:  rec.Optimistic,
		CreatedAt:   time.Now().UTC(),
	}
	r.mu.Lock()
	r.appointments[rec.UserID] = append(r.appointments[rec.UserID], appt)
	r.mu.Unlock()
	return appt, nil
}

func (r *InMemoryRepository) ListAppointmentsByUser(ctx context.Context, userID string) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	appts := make([]*Appointment, len(r.appointments[userID]))
	copy(appts, r.appointments[userID])
	sort.Slice(appts, func(i, j int) bool { return appts[i].StartAt.After(appts[j].StartAt) })
	return appts, nil
}
