package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the pool surface the repository uses; *pgxpool.Pool satisfies
// it, as do mocks.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores accounts and appointment history in the
// relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("accounts: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// CreateUser inserts a new account row.
func (r *PostgresRepository) CreateUser(ctx context.Context, req *RegisterRequest, passwordHash string) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	email := strings.ToLower(strings.TrimSpace(req.Email))
	query := `
		INSERT INTO portal_users (id, first_name, last_name, email, phone, dob, insurance_status, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		id,
		req.FirstName,
		req.LastName,
		email,
		req.Phone,
		req.DOB,
		req.InsuranceStatus,
		passwordHash,
	).Scan(&createdAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("accounts: insert user failed: %w", err)
	}

	return &User{
		ID:              id.String(),
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           email,
		Phone:           req.Phone,
		DOB:             req.DOB,
		InsuranceStatus: req.InsuranceStatus,
		PasswordHash:    passwordHash,
		CreatedAt:       createdAt,
	}, nil
}

// GetUserByEmail fetches an account by its lower-cased email.
func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, dob, insurance_status, password_hash, created_at
		FROM portal_users
		WHERE email = $1
	`
	return r.scanUser(r.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

// GetUserByID fetches an account by id.
func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, dob, insurance_status, password_hash, created_at
		FROM portal_users
		WHERE id = $1
	`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) scanUser(row pgx.Row) (*User, error) {
	var user User
	if err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Phone,
		&user.DOB,
		&user.InsuranceStatus,
		&user.PasswordHash,
		&user.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("accounts: select user failed: %w", err)
	}
	return &user, nil
}

// CreateAppointment records a booked appointment for the profile history.
func (r *PostgresRepository) CreateAppointment(ctx context.Context, rec *CreateAppointmentRecord) (*Appointment, error) {
	id := uuid.New()
	query := `
		INSERT INTO portal_appointments (id, user_id, service_name, state, city, address, start_at, customer_id, optimistic)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		id,
		rec.UserID,
		rec.ServiceName,
		rec.State,
		rec.City,
		rec.Address,
		rec.StartAt,
		rec.CustomerID,
		rec.Optimistic,
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("accounts: insert appointment failed: %w", err)
	}

	return &Appointment{
		ID:          id.String(),
		UserID:      rec.UserID,
		ServiceName: rec.ServiceName,
		State:       rec.State,
		City:        rec.City,
		Address:     rec.Address,
		StartAt:     rec.StartAt,
		CustomerID:  rec.CustomerID,
		Optimistic:  rec.Optimistic,
		CreatedAt:   createdAt,
	}, nil
}

// ListAppointmentsByUser returns a user's appointments, newest first.
func (r *PostgresRepository) ListAppointmentsByUser(ctx context.Context, userID string) ([]*Appointment, error) {
	query := `
		SELECT id, user_id, service_name, state, city, address, start_at, customer_id, optimistic, created_at
		FROM portal_appointments
		WHERE user_id = $1
		ORDER BY start_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("accounts: list appointments failed: %w", err)
	}
	defer rows.Close()

	var appts []*Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.ServiceName,
			&a.State,
			&a.City,
			&a.Address,
			&a.StartAt,
			&a.CustomerID,
			&a.Optimistic,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("accounts: scan appointment failed: %w", err)
		}
		appts = append(appts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("accounts: list appointments failed: %w", err)
	}
	return appts, nil
}
