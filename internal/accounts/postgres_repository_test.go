package accounts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresRepository(mock), mock
}

func TestPostgresCreateUser(t *testing.T) {
	repo, mock := newMockRepo(t)

	createdAt := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO portal_users").
		WithArgs(pgxmock.AnyArg(), "Jane", "Doe", "jane@example.com", "5551234567", "1990-01-01", "Aetna", "hash").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	user, err := repo.CreateUser(context.Background(), &RegisterRequest{
		FirstName:       "Jane",
		LastName:        "Doe",
		Email:           "Jane@Example.com",
		Phone:           "5551234567",
		DOB:             "1990-01-01",
		InsuranceStatus: "Aetna",
		Password:        "longenough",
	}, "hash")
	require.NoError(t, err)
	require.Equal(t, "jane@example.com", user.Email)
	require.Equal(t, createdAt, user.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateUserDuplicateEmail(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO portal_users").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.CreateUser(context.Background(), &RegisterRequest{
		FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Password: "longenough",
	}, "hash")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestPostgresGetUserByEmailNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("FROM portal_users").
		WithArgs("jane@example.com").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetUserByEmail(context.Background(), "Jane@Example.com")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestPostgresGetUserByID(t *testing.T) {
	repo, mock := newMockRepo(t)

	id := uuid.NewString()
	mock.ExpectQuery("FROM portal_users").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "first_name", "last_name", "email", "phone", "dob", "insurance_status", "password_hash", "created_at",
		}).AddRow(id, "Jane", "Doe", "jane@example.com", "", "", "", "hash", time.Now()))

	user, err := repo.GetUserByID(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, id, user.ID)
	require.Equal(t, "Jane", user.FirstName)
}

func TestPostgresListAppointments(t *testing.T) {
	repo, mock := newMockRepo(t)

	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM portal_appointments").
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "service_name", "state", "city", "address", "start_at", "customer_id", "optimistic", "created_at",
		}).AddRow(uuid.NewString(), "u1", "Cleaning", "Ohio", "Dayton", "123 Main St", start, 42, false, time.Now()))

	appts, err := repo.ListAppointmentsByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, appts, 1)
	require.Equal(t, "Cleaning", appts[0].ServiceName)
	require.Equal(t, 42, appts[0].CustomerID)
}

func TestPostgresCreateAppointment(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO portal_appointments").
		WithArgs(pgxmock.AnyArg(), "u1", "Cleaning", "Ohio", "Dayton", "123 Main St", pgxmock.AnyArg(), 42, true).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	appt, err := repo.CreateAppointment(context.Background(), &CreateAppointmentRecord{
		UserID:      "u1",
		ServiceName: "Cleaning",
		State:       "Ohio",
		City:        "Dayton",
		Address:     "123 Main St",
		StartAt:     time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		CustomerID:  42,
		Optimistic:  true,
	})
	require.NoError(t, err)
	require.True(t, appt.Optimistic)
	require.NoError(t, mock.ExpectationsWereMet())
}
