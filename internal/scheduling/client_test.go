package scheduling

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:  srv.URL,
		Username: "portal",
		Password: "secret",
	}, nil, nil)
}

func TestClientSendsBasicAuth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "portal", user)
		require.Equal(t, "secret", pass)
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := client.GetServices(context.Background())
	require.NoError(t, err)
}

func TestGetServices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/services", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":3,"name":"Teeth Cleaning","duration":45,"price":120}]`))
	})

	services, err := client.GetServices(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 1)
	require.Equal(t, 3, services[0].ID)
	require.Equal(t, "Teeth Cleaning", services[0].Name)
	require.Equal(t, 45, services[0].Duration)
}

func TestGetAvailabilitiesQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/availabilities", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "7", q.Get("providerId"))
		require.Equal(t, "3", q.Get("serviceId"))
		require.Equal(t, "2025-03-01", q.Get("date"))
		_, _ = w.Write([]byte(`["09:00","09:30","10:00"]`))
	})

	slots, err := client.GetAvailabilities(context.Background(), 7, 3, "2025-03-01")
	require.NoError(t, err)
	require.Equal(t, []string{"09:00", "09:30", "10:00"}, slots)
}

func TestSearchCustomersByEmail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/customers", r.URL.Path)
		require.Equal(t, "jane@example.com", r.URL.Query().Get("email"))
		_, _ = w.Write([]byte(`[{"id":42,"firstName":"Jane","lastName":"Doe","email":"jane@example.com","phone":"5551234567"}]`))
	})

	customers, err := client.SearchCustomersByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	require.Len(t, customers, 1)
	require.Equal(t, 42, customers[0].ID)
}

func TestCreateCustomerPostsJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/customers", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload CustomerPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "jane@example.com", payload.Email)
		require.Equal(t, "UTC", payload.Timezone)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":101,"email":"jane@example.com"}`))
	})

	customer, err := client.CreateCustomer(context.Background(), CustomerPayload{
		FirstName: "Jane",
		Email:     "jane@example.com",
		Timezone:  "UTC",
	})
	require.NoError(t, err)
	require.Equal(t, 101, customer.ID)
}

func TestCreateAppointment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/appointments", r.URL.Path)

		var payload AppointmentPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "2025-03-01 10:00:00", payload.Start)
		require.Equal(t, "Booked", payload.Status)

		_, _ = w.Write([]byte(`{"id":500,"start":"2025-03-01 10:00:00","status":"Booked"}`))
	})

	appt, err := client.CreateAppointment(context.Background(), AppointmentPayload{
		Start:  "2025-03-01 10:00:00",
		End:    "2025-03-01 10:30:00",
		Status: "Booked",
	})
	require.NoError(t, err)
	require.Equal(t, 500, appt.ID)
}

func TestClientExtractsRemoteMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"The selected slot is no longer available"}`))
	})

	_, err := client.CreateAppointment(context.Background(), AppointmentPayload{})
	require.Error(t, err)
	msg, ok := RemoteMessage(err)
	require.True(t, ok)
	require.Equal(t, "The selected slot is no longer available", msg)
}

func TestClientTruncatesLongErrorBodies(t *testing.T) {
	long := strings.Repeat("x", 1000)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(long))
	})

	_, err := client.GetServices(context.Background())
	require.Error(t, err)
	msg, ok := RemoteMessage(err)
	require.True(t, ok)
	require.Len(t, msg, 300)
}

func TestRemoteMessageOnPlainError(t *testing.T) {
	_, ok := RemoteMessage(context.Canceled)
	require.False(t, ok)
}
