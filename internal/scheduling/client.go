// Package scheduling wraps the clinic's third-party scheduling backend
// (an EasyAppointments-compatible REST API). Slot availability is owned
// entirely by the remote service; nothing here computes or caches slots.
package scheduling

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lumina-dental/portal/internal/observability/metrics"
	"github.com/lumina-dental/portal/pkg/logging"
)

const defaultTimeout = 15 * time.Second

// Client is a REST client for the scheduling backend. Requests carry HTTP
// Basic credentials; all payloads are JSON.
type Client struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string
	metrics    *metrics.BookingMetrics
	logger     *logging.Logger
}

// Config holds the scheduling backend connection settings.
type Config struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
}

// NewClient constructs a scheduling backend client. m may be nil.
func NewClient(cfg Config, m *metrics.BookingMetrics, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		metrics:    m,
		logger:     logger,
	}
}

// GetServices lists the service catalog.
func (c *Client) GetServices(ctx context.Context) ([]Service, error) {
	var services []Service
	if err := c.doJSON(ctx, "get_services", http.MethodGet, "/services", nil, &services); err != nil {
		return nil, fmt.Errorf("get services: %w", err)
	}
	return services, nil
}

// GetProviders lists providers/clinicians.
func (c *Client) GetProviders(ctx context.Context) ([]Provider, error) {
	var providers []Provider
	if err := c.doJSON(ctx, "get_providers", http.MethodGet, "/providers", nil, &providers); err != nil {
		return nil, fmt.Errorf("get providers: %w", err)
	}
	return providers, nil
}

// GetAvailabilities returns bookable time-of-day strings for a
// provider/service/date triple, verbatim from the backend.
func (c *Client) GetAvailabilities(ctx context.Context, providerID, serviceID int, date string) ([]string, error) {
	q := url.Values{}
	q.Set("providerId", fmt.Sprintf("%d", providerID))
	q.Set("serviceId", fmt.Sprintf("%d", serviceID))
	q.Set("date", date)

	var slots []string
	if err := c.doJSON(ctx, "get_availabilities", http.MethodGet, "/availabilities?"+q.Encode(), nil, &slots); err != nil {
		return nil, fmt.Errorf("get availabilities: %w", err)
	}
	return slots, nil
}

// SearchCustomersByEmail returns customer records matching an email. The
// backend search may be fuzzy or prefix-based, so callers must re-verify
// exact equality themselves.
func (c *Client) SearchCustomersByEmail(ctx context.Context, email string) ([]Customer, error) {
	q := url.Values{}
	q.Set("email", email)

	var customers []Customer
	if err := c.doJSON(ctx, "search_customers", http.MethodGet, "/customers?"+q.Encode(), nil, &customers); err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	return customers, nil
}

// CreateCustomer creates a customer record and returns it with its
// backend-assigned id.
func (c *Client) CreateCustomer(ctx context.Context, payload CustomerPayload) (*Customer, error) {
	var customer Customer
	if err := c.doJSON(ctx, "create_customer", http.MethodPost, "/customers", payload, &customer); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return &customer, nil
}

// CreateAppointment books an appointment.
func (c *Client) CreateAppointment(ctx context.Context, payload AppointmentPayload) (*Appointment, error) {
	var appt Appointment
	if err := c.doJSON(ctx, "create_appointment", http.MethodPost, "/appointments", payload, &appt); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return &appt, nil
}

// remoteError carries the backend's own message when it returns one, so
// callers can surface it to the user instead of a transport string.
type remoteError struct {
	StatusCode int
	Message    string
}

func (e *remoteError) Error() string {
	return fmt.Sprintf("scheduling API returned %d: %s", e.StatusCode, e.Message)
}

// RemoteMessage extracts the backend-provided message from err, if any.
func RemoteMessage(err error) (string, bool) {
	var re *remoteError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message, true
	}
	return "", false
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, body interface{}, out interface{}) error {
	endpoint := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveSchedulingCall(op, "error")
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.ObserveSchedulingCall(op, "error")
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := extractMessage(respBody)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		c.logger.Warn("scheduling API non-2xx response", "status", resp.StatusCode, "path", path, "body", msg)
		c.metrics.ObserveSchedulingCall(op, fmt.Sprintf("%d", resp.StatusCode))
		return &remoteError{StatusCode: resp.StatusCode, Message: msg}
	}
	c.metrics.ObserveSchedulingCall(op, "ok")

	if len(respBody) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// extractMessage pulls a {"message": ...} field out of an error body when
// present, falling back to the raw body.
func extractMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		return envelope.Message
	}
	return string(body)
}
