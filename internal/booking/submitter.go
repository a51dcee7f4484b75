// Package booking implements the multi-step appointment booking
// orchestration: the draft accumulated across steps, the step sequencer,
// pre-submission validation, customer resolution against the scheduling
// backend, and the final submission with its outcome policy.
package booking

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/lumina-dental/portal/internal/observability/metrics"
	"github.com/lumina-dental/portal/internal/scheduling"
	"github.com/lumina-dental/portal/pkg/logging"
)

var bookingTracer = otel.Tracer("portal.internal.booking")

// DefaultAppointmentDuration is the fixed slot length used for end-time
// math. The service catalog carries a per-service duration, but end times
// have always been computed from this constant; keep the two in sync is a
// known open item, so the constant is named rather than inlined.
const DefaultAppointmentDuration = 30 * time.Minute

// wireTimeLayout is the scheduling backend's timestamp format.
const wireTimeLayout = "2006-01-02 15:04:05"

// AppointmentCreator is the slice of the scheduling backend the submitter
// needs beyond customer resolution.
type AppointmentCreator interface {
	CreateAppointment(ctx context.Context, payload scheduling.AppointmentPayload) (*scheduling.Appointment, error)
}

// SubmitResult reports a completed submission to the caller. Optimistic
// results have no AppointmentID: the backend never confirmed one in time.
type SubmitResult struct {
	Optimistic    bool      `json:"optimistic"`
	AppointmentID int       `json:"appointmentId,omitempty"`
	CustomerID    int       `json:"customerId"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Location      string    `json:"location"`
	ServiceName   string    `json:"serviceName,omitempty"`
}

// Submitter validates a draft, resolves the remote customer, and issues the
// appointment creation call under the configured outcome policy.
type Submitter struct {
	creator  AppointmentCreator
	resolver *CustomerResolver
	policy   OutcomePolicy
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
	now      func() time.Time
}

// NewSubmitter constructs a submitter. metrics may be nil.
func NewSubmitter(creator AppointmentCreator, resolver *CustomerResolver, policy OutcomePolicy, m *metrics.BookingMetrics, logger *logging.Logger) *Submitter {
	if creator == nil {
		panic("booking: appointment creator required")
	}
	if resolver == nil {
		panic("booking: customer resolver required")
	}
	if policy == nil {
		policy = StrictPolicy{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Submitter{
		creator:  creator,
		resolver: resolver,
		policy:   policy,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit runs the full submission sequence for a draft. Validation failures
// return a *ValidationError before any remote call; customer resolution
// strictly precedes appointment creation. The draft is left intact on
// failure so the caller can retry.
func (s *Submitter) Submit(ctx context.Context, d *Draft) (*SubmitResult, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.submit")
	defer span.End()

	started := s.now()

	if verr := ValidateForSubmission(d, started); verr != nil {
		s.metrics.ObserveSubmission("rejected")
		return nil, verr
	}

	start, err := StartTime(d)
	if err != nil {
		// Unreachable after validation, but never submit a zero time.
		return nil, fmt.Errorf("booking: parse start time: %w", err)
	}
	end := start.Add(DefaultAppointmentDuration)

	serviceID, _ := strconv.Atoi(d.ServiceID)
	providerID, _ := strconv.Atoi(d.ProviderID)
	span.SetAttributes(
		attribute.Int("portal.service_id", serviceID),
		attribute.Int("portal.provider_id", providerID),
	)

	customerID, err := s.resolver.Resolve(ctx, d)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveSubmission("failed")
		return nil, err
	}

	location := joinLocation(d.Address, d.City, d.State)
	payload := scheduling.AppointmentPayload{
		Start:      start.Format(wireTimeLayout),
		End:        end.Format(wireTimeLayout),
		Location:   location,
		Notes:      appointmentNotes(d),
		CustomerID: customerID,
		ProviderID: providerID,
		ServiceID:  serviceID,
		Status:     "Booked",
	}

	outcome, err := s.policy.Execute(ctx, func(ctx context.Context) (*scheduling.Appointment, error) {
		return s.creator.CreateAppointment(ctx, payload)
	})
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveSubmission("failed")
		return nil, fmt.Errorf("booking: create appointment: %w", err)
	}

	result := &SubmitResult{
		Optimistic:  outcome.Optimistic,
		CustomerID:  customerID,
		Start:       start,
		End:         end,
		Location:    location,
		ServiceName: d.ServiceName,
	}
	if outcome.Appointment != nil {
		result.AppointmentID = outcome.Appointment.ID
	}

	label := "confirmed"
	if outcome.Optimistic {
		label = "optimistic"
	}
	s.metrics.ObserveSubmission(label)
	s.metrics.ObserveSubmitLatency(time.Since(started).Seconds())

	s.logger.Info("appointment submitted",
		"outcome", label,
		"policy", s.policy.Name(),
		"customer_id", customerID,
		"service_id", serviceID,
		"provider_id", providerID,
		"start", payload.Start,
	)
	return result, nil
}

// joinLocation builds the appointment's free-text location from the draft's
// address parts, comma-separated, skipping blanks.
func joinLocation(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

func appointmentNotes(d *Draft) string {
	service := d.ServiceName
	if service == "" {
		service = "Not specified"
	}
	insurance := d.InsuranceStatus
	if insurance == "" {
		insurance = "Not Provided"
	}
	notes := fmt.Sprintf("Service: %s, Insurance: %s", service, insurance)
	if extra := strings.TrimSpace(d.Notes); extra != "" {
		notes += ". " + extra
	}
	return notes
}
