package booking

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"

	"github.com/lumina-dental/portal/internal/scheduling"
	"github.com/lumina-dental/portal/pkg/logging"
)

// CustomerDirectory is the slice of the scheduling backend the resolver
// needs: email search plus creation.
type CustomerDirectory interface {
	SearchCustomersByEmail(ctx context.Context, email string) ([]scheduling.Customer, error)
	CreateCustomer(ctx context.Context, payload scheduling.CustomerPayload) (*scheduling.Customer, error)
}

// CustomerResolver maps patient contact info to a stable remote customer id,
// creating a record when none exists.
//
// Lookup-then-create is not idempotent under retry: a network failure after
// the backend committed a create but before the response arrived will produce
// a duplicate on the next attempt. The backend owns dedup beyond the email
// match; this is surfaced here rather than silently papered over.
type CustomerResolver struct {
	dir    CustomerDirectory
	logger *logging.Logger
}

// NewCustomerResolver constructs a resolver over the given directory.
func NewCustomerResolver(dir CustomerDirectory, logger *logging.Logger) *CustomerResolver {
	if dir == nil {
		panic("booking: customer directory required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CustomerResolver{dir: dir, logger: logger}
}

// Resolve returns the remote customer id for the draft's patient. The email
// is the lookup key; without it no remote call is attempted. The backend's
// search may be fuzzy, so equality is re-verified locally, case-insensitive.
func (r *CustomerResolver) Resolve(ctx context.Context, d *Draft) (int, error) {
	ctx, span := otel.Tracer("portal.internal.booking").Start(ctx, "booking.resolve_customer")
	defer span.End()

	email := strings.TrimSpace(d.Email)
	if email == "" {
		return 0, &ValidationError{Fields: []FieldError{{Field: FieldEmail, Message: "email is required for customer lookup"}}}
	}

	customers, err := r.dir.SearchCustomersByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("booking: customer lookup: %w", err)
	}
	for _, c := range customers {
		if strings.EqualFold(strings.TrimSpace(c.Email), email) {
			r.logger.Debug("existing customer matched", "customer_id", c.ID)
			return c.ID, nil
		}
	}

	created, err := r.dir.CreateCustomer(ctx, scheduling.CustomerPayload{
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Email:     email,
		Phone:     d.Phone,
		Address:   d.Address,
		City:      d.City,
		Timezone:  "UTC",
		Language:  "english",
		Notes:     customerNotes(d),
	})
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("booking: create customer: %w", err)
	}
	r.logger.Info("customer created", "customer_id", created.ID)
	return created.ID, nil
}

func customerNotes(d *Draft) string {
	insurance := d.InsuranceStatus
	if insurance == "" {
		insurance = "Not Provided"
	}
	dob := d.DOB
	if dob == "" {
		dob = "Not Provided"
	}
	return fmt.Sprintf("Insurance: %s, DOB: %s", insurance, dob)
}
