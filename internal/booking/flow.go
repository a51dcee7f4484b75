package booking

import (
	"time"

	"github.com/google/uuid"
)

// Step identifies a screen in the booking sequence.
type Step int

const (
	StepUserType Step = iota
	StepService
	StepLocation
	StepConfirm
)

func (s Step) String() string {
	switch s {
	case StepUserType:
		return "user_type"
	case StepService:
		return "service"
	case StepLocation:
		return "location"
	case StepConfirm:
		return "confirm"
	default:
		return "unknown"
	}
}

// Flow is one in-progress booking: the current step plus the accumulated
// draft. Only one screen is active at a time, so the draft has a single
// writer for the life of the flow.
type Flow struct {
	ID        string    `json:"id"`
	Step      Step      `json:"step"`
	Draft     Draft     `json:"draft"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewFlow starts a flow at the first step with an empty draft.
func NewFlow() *Flow {
	now := time.Now().UTC()
	return &Flow{
		ID:        uuid.NewString(),
		Step:      StepUserType,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Advance moves to the next step. It is a no-op at the terminal step (no
// wraparound). Steps that require a selection refuse to advance until the
// draft carries it, naming the missing fields.
func (f *Flow) Advance() error {
	if f.Step >= StepConfirm {
		return nil
	}
	if missing := f.missingForAdvance(); len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	f.Step++
	f.UpdatedAt = time.Now().UTC()
	return nil
}

// GoBack moves to the previous step; no-op at the first step. The draft is
// left untouched so prior selections survive revisiting a step.
func (f *Flow) GoBack() {
	if f.Step > StepUserType {
		f.Step--
		f.UpdatedAt = time.Now().UTC()
	}
}

func (f *Flow) missingForAdvance() []FieldError {
	var missing []FieldError
	switch f.Step {
	case StepService:
		if f.Draft.ServiceID == "" {
			missing = append(missing, FieldError{Field: FieldServiceID, Message: "select a service to continue"})
		}
	case StepLocation:
		if f.Draft.AppointmentDate == "" {
			missing = append(missing, FieldError{Field: FieldAppointmentDate, Message: "select an appointment date to continue"})
		}
		if f.Draft.Time == "" {
			missing = append(missing, FieldError{Field: FieldTime, Message: "select a time slot to continue"})
		}
	}
	return missing
}
