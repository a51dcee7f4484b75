package booking

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// startLayout is the local wall-clock layout the draft's date and time
// fields combine into.
const startLayout = "2006-01-02 15:04"

// requiredFields is the fixed subset that must be present and non-empty by
// the confirmation step.
var requiredFields = []struct {
	name  string
	value func(*Draft) string
}{
	{FieldServiceID, func(d *Draft) string { return d.ServiceID }},
	{FieldProviderID, func(d *Draft) string { return d.ProviderID }},
	{FieldAppointmentDate, func(d *Draft) string { return d.AppointmentDate }},
	{FieldTime, func(d *Draft) string { return d.Time }},
	{FieldFirstName, func(d *Draft) string { return d.FirstName }},
	{FieldLastName, func(d *Draft) string { return d.LastName }},
	{FieldEmail, func(d *Draft) string { return d.Email }},
	{FieldPhone, func(d *Draft) string { return d.Phone }},
}

// ValidateForSubmission checks the draft against the submission invariants.
// It reports every problem at once so the UI can mark all offending fields;
// a non-nil result means no remote call may be issued.
func ValidateForSubmission(d *Draft, now time.Time) *ValidationError {
	var fields []FieldError
	for _, rf := range requiredFields {
		if strings.TrimSpace(rf.value(d)) == "" {
			fields = append(fields, FieldError{Field: rf.name, Message: rf.name + " is required"})
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	if _, err := strconv.Atoi(d.ServiceID); err != nil {
		fields = append(fields, FieldError{Field: FieldServiceID, Message: "serviceId must be numeric"})
	}
	if _, err := strconv.Atoi(d.ProviderID); err != nil {
		fields = append(fields, FieldError{Field: FieldProviderID, Message: "providerId must be numeric"})
	}

	if _, ok := NormalizePhone(d.Phone); !ok {
		fields = append(fields, FieldError{Field: FieldPhone, Message: "please enter a valid 10-digit phone number"})
	}

	start, err := StartTime(d)
	if err != nil {
		fields = append(fields, FieldError{Field: FieldAppointmentDate, Message: "appointment date and time are not a valid date"})
	} else if !start.After(now) {
		fields = append(fields, FieldError{Field: FieldAppointmentDate, Message: "appointment must be scheduled in the future"})
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// NormalizePhone strips every non-digit rune and reports whether exactly 10
// digits remain.
func NormalizePhone(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	return digits, len(digits) == 10
}

// StartTime combines the draft's date and time fields into a local
// wall-clock start timestamp.
func StartTime(d *Draft) (time.Time, error) {
	return time.ParseInLocation(startLayout, d.AppointmentDate+" "+d.Time, time.Local)
}
