package booking

import "fmt"

// Draft field keys accepted by Draft.Update. These match the wire names the
// portal frontend sends step by step.
const (
	FieldServiceID       = "serviceId"
	FieldServiceName     = "serviceName"
	FieldProviderID      = "providerId"
	FieldClinicID        = "clinicId"
	FieldState           = "state"
	FieldCity            = "city"
	FieldAddress         = "address"
	FieldAppointmentDate = "appointmentDate"
	FieldTime            = "time"
	FieldFirstName       = "first_name"
	FieldLastName        = "last_name"
	FieldEmail           = "email"
	FieldPhone           = "phone"
	FieldDOB             = "dob"
	FieldInsurance       = "insuranceStatus"
	FieldNotes           = "notes"
)

// Draft accumulates booking fields as the patient moves through the flow.
// Every field is optional until submission; Update performs no validation.
type Draft struct {
	ServiceID   string `json:"serviceId,omitempty"`
	ServiceName string `json:"serviceName,omitempty"`
	ProviderID  string `json:"providerId,omitempty"`
	ClinicID    string `json:"clinicId,omitempty"`

	State   string `json:"state,omitempty"`
	City    string `json:"city,omitempty"`
	Address string `json:"address,omitempty"`

	AppointmentDate string `json:"appointmentDate,omitempty"` // YYYY-MM-DD
	Time            string `json:"time,omitempty"`            // HH:MM local

	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	Email           string `json:"email,omitempty"`
	Phone           string `json:"phone,omitempty"`
	DOB             string `json:"dob,omitempty"`
	InsuranceStatus string `json:"insuranceStatus,omitempty"`

	Notes string `json:"notes,omitempty"`
}

// Update merges a single field into the draft, preserving all others. Later
// steps may overwrite values set by earlier ones.
func (d *Draft) Update(field, value string) error {
	switch field {
	case FieldServiceID:
		d.ServiceID = value
	case FieldServiceName:
		d.ServiceName = value
	case FieldProviderID:
		d.ProviderID = value
	case FieldClinicID:
		d.ClinicID = value
	case FieldState:
		d.State = value
	case FieldCity:
		d.City = value
	case FieldAddress:
		d.Address = value
	case FieldAppointmentDate:
		d.AppointmentDate = value
	case FieldTime:
		d.Time = value
	case FieldFirstName:
		d.FirstName = value
	case FieldLastName:
		d.LastName = value
	case FieldEmail:
		d.Email = value
	case FieldPhone:
		d.Phone = value
	case FieldDOB:
		d.DOB = value
	case FieldInsurance:
		d.InsuranceStatus = value
	case FieldNotes:
		d.Notes = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// Reset clears all fields back to the empty draft.
func (d *Draft) Reset() {
	*d = Draft{}
}
