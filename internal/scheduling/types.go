package scheduling

// Service is a bookable service in the scheduling backend's catalog.
type Service struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Duration int     `json:"duration"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency,omitempty"`
}

// Provider is a clinician/resource unit in the scheduling backend,
// associated with services and a physical location.
type Provider struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Zip       string `json:"zip,omitempty"`
	Services  []int  `json:"services,omitempty"`
}

// Customer is a patient record owned by the scheduling backend.
type Customer struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address,omitempty"`
	City      string `json:"city,omitempty"`
	Zip       string `json:"zip,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// CustomerPayload is the body for creating a customer record.
type CustomerPayload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address,omitempty"`
	City      string `json:"city,omitempty"`
	Zip       string `json:"zip,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
	Language  string `json:"language,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// AppointmentPayload is the body for creating an appointment.
// Start and End use the backend's "2006-01-02 15:04:05" local format.
type AppointmentPayload struct {
	Start      string `json:"start"`
	End        string `json:"end"`
	Location   string `json:"location"`
	Notes      string `json:"notes"`
	CustomerID int    `json:"customerId"`
	ProviderID int    `json:"providerId"`
	ServiceID  int    `json:"serviceId"`
	Status     string `json:"status,omitempty"`
}

// Appointment is a created appointment record.
type Appointment struct {
	ID         int    `json:"id"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Location   string `json:"location"`
	Notes      string `json:"notes"`
	CustomerID int    `json:"customerId"`
	ProviderID int    `json:"providerId"`
	ServiceID  int    `json:"serviceId"`
	Status     string `json:"status"`
}
