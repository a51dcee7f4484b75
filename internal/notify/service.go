package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lumina-dental/portal/pkg/logging"
)

// BookingConfirmation carries what the confirmation email needs.
type BookingConfirmation struct {
	To          string
	FirstName   string
	LastName    string
	ServiceName string
	Start       time.Time
	Location    string
	Pending     bool // submission accepted but not yet confirmed by the scheduler
}

// Service composes and sends portal notifications. A nil email sender
// disables it; notification failures never fail a booking.
type Service struct {
	email  EmailSender
	logger *logging.Logger
}

// NewService creates a notification service.
func NewService(email EmailSender, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{email: email, logger: logger}
}

// SendBookingConfirmation emails the patient after a booking submission.
func (s *Service) SendBookingConfirmation(ctx context.Context, conf BookingConfirmation) error {
	if s == nil || s.email == nil {
		return nil
	}
	if conf.To == "" {
		return nil
	}

	subject := "Your appointment is booked"
	if conf.Pending {
		subject = "We received your appointment request"
	}

	msg := EmailMessage{
		To:      conf.To,
		ToName:  strings.TrimSpace(conf.FirstName + " " + conf.LastName),
		Subject: subject,
		Body:    s.confirmationBody(conf),
		HTML:    s.confirmationHTML(conf),
	}
	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("booking confirmation email failed", "error", err, "to", conf.To)
		return err
	}
	return nil
}

func (s *Service) confirmationBody(conf BookingConfirmation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", conf.FirstName)
	if conf.Pending {
		b.WriteString("We received your appointment request and are finishing the booking. ")
		b.WriteString("If anything changes we will reach out.\n\n")
	} else {
		b.WriteString("Your appointment is confirmed.\n\n")
	}
	if conf.ServiceName != "" {
		fmt.Fprintf(&b, "Service: %s\n", conf.ServiceName)
	}
	fmt.Fprintf(&b, "When: %s\n", conf.Start.Format("Monday, January 2, 2006 at 3:04 PM"))
	if conf.Location != "" {
		fmt.Fprintf(&b, "Where: %s\n", conf.Location)
	}
	b.WriteString("\nNeed to reschedule? Call the office and we will take care of it.\n")
	return b.String()
}

func (s *Service) confirmationHTML(conf BookingConfirmation) string {
	var b strings.Builder
	b.WriteString("<div style=\"font-family:sans-serif\">")
	fmt.Fprintf(&b, "<p>Hi %s,</p>", conf.FirstName)
	if conf.Pending {
		b.WriteString("<p>We received your appointment request and are finishing the booking.</p>")
	} else {
		b.WriteString("<p>Your appointment is confirmed.</p>")
	}
	b.WriteString("<ul>")
	if conf.ServiceName != "" {
		fmt.Fprintf(&b, "<li><strong>Service:</strong> %s</li>", conf.ServiceName)
	}
	fmt.Fprintf(&b, "<li><strong>When:</strong> %s</li>", conf.Start.Format("Monday, January 2, 2006 at 3:04 PM"))
	if conf.Location != "" {
		fmt.Fprintf(&b, "<li><strong>Where:</strong> %s</li>", conf.Location)
	}
	b.WriteString("</ul>")
	b.WriteString("<p>Need to reschedule? Call the office and we will take care of it.</p>")
	b.WriteString("</div>")
	return b.String()
}
