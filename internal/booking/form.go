// Package booking validates the public booking and feedback forms and passes
// accepted submissions through to the clinic backend.
package booking

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/oakpark-dental/clinic-portal/internal/clinicapi"
	"github.com/oakpark-dental/clinic-portal/internal/search"
	"github.com/oakpark-dental/clinic-portal/pkg/logging"
)

// Form is a public booking-form submission before validation.
type Form struct {
	PatientName  string `json:"patient_name"`
	PatientEmail string `json:"patient_email"`
	PatientPhone string `json:"patient_phone"`
	Service      string `json:"service"`
	DoctorID     *int   `json:"doctor_id,omitempty"`
	Date         string `json:"appointment_date"`
	Time         string `json:"appointment_time,omitempty"`
	Message      string `json:"message,omitempty"`
}

// FieldErrors maps field names to one human-readable problem each, rendered
// next to the relevant input.
type FieldErrors map[string]string

// Validate checks the form and returns per-field errors; an empty map means
// the form is acceptable.
func (f Form) Validate() FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(f.PatientName) == "" {
		errs["patient_name"] = "name is required"
	}
	if strings.TrimSpace(f.PatientEmail) == "" {
		errs["patient_email"] = "email is required"
	} else if _, err := mail.ParseAddress(f.PatientEmail); err != nil {
		errs["patient_email"] = "email address is not valid"
	}
	if digits := search.NormalizeDigits(f.PatientPhone); len(digits) < 7 {
		errs["patient_phone"] = "phone number must contain at least 7 digits"
	}
	if strings.TrimSpace(f.Service) == "" {
		errs["service"] = "service is required"
	}
	if _, err := time.Parse("2006-01-02", f.Date); err != nil {
		errs["appointment_date"] = "date must be YYYY-MM-DD"
	}
	if f.Time != "" {
		if _, err := time.Parse("15:04", f.Time); err != nil {
			if _, err := time.Parse("15:04:05", f.Time); err != nil {
				errs["appointment_time"] = "time must be HH:MM"
			}
		}
	}
	return errs
}

// FeedbackForm is a public feedback submission.
type FeedbackForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (f FeedbackForm) Validate() FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(f.Name) == "" {
		errs["name"] = "name is required"
	}
	if f.Email != "" {
		if _, err := mail.ParseAddress(f.Email); err != nil {
			errs["email"] = "email address is not valid"
		}
	}
	if strings.TrimSpace(f.Message) == "" {
		errs["message"] = "message is required"
	}
	return errs
}

// Creator is the booking slice of the clinic API.
type Creator interface {
	CreateAppointment(ctx context.Context, req clinicapi.BookingRequest) (*clinicapi.AppointmentRecord, error)
}

// Service validates and submits bookings.
type Service struct {
	backend Creator
	logger  *logging.Logger
}

func NewService(backend Creator, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{backend: backend, logger: logger.Component("booking")}
}

// Submit validates the form and forwards it to the backend. Validation
// failures come back as FieldErrors; backend failures as an error.
func (s *Service) Submit(ctx context.Context, form Form) (*clinicapi.AppointmentRecord, FieldErrors, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return nil, errs, nil
	}

	req := clinicapi.BookingRequest{
		PatientName:     strings.TrimSpace(form.PatientName),
		PatientEmail:    strings.TrimSpace(form.PatientEmail),
		PatientPhone:    search.NormalizeDigits(form.PatientPhone),
		Service:         strings.TrimSpace(form.Service),
		Doctor:          form.DoctorID,
		AppointmentDate: form.Date,
		Message:         strings.TrimSpace(form.Message),
	}
	if form.Time != "" {
		t := normalizeTime(form.Time)
		req.AppointmentTime = &t
	}

	created, err := s.backend.CreateAppointment(ctx, req)
	if err != nil {
		return nil, nil, fmt.Errorf("booking: submit: %w", err)
	}
	s.logger.Info("booking submitted", "id", created.ID, "service", created.Service)
	return created, nil, nil
}

func normalizeTime(raw string) string {
	if t, err := time.Parse("15:04", raw); err == nil {
		return t.Format("15:04:05")
	}
	return raw
}
