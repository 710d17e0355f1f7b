// Package clinicapi is the HTTP client for the clinic's backend REST API
// (appointments, history, doctors, services). All appointment data lives
// behind that API; this service never persists it.
package clinicapi

import "fmt"

// Appointment statuses as stored by the backend. Transitions are one-way:
// PENDING -> APPROVED or PENDING -> REJECTED; the backend archives the record
// into history on transition.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Visit-tracking values on history records. This axis is independent of the
// approval status: an APPROVED visit can still be unvisited.
const (
	VisitVisited   = "visited"
	VisitUnvisited = "unvisited"
)

// AppointmentRecord is a live appointment as returned by the backend.
// Date and time stay as raw strings; parsing (and tolerance of malformed
// values) is the calendar layer's job.
type AppointmentRecord struct {
	ID              int     `json:"id"`
	PatientName     string  `json:"patient_name"`
	PatientEmail    string  `json:"patient_email"`
	PatientPhone    string  `json:"patient_phone"`
	Service         string  `json:"service"`
	Doctor          *int    `json:"doctor,omitempty"`
	AppointmentDate string  `json:"appointment_date"`
	AppointmentTime *string `json:"appointment_time,omitempty"`
	Message         string  `json:"message,omitempty"`
	Status          string  `json:"status"`
	AdminNotes      string  `json:"admin_notes,omitempty"`
	CreatedAt       string  `json:"created_at,omitempty"`
	UpdatedAt       string  `json:"updated_at,omitempty"`
}

// HistoryRecord is an archived snapshot of an appointment at the moment its
// status changed. Appointment is a weak reference to the former live record;
// it may no longer exist.
type HistoryRecord struct {
	ID              int     `json:"id"`
	Appointment     *int    `json:"appointment,omitempty"`
	PatientName     string  `json:"patient_name"`
	PatientEmail    string  `json:"patient_email"`
	PatientPhone    string  `json:"patient_phone"`
	Service         string  `json:"service"`
	Doctor          *int    `json:"doctor,omitempty"`
	AppointmentDate string  `json:"appointment_date"`
	AppointmentTime *string `json:"appointment_time,omitempty"`
	PreviousStatus  string  `json:"previous_status"`
	NewStatus       string  `json:"new_status"`
	ChangedBy       string  `json:"changed_by"`
	Notes           string  `json:"notes,omitempty"`
	Visited         string  `json:"visited"`
	ChangedAt       string  `json:"changed_at,omitempty"`
}

// Doctor is a read-only directory record used for id -> name lookups.
type Doctor struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty,omitempty"`
}

// Service is a read-only directory record.
type Service struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Scope narrows an appointments or history listing.
type Scope struct {
	DoctorID  *int
	StartDate string // ISO calendar date, e.g. "2026-08-28"
	EndDate   string
	Phone     string // digits-only; callers normalize before building a Scope
	Page      int
	PageSize  int
}

// BookingRequest is the payload for creating a new appointment from the
// public booking form. New appointments always start PENDING.
type BookingRequest struct {
	PatientName     string  `json:"patient_name"`
	PatientEmail    string  `json:"patient_email"`
	PatientPhone    string  `json:"patient_phone"`
	Service         string  `json:"service"`
	Doctor          *int    `json:"doctor,omitempty"`
	AppointmentDate string  `json:"appointment_date"`
	AppointmentTime *string `json:"appointment_time,omitempty"`
	Message         string  `json:"message,omitempty"`
}

// FeedbackRequest is the payload for the public feedback form.
type FeedbackRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message"`
}

// AppointmentPatch carries a status/notes mutation for PATCH requests.
// Only non-nil fields are sent.
type AppointmentPatch struct {
	Status     *string `json:"status,omitempty"`
	AdminNotes *string `json:"admin_notes,omitempty"`
}

// Validate rejects transitions the backend would refuse anyway: status may
// only move to APPROVED or REJECTED.
func (p AppointmentPatch) Validate() error {
	if p.Status == nil {
		return nil
	}
	switch *p.Status {
	case StatusApproved, StatusRejected:
		return nil
	default:
		return fmt.Errorf("clinicapi: invalid target status %q", *p.Status)
	}
}
