// Package calendar builds the appointment-calendar view model: it merges live
// and archived appointment records, buckets them into hourly slots with a
// per-slot capacity, and resolves the user-facing status for each entry.
package calendar

import (
	"time"

	"github.com/oakpark-dental/clinic-portal/internal/clinicapi"
)

// DefaultDuration is the assumed length of an appointment when the backend
// only supplies a start. The legacy admin views disagreed (30 vs 60 minutes);
// 60 is canonical here.
const DefaultDuration = 60 * time.Minute

// Source tags where an entry came from. Live and archived records with the
// same numeric id are different entries.
type Source string

const (
	SourceActive  Source = "active"
	SourceHistory Source = "history"
)

// Key identifies an entry across both backend endpoints.
type Key struct {
	Source Source
	ID     int
}

// Patient is the normalized patient sub-record.
type Patient struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// DoctorRef is an optional doctor reference; Name is filled in by the
// directory lookup, not by normalization.
type DoctorRef struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

// Appointment is the per-render view model every calendar surface works on.
// It is rebuilt from fetched data on each cycle and never persisted.
type Appointment struct {
	ID      int        `json:"id"`
	Source  Source     `json:"source"`
	Patient Patient    `json:"patient"`
	Service string     `json:"service"`
	Doctor  *DoctorRef `json:"doctor,omitempty"`

	// Start/End are derived from appointment_date + appointment_time with
	// DefaultDuration. Start stays zero when the date is missing or
	// malformed; such entries keep their raw status and never go Overdue.
	Start time.Time `json:"start_time"`
	End   time.Time `json:"end_time"`

	Status string `json:"status"`
	// Visit is the history-only visit-tracking axis ("visited"/"unvisited"),
	// orthogonal to Status. Empty for live appointments.
	Visit string `json:"visit,omitempty"`

	Notes string `json:"notes,omitempty"`
}

// Key returns the dedupe key for this entry.
func (a Appointment) Key() Key {
	return Key{Source: a.Source, ID: a.ID}
}

// FromRecord normalizes a live appointment into the calendar shape.
func FromRecord(rec clinicapi.AppointmentRecord) Appointment {
	appt := Appointment{
		ID:     rec.ID,
		Source: SourceActive,
		Patient: Patient{
			Name:  rec.PatientName,
			Phone: rec.PatientPhone,
			Email: rec.PatientEmail,
		},
		Service: rec.Service,
		Status:  rec.Status,
		Notes:   rec.AdminNotes,
	}
	if rec.Doctor != nil {
		appt.Doctor = &DoctorRef{ID: *rec.Doctor}
	}
	appt.Start, appt.End = deriveWindow(rec.AppointmentDate, rec.AppointmentTime)
	return appt
}

// FromHistory normalizes an archived snapshot into the calendar shape. The
// snapshot's new_status stands in for the live status; the visit field rides
// along as its own axis.
func FromHistory(rec clinicapi.HistoryRecord) Appointment {
	appt := Appointment{
		ID:     rec.ID,
		Source: SourceHistory,
		Patient: Patient{
			Name:  rec.PatientName,
			Phone: rec.PatientPhone,
			Email: rec.PatientEmail,
		},
		Service: rec.Service,
		Status:  rec.NewStatus,
		Visit:   rec.Visited,
		Notes:   rec.Notes,
	}
	if rec.Doctor != nil {
		appt.Doctor = &DoctorRef{ID: *rec.Doctor}
	}
	appt.Start, appt.End = deriveWindow(rec.AppointmentDate, rec.AppointmentTime)
	return appt
}

// deriveWindow combines a calendar date with an optional time-of-day.
// A missing time defaults to midnight; a missing or malformed date yields a
// zero window.
func deriveWindow(date string, timeOfDay *string) (time.Time, time.Time) {
	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}
	}

	start := day
	if timeOfDay != nil && *timeOfDay != "" {
		if tod, ok := parseTimeOfDay(*timeOfDay); ok {
			start = day.Add(tod)
		}
	}
	return start, start.Add(DefaultDuration)
}

func parseTimeOfDay(raw string) (time.Duration, bool) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if tod, err := time.Parse(layout, raw); err == nil {
			return time.Duration(tod.Hour())*time.Hour +
				time.Duration(tod.Minute())*time.Minute +
				time.Duration(tod.Second())*time.Second, true
		}
	}
	return 0, false
}
