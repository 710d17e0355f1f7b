package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/oakpark-dental/clinic-portal/internal/calendar"
	"github.com/oakpark-dental/clinic-portal/internal/clinicapi"
)

// stubMerger returns a canned merge result and records what it was asked for.
type stubMerger struct {
	mu        sync.Mutex
	result    calendar.Result
	lastScope clinicapi.Scope
	lastPhone string
}

func (s *stubMerger) Merge(_ context.Context, scope clinicapi.Scope) calendar.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastScope = scope
	return s.result
}

func (s *stubMerger) MergeByPhone(_ context.Context, phone string) calendar.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPhone = phone
	return s.result
}

func (s *stubMerger) scope() clinicapi.Scope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastScope
}

func (s *stubMerger) phone() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPhone
}

// apptAt builds a live appointment starting at the given local time.
func apptAt(id int, start time.Time, status string) calendar.Appointment {
	return calendar.Appointment{
		ID:      id,
		Source:  calendar.SourceActive,
		Patient: calendar.Patient{Name: "Pat Doe", Phone: "9841112222"},
		Service: "Cleaning",
		Start:   start,
		End:     start.Add(calendar.DefaultDuration),
		Status:  status,
	}
}
