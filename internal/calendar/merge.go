package calendar

import (
	"context"
	"strings"
	"sync"

	"github.com/oakpark-dental/clinic-portal/internal/clinicapi"
	"github.com/oakpark-dental/clinic-portal/pkg/logging"
)

// Backend is the slice of the clinic API the merger needs. *clinicapi.Client
// satisfies it; tests substitute stubs.
type Backend interface {
	ListAppointments(ctx context.Context, scope clinicapi.Scope) ([]clinicapi.AppointmentRecord, error)
	AppointmentsByPhone(ctx context.Context, phone string) ([]clinicapi.AppointmentRecord, error)
	ListHistory(ctx context.Context, scope clinicapi.Scope) ([]clinicapi.HistoryRecord, error)
}

// DegradeRecorder counts per-source merge degradations; nil disables it.
type DegradeRecorder interface {
	ObserveMergeDegraded(source string)
}

// Options tune merge behavior per surface.
type Options struct {
	// Exclude drops entries from the merged output. Calendar surfaces install
	// ExcludeRejected; the status-lookup and history surfaces leave it nil
	// and show everything.
	Exclude func(Appointment) bool
}

// ExcludeRejected is the calendar-only business rule that rejected entries
// stay off the grid. It keys on the derived status, not the raw one: history
// entries carry their own visit axis, which outranks the archived status, so
// a visited-or-unvisited snapshot never resolves to Rejected and stays on
// the calendar.
func ExcludeRejected(a Appointment) bool {
	if a.Source == SourceHistory && a.Visit != "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(a.Status), clinicapi.StatusRejected)
}

// Result is one merged fetch cycle. A source that failed contributes an empty
// list plus its error; the merge itself never fails.
type Result struct {
	Appointments []Appointment
	LiveErr      error
	HistoryErr   error
}

// Degraded reports whether at least one source failed.
func (r Result) Degraded() bool {
	return r.LiveErr != nil || r.HistoryErr != nil
}

// Merger combines the live-appointments and history sources into one
// timeline.
type Merger struct {
	backend Backend
	logger  *logging.Logger
	metrics DegradeRecorder
	opts    Options
}

// NewMerger creates a merger. metrics may be nil.
func NewMerger(backend Backend, logger *logging.Logger, metrics DegradeRecorder, opts Options) *Merger {
	if logger == nil {
		logger = logging.Default()
	}
	return &Merger{
		backend: backend,
		logger:  logger.Component("merge"),
		metrics: metrics,
		opts:    opts,
	}
}

// Merge fetches both sources concurrently for a doctor/date-range scope and
// returns the combined, deduplicated timeline. The two fetches race
// independently; output keeps live entries first, each source in the order
// the backend returned it.
func (m *Merger) Merge(ctx context.Context, scope clinicapi.Scope) Result {
	return m.merge(ctx,
		func(ctx context.Context) ([]clinicapi.AppointmentRecord, error) {
			return m.backend.ListAppointments(ctx, scope)
		},
		func(ctx context.Context) ([]clinicapi.HistoryRecord, error) {
			return m.backend.ListHistory(ctx, scope)
		},
	)
}

// MergeByPhone fetches both sources for an already-normalized (digits-only)
// phone number, for the public status-lookup page.
func (m *Merger) MergeByPhone(ctx context.Context, phone string) Result {
	return m.merge(ctx,
		func(ctx context.Context) ([]clinicapi.AppointmentRecord, error) {
			return m.backend.AppointmentsByPhone(ctx, phone)
		},
		func(ctx context.Context) ([]clinicapi.HistoryRecord, error) {
			return m.backend.ListHistory(ctx, clinicapi.Scope{Phone: phone})
		},
	)
}

func (m *Merger) merge(
	ctx context.Context,
	fetchLive func(context.Context) ([]clinicapi.AppointmentRecord, error),
	fetchHistory func(context.Context) ([]clinicapi.HistoryRecord, error),
) Result {
	var (
		wg      sync.WaitGroup
		live    []clinicapi.AppointmentRecord
		history []clinicapi.HistoryRecord
		result  Result
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		live, result.LiveErr = fetchLive(ctx)
	}()
	go func() {
		defer wg.Done()
		history, result.HistoryErr = fetchHistory(ctx)
	}()
	wg.Wait()

	if result.LiveErr != nil {
		m.logger.Warn("live source degraded to empty", "error", result.LiveErr)
		m.observeDegraded(string(SourceActive))
	}
	if result.HistoryErr != nil {
		m.logger.Warn("history source degraded to empty", "error", result.HistoryErr)
		m.observeDegraded(string(SourceHistory))
	}

	seen := make(map[Key]struct{}, len(live)+len(history))
	add := func(appt Appointment) {
		if _, dup := seen[appt.Key()]; dup {
			return
		}
		seen[appt.Key()] = struct{}{}
		if m.opts.Exclude != nil && m.opts.Exclude(appt) {
			return
		}
		result.Appointments = append(result.Appointments, appt)
	}

	for _, rec := range live {
		add(FromRecord(rec))
	}
	for _, rec := range history {
		add(FromHistory(rec))
	}
	return result
}

func (m *Merger) observeDegraded(source string) {
	if m.metrics == nil {
		return
	}
	m.metrics.ObserveMergeDegraded(source)
}
