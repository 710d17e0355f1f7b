package calendar

import (
	"testing"
	"time"

	"github.com/oakpark-dental/clinic-portal/internal/clinicapi"
)

func readyView(t *testing.T, appts []Appointment) *ViewState {
	t.Helper()
	v := NewViewState()
	v.ChangeScope(ViewScope{Date: "2026-09-01"})
	v.Complete(Result{Appointments: appts}, BuildGrid(appts, nil))
	return v
}

func TestViewState_HappyPath(t *testing.T) {
	v := NewViewState()
	if v.Phase() != PhaseIdle {
		t.Fatalf("initial phase = %q", v.Phase())
	}

	v.ChangeScope(ViewScope{Date: "2026-09-01"})
	if v.Phase() != PhaseLoading {
		t.Fatalf("after scope change: %q", v.Phase())
	}

	appts := []Appointment{apptAt(1, "2026-09-01", 10, 0)}
	v.Complete(Result{Appointments: appts}, BuildGrid(appts, nil))
	if v.Phase() != PhaseReady {
		t.Fatalf("after complete: %q", v.Phase())
	}

	// Scope change from ready goes back to loading.
	v.ChangeScope(ViewScope{Date: "2026-09-02"})
	if v.Phase() != PhaseLoading {
		t.Fatalf("after second scope change: %q", v.Phase())
	}
}

func TestViewState_FailureLandsInReadyWithError(t *testing.T) {
	v := NewViewState()
	v.ChangeScope(ViewScope{Date: "2026-09-01"})
	v.Fail(&clinicapi.Error{Kind: clinicapi.ErrTransport, Endpoint: "/api/appointments/"})

	if v.Phase() != PhaseReady {
		t.Fatalf("phase after failure = %q, must not stay loading", v.Phase())
	}
	snap := v.Snapshot(time.Now())
	if snap.Error == "" {
		t.Fatal("failure must surface an error placeholder")
	}
	if len(snap.Slots) != 0 {
		t.Fatalf("failed view should render empty, got %d slots", len(snap.Slots))
	}
}

func TestViewState_DegradedResultKeepsData(t *testing.T) {
	appts := []Appointment{apptAt(1, "2026-09-01", 10, 0)}
	v := NewViewState()
	v.ChangeScope(ViewScope{Date: "2026-09-01"})
	v.Complete(Result{
		Appointments: appts,
		HistoryErr:   &clinicapi.Error{Kind: clinicapi.ErrStatus, Endpoint: "/api/history/", StatusCode: 500},
	}, BuildGrid(appts, nil))

	snap := v.Snapshot(time.Now())
	if snap.Phase != PhaseReady || len(snap.Slots) != 1 || snap.Error == "" {
		t.Fatalf("degraded snapshot = %+v", snap)
	}
}

func TestViewState_CapacityModal(t *testing.T) {
	appts := []Appointment{
		apptAt(1, "2026-09-01", 10, 0),
		apptAt(2, "2026-09-01", 10, 0),
		apptAt(3, "2026-09-01", 10, 0),
	}
	v := readyView(t, appts)

	// Click into a free slot is accepted.
	outcome := v.ClickSlot("2026-09-01", 11)
	if !outcome.Accepted {
		t.Fatalf("free slot click rejected: %+v", outcome)
	}
	if _, open := v.ModalOpen(); open {
		t.Fatal("modal must not open on an accepted click")
	}

	// Click into the full slot is rejected and opens the modal.
	outcome = v.ClickSlot("2026-09-01", 10)
	if outcome.Accepted {
		t.Fatal("full slot click must be rejected")
	}
	if outcome.Count != 3 {
		t.Fatalf("outcome count = %d, want 3", outcome.Count)
	}
	slot, open := v.ModalOpen()
	if !open || slot.Hour != 10 {
		t.Fatalf("modal = (%+v, %v)", slot, open)
	}

	// While the modal is open further clicks are swallowed.
	outcome = v.ClickSlot("2026-09-01", 11)
	if outcome.Accepted {
		t.Fatal("clicks during modal must not be accepted")
	}

	v.DismissModal()
	if _, open := v.ModalOpen(); open {
		t.Fatal("modal should close on dismissal")
	}
	if v.Phase() != PhaseReady {
		t.Fatalf("phase after dismissal = %q", v.Phase())
	}
}

func TestViewState_ClicksIgnoredWhileLoading(t *testing.T) {
	v := NewViewState()
	v.ChangeScope(ViewScope{Date: "2026-09-01"})

	outcome := v.ClickSlot("2026-09-01", 10)
	if outcome.Accepted {
		t.Fatal("clicks must not be accepted while loading")
	}
}

func TestSnapshot_ResolvesDisplayStatuses(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.Local)
	appts := []Appointment{
		{ID: 1, Source: SourceActive, Status: clinicapi.StatusApproved, Start: now.Add(-2 * time.Hour)},
		{ID: 2, Source: SourceHistory, Status: clinicapi.StatusApproved, Visit: "visited", Start: now.Add(-2 * time.Hour)},
	}
	v := readyView(t, appts)

	snap := v.Snapshot(now)
	if len(snap.Slots) != 1 {
		t.Fatalf("slots = %d, want 1", len(snap.Slots))
	}
	entries := snap.Slots[0].Entries
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Display != StatusOverdue {
		t.Fatalf("entry 0 display = %q, want Overdue", entries[0].Display)
	}
	if entries[1].Display != StatusVisited {
		t.Fatalf("entry 1 display = %q, want Visited", entries[1].Display)
	}
}
