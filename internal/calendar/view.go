package calendar

import (
	"sync"
	"time"
)

// Phase is the top-level state of a calendar grid view.
type Phase string

const (
	PhaseIdle    Phase = "idle"    // no scope selected yet
	PhaseLoading Phase = "loading" // fetch in flight
	PhaseReady   Phase = "ready"   // data (or an error placeholder) rendered
)

// ViewScope is what the grid is currently showing.
type ViewScope struct {
	DoctorID *int   `json:"doctor_id,omitempty"`
	Date     string `json:"date,omitempty"` // "2006-01-02"
	Service  string `json:"service,omitempty"`
}

// ClickOutcome is the result of a slot click.
type ClickOutcome struct {
	Accepted bool    `json:"accepted"`
	Slot     SlotKey `json:"slot"`
	// Count is the raw occupancy of the clicked slot; set when rejected so
	// the caller can say "3 of 3 booked".
	Count int `json:"count,omitempty"`
}

// ViewState is the interaction state machine behind one calendar grid:
// idle -> loading -> ready -> loading (on scope change) -> ..., with a
// capacity-modal sub-state reachable only from ready. A failed fetch still
// lands in ready (empty grid + error message), never stuck in loading.
//
// The websocket hub and HTTP handlers share instances, so transitions are
// guarded by a mutex even though each render cycle is otherwise synchronous.
type ViewState struct {
	mu sync.Mutex

	phase   Phase
	scope   ViewScope
	grid    *SlotGrid
	result  Result
	errMsg  string
	modal   bool
	modalAt SlotKey
}

// NewViewState starts in idle with an empty grid.
func NewViewState() *ViewState {
	return &ViewState{
		phase: PhaseIdle,
		grid:  BuildGrid(nil, nil),
	}
}

// ChangeScope enters loading for a new scope. Any open modal closes; the
// previous grid stays visible until the fetch settles.
func (v *ViewState) ChangeScope(scope ViewScope) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scope = scope
	v.phase = PhaseLoading
	v.modal = false
}

// Refresh re-enters loading for the current scope.
func (v *ViewState) Refresh() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.phase == PhaseIdle {
		return
	}
	v.phase = PhaseLoading
}

// Complete installs a settled merge result and its grid, entering ready.
// A partially degraded result still renders; its source errors become the
// placeholder message.
func (v *ViewState) Complete(result Result, grid *SlotGrid) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.result = result
	v.grid = grid
	v.errMsg = ""
	if result.LiveErr != nil {
		v.errMsg = result.LiveErr.Error()
	} else if result.HistoryErr != nil {
		v.errMsg = result.HistoryErr.Error()
	}
	v.phase = PhaseReady
}

// Fail records a whole-cycle failure: ready with an empty grid and an error
// placeholder instead of an indefinite spinner.
func (v *ViewState) Fail(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.result = Result{}
	v.grid = BuildGrid(nil, nil)
	if err != nil {
		v.errMsg = err.Error()
	}
	v.phase = PhaseReady
}

// ClickSlot handles a new-appointment click on (date, hour). Clicks are only
// honored in ready; a click into a full slot is rejected and opens the
// capacity modal rather than being silently ignored.
func (v *ViewState) ClickSlot(date string, hour int) ClickOutcome {
	v.mu.Lock()
	defer v.mu.Unlock()

	key := SlotKey{Date: date, Hour: hour}
	if v.phase != PhaseReady || v.modal {
		return ClickOutcome{Accepted: false, Slot: key}
	}
	if v.grid.IsAtCapacity(date, hour) {
		v.modal = true
		v.modalAt = key
		return ClickOutcome{Accepted: false, Slot: key, Count: v.grid.Count(date, hour)}
	}
	return ClickOutcome{Accepted: true, Slot: key}
}

// DismissModal leaves the capacity-modal sub-state.
func (v *ViewState) DismissModal() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.modal = false
}

// Phase returns the current top-level phase.
func (v *ViewState) Phase() Phase {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.phase
}

// ModalOpen reports whether the capacity modal is showing, and for which slot.
func (v *ViewState) ModalOpen() (SlotKey, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.modalAt, v.modal
}

// Snapshot renders the state for transport to a client.
func (v *ViewState) Snapshot(now time.Time) ViewSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap := ViewSnapshot{
		Phase:     v.phase,
		Scope:     v.scope,
		Error:     v.errMsg,
		ModalOpen: v.modal,
		Slots:     make([]SlotView, 0),
	}
	for _, key := range v.grid.Keys() {
		slot := SlotView{
			Slot:       key,
			Count:      v.grid.Count(key.Date, key.Hour),
			Overflow:   v.grid.Overflow(key),
			AtCapacity: v.grid.IsAtCapacity(key.Date, key.Hour),
		}
		for _, pos := range v.grid.Positioned(key) {
			slot.Entries = append(slot.Entries, PositionedView{
				Positioned: pos,
				Display:    Resolve(pos.Appointment, now),
			})
		}
		snap.Slots = append(snap.Slots, slot)
	}
	return snap
}

// ViewSnapshot is the wire form of a rendered grid.
type ViewSnapshot struct {
	Phase     Phase      `json:"phase"`
	Scope     ViewScope  `json:"scope"`
	Error     string     `json:"error,omitempty"`
	ModalOpen bool       `json:"modal_open"`
	Slots     []SlotView `json:"slots"`
}

// SlotView is one occupied slot with its laid-out entries.
type SlotView struct {
	Slot       SlotKey          `json:"slot"`
	Count      int              `json:"count"`
	Overflow   int              `json:"overflow,omitempty"`
	AtCapacity bool             `json:"at_capacity"`
	Entries    []PositionedView `json:"entries"`
}

// PositionedView pairs layout geometry with the resolved display status.
type PositionedView struct {
	Positioned
	Display DisplayStatus `json:"display_status"`
}
