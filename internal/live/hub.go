// Package live pushes calendar updates to connected admin clients over
// websocket. Each connection owns a grid view state machine; the hub
// re-fetches on a fixed poll interval and on client-driven scope changes.
package live

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"github.com/oakpark-dental/clinic-portal/internal/calendar"
	"github.com/oakpark-dental/clinic-portal/internal/clinicapi"
	"github.com/oakpark-dental/clinic-portal/internal/search"
	"github.com/oakpark-dental/clinic-portal/pkg/logging"
)

// Merger is the merge layer the hub fetches through.
type Merger interface {
	Merge(ctx context.Context, scope clinicapi.Scope) calendar.Result
	MergeByPhone(ctx context.Context, phone string) calendar.Result
}

// InboundMessage is what the admin UI sends.
type InboundMessage struct {
	Type     string `json:"type"` // "scope", "click", "dismiss", "refresh", "search", "ping"
	DoctorID *int   `json:"doctor_id,omitempty"`
	Date     string `json:"date,omitempty"`
	Hour     int    `json:"hour,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// OutboundMessage is what the hub sends back.
type OutboundMessage struct {
	Type     string                 `json:"type"` // "snapshot", "click_result", "search_results", "pong", "error"
	Snapshot *calendar.ViewSnapshot `json:"snapshot,omitempty"`
	Click    *calendar.ClickOutcome `json:"click,omitempty"`
	Results  []calendar.Appointment `json:"results,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// ClickRecorder observes slot-click gate decisions; nil disables it.
type ClickRecorder interface {
	ObserveSlotClick(accepted bool)
}

// Hub manages live admin sessions.
type Hub struct {
	merger   Merger
	logger   *logging.Logger
	metrics  ClickRecorder
	interval time.Duration
	debounce time.Duration
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[*websocket.Conn]*session
}

type session struct {
	view      *calendar.ViewState
	searcher  *search.Debouncer
	sendMu    sync.Mutex
	conn      *websocket.Conn
	done      chan struct{}
	closeOnce sync.Once
}

// NewHub creates a hub polling at interval; metrics may be nil.
func NewHub(merger Merger, interval, debounce time.Duration, metrics ClickRecorder, logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	return &Hub{
		merger:   merger,
		logger:   logger.Component("live"),
		metrics:  metrics,
		interval: interval,
		debounce: debounce,
		now:      time.Now,
		sessions: make(map[*websocket.Conn]*session),
	}
}

// Handler returns the websocket endpoint handler.
func (h *Hub) Handler() websocket.Handler {
	return websocket.Handler(h.serve)
}

// SessionCount reports connected admin clients.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func (h *Hub) serve(ws *websocket.Conn) {
	sess := &session{
		view:     calendar.NewViewState(),
		searcher: search.NewDebouncer(h.debounce),
		conn:     ws,
		done:     make(chan struct{}),
	}

	h.mu.Lock()
	h.sessions[ws] = sess
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.sessions, ws)
		h.mu.Unlock()
		sess.searcher.Cancel()
		sess.close()
		ws.Close()
	}()

	go h.pollLoop(sess)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(ws, &msg); err != nil {
			if err != io.EOF {
				h.logger.Debug("session read ended", "error", err)
			}
			return
		}
		h.dispatch(sess, msg)
	}
}

func (h *Hub) dispatch(sess *session, msg InboundMessage) {
	switch msg.Type {
	case "scope":
		scope := calendar.ViewScope{DoctorID: msg.DoctorID, Date: msg.Date}
		sess.view.ChangeScope(scope)
		h.refresh(sess)

	case "refresh":
		sess.view.Refresh()
		h.refresh(sess)

	case "click":
		outcome := sess.view.ClickSlot(msg.Date, msg.Hour)
		if h.metrics != nil {
			h.metrics.ObserveSlotClick(outcome.Accepted)
		}
		h.send(sess, OutboundMessage{Type: "click_result", Click: &outcome})
		h.sendSnapshot(sess)

	case "dismiss":
		sess.view.DismissModal()
		h.sendSnapshot(sess)

	case "search":
		digits := search.NormalizeDigits(msg.Phone)
		if digits == "" {
			h.send(sess, OutboundMessage{Type: "search_results", Results: []calendar.Appointment{}})
			return
		}
		// Debounced: rapid keystrokes cancel-and-replace, and a superseded
		// fetch that resolves late never reaches the client.
		sess.searcher.Schedule(context.Background(), func(ctx context.Context, still func() bool) {
			result := h.merger.MergeByPhone(ctx, digits)
			if !still() {
				return
			}
			out := OutboundMessage{Type: "search_results", Results: result.Appointments}
			if result.Degraded() {
				out.Error = "some results may be missing"
			}
			h.send(sess, out)
		})

	case "ping":
		h.send(sess, OutboundMessage{Type: "pong"})

	default:
		h.send(sess, OutboundMessage{Type: "error", Error: "unknown message type"})
	}
}

// pollLoop re-fetches the session's scope at the admin refresh cadence.
func (h *Hub) pollLoop(sess *session) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-sess.done:
			return
		case <-ticker.C:
			if sess.view.Phase() == calendar.PhaseIdle {
				continue
			}
			h.refresh(sess)
		}
	}
}

func (h *Hub) refresh(sess *session) {
	snap := sess.view.Snapshot(h.now())
	scope := clinicapi.Scope{
		DoctorID:  snap.Scope.DoctorID,
		StartDate: snap.Scope.Date,
		EndDate:   snap.Scope.Date,
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.interval)
	result := h.merger.Merge(ctx, scope)
	cancel()

	grid := calendar.BuildGrid(result.Appointments, h.logger)
	sess.view.Complete(result, grid)
	h.sendSnapshot(sess)
}

func (h *Hub) sendSnapshot(sess *session) {
	snap := sess.view.Snapshot(h.now())
	h.send(sess, OutboundMessage{Type: "snapshot", Snapshot: &snap})
}

func (h *Hub) send(sess *session, msg OutboundMessage) {
	sess.sendMu.Lock()
	defer sess.sendMu.Unlock()

	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("encode outbound message", "error", err)
		return
	}
	if err := websocket.Message.Send(sess.conn, string(payload)); err != nil {
		h.logger.Debug("session send failed", "error", err)
		sess.close()
	}
}

func (s *session) close() {
	s.closeOnce.Do(func() { close(s.done) })
}
