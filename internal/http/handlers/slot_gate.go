package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/oakpark-dental/clinic-portal/internal/calendar"
	"github.com/oakpark-dental/clinic-portal/internal/clinicapi"
	"github.com/oakpark-dental/clinic-portal/pkg/logging"
)

// ClickRecorder observes gate decisions; nil disables it.
type ClickRecorder interface {
	ObserveSlotClick(accepted bool)
}

// SlotGateHandler validates a requested slot against the capacity rule before
// the UI opens the new-appointment form.
type SlotGateHandler struct {
	merger  Merger
	metrics ClickRecorder
	logger  *logging.Logger
}

func NewSlotGateHandler(merger Merger, metrics ClickRecorder, logger *logging.Logger) *SlotGateHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &SlotGateHandler{
		merger:  merger,
		metrics: metrics,
		logger:  logger.Component("slot_gate"),
	}
}

// SlotCheckRequest asks whether (date, hour) can take another appointment.
type SlotCheckRequest struct {
	DoctorID *int   `json:"doctor_id,omitempty"`
	Date     string `json:"date"`
	Hour     int    `json:"hour"`
}

// SlotCheckResponse is the gate decision. Capacity rejections answer 409 so
// the UI can distinguish the business rule from transport failures.
type SlotCheckResponse struct {
	Accepted bool   `json:"accepted"`
	Count    int    `json:"count"`
	Capacity int    `json:"capacity"`
	Error    string `json:"error,omitempty"`
}

// CheckSlot handles POST /api/calendar/slots/check.
func (h *SlotGateHandler) CheckSlot(w http.ResponseWriter, r *http.Request) {
	var req SlotCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	if req.Hour < 0 || req.Hour > 23 {
		writeError(w, http.StatusBadRequest, "hour must be 0-23")
		return
	}

	scope := clinicapi.Scope{DoctorID: req.DoctorID, StartDate: req.Date, EndDate: req.Date}
	result := h.merger.Merge(r.Context(), scope)
	grid := calendar.BuildGrid(result.Appointments, h.logger)

	count := grid.Count(req.Date, req.Hour)
	resp := SlotCheckResponse{
		Accepted: !grid.IsAtCapacity(req.Date, req.Hour),
		Count:    count,
		Capacity: calendar.SlotCapacity,
	}
	if h.metrics != nil {
		h.metrics.ObserveSlotClick(resp.Accepted)
	}

	if !resp.Accepted {
		resp.Error = "slot is fully booked"
		writeJSON(w, http.StatusConflict, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
