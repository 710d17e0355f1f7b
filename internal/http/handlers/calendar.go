package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/oakpark-dental/clinic-portal/internal/calendar"
	"github.com/oakpark-dental/clinic-portal/internal/clinicapi"
	"github.com/oakpark-dental/clinic-portal/pkg/logging"
)

// DoctorNamer resolves doctor ids to display names for grid decoration.
type DoctorNamer interface {
	DoctorName(ctx context.Context, id int) (string, bool)
}

// CalendarHandler serves the admin day-grid view model.
type CalendarHandler struct {
	merger  Merger
	doctors DoctorNamer
	logger  *logging.Logger
	now     func() time.Time
}

func NewCalendarHandler(merger Merger, doctors DoctorNamer, logger *logging.Logger) *CalendarHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &CalendarHandler{
		merger:  merger,
		doctors: doctors,
		logger:  logger.Component("calendar_handler"),
		now:     time.Now,
	}
}

// DayGridResponse is the admin calendar payload for one day.
type DayGridResponse struct {
	Date   string              `json:"date"`
	Slots  []calendar.SlotView `json:"slots"`
	Errors map[string]string   `json:"errors,omitempty"`
}

// DayGrid returns the positioned slot grid for one doctor/day.
// GET /api/calendar/day?doctor_id=&date=
// A degraded fetch still answers 200 with whatever data survived plus the
// per-source errors; the view must never hang on a spinner.
func (h *CalendarHandler) DayGrid(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	date := q.Get("date")
	if date == "" {
		date = h.now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	scope := clinicapi.Scope{StartDate: date, EndDate: date}
	if raw := q.Get("doctor_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "doctor_id must be an integer")
			return
		}
		scope.DoctorID = &id
	}

	result := h.merger.Merge(r.Context(), scope)
	h.decorateDoctors(r.Context(), result.Appointments)

	grid := calendar.BuildGrid(result.Appointments, h.logger)
	now := h.now()

	resp := DayGridResponse{
		Date:   date,
		Slots:  make([]calendar.SlotView, 0),
		Errors: sourceErrors(result),
	}
	for _, key := range grid.Keys() {
		slot := calendar.SlotView{
			Slot:       key,
			Count:      grid.Count(key.Date, key.Hour),
			Overflow:   grid.Overflow(key),
			AtCapacity: grid.IsAtCapacity(key.Date, key.Hour),
		}
		for _, pos := range grid.Positioned(key) {
			slot.Entries = append(slot.Entries, calendar.PositionedView{
				Positioned: pos,
				Display:    calendar.Resolve(pos.Appointment, now),
			})
		}
		resp.Slots = append(resp.Slots, slot)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *CalendarHandler) decorateDoctors(ctx context.Context, appts []calendar.Appointment) {
	if h.doctors == nil {
		return
	}
	for i := range appts {
		if ref := appts[i].Doctor; ref != nil && ref.Name == "" {
			if name, ok := h.doctors.DoctorName(ctx, ref.ID); ok {
				ref.Name = name
			}
		}
	}
}
