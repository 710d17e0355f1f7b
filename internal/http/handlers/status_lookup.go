package handlers

import (
	"net/http"
	"time"

	"github.com/oakpark-dental/clinic-portal/internal/calendar"
	"github.com/oakpark-dental/clinic-portal/internal/search"
	"github.com/oakpark-dental/clinic-portal/pkg/logging"
)

// StatusLookupHandler serves the public "check my appointment" page: every
// live and archived entry for a phone number, rejected ones included.
type StatusLookupHandler struct {
	merger Merger
	logger *logging.Logger
	now    func() time.Time
}

func NewStatusLookupHandler(merger Merger, logger *logging.Logger) *StatusLookupHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &StatusLookupHandler{
		merger: merger,
		logger: logger.Component("status_lookup"),
		now:    time.Now,
	}
}

// LookupEntry is one row on the status page.
type LookupEntry struct {
	calendar.Appointment
	Display calendar.DisplayStatus `json:"display_status"`
}

// LookupResponse is the status-page payload.
type LookupResponse struct {
	Phone   string            `json:"phone"`
	Entries []LookupEntry     `json:"entries"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Lookup handles GET /api/status?phone=. The phone is normalized to digits
// before querying, so any formatting of the same number is the same search.
func (h *StatusLookupHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	digits := search.NormalizeDigits(r.URL.Query().Get("phone"))
	if digits == "" {
		writeError(w, http.StatusBadRequest, "phone is required")
		return
	}

	result := h.merger.MergeByPhone(r.Context(), digits)
	now := h.now()

	resp := LookupResponse{
		Phone:   digits,
		Entries: make([]LookupEntry, 0, len(result.Appointments)),
		Errors:  sourceErrors(result),
	}
	for _, appt := range result.Appointments {
		resp.Entries = append(resp.Entries, LookupEntry{
			Appointment: appt,
			Display:     calendar.Resolve(appt, now),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
