package handlers

import (
	"net/http"
	"time"
)

// UIConfigHandler tells the front end its refresh timings so the status page
// poll cadence and the search debounce stay server-controlled.
type UIConfigHandler struct {
	publicPoll time.Duration
	adminPoll  time.Duration
	debounce   time.Duration
}

func NewUIConfigHandler(publicPoll, adminPoll, debounce time.Duration) *UIConfigHandler {
	return &UIConfigHandler{
		publicPoll: publicPoll,
		adminPoll:  adminPoll,
		debounce:   debounce,
	}
}

// UIConfigResponse is the front-end timing contract, all in milliseconds.
type UIConfigResponse struct {
	PublicPollMs   int64 `json:"public_poll_ms"`
	AdminPollMs    int64 `json:"admin_poll_ms"`
	SearchDebounce int64 `json:"search_debounce_ms"`
}

// Get handles GET /api/ui-config.
func (h *UIConfigHandler) Get(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, UIConfigResponse{
		PublicPollMs:   h.publicPoll.Milliseconds(),
		AdminPollMs:    h.adminPoll.Milliseconds(),
		SearchDebounce: h.debounce.Milliseconds(),
	})
}
