package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/oakpark-dental/clinic-portal/internal/clinicapi"
	"github.com/oakpark-dental/clinic-portal/pkg/logging"
)

// AppointmentWriter is the mutation slice of the clinic API.
type AppointmentWriter interface {
	MarkVisited(ctx context.Context, historyID int) error
	UpdateAppointment(ctx context.Context, id int, patch clinicapi.AppointmentPatch) (*clinicapi.AppointmentRecord, error)
}

// VisitsHandler passes admin mutations through to the backend: marking a
// history record visited, and the PENDING -> APPROVED/REJECTED transition.
type VisitsHandler struct {
	backend AppointmentWriter
	logger  *logging.Logger
}

func NewVisitsHandler(backend AppointmentWriter, logger *logging.Logger) *VisitsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &VisitsHandler{backend: backend, logger: logger.Component("visits")}
}

// MarkVisited handles POST /api/history/{id}/visit. Idempotent passthrough.
func (h *VisitsHandler) MarkVisited(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be an integer")
		return
	}

	if err := h.backend.MarkVisited(r.Context(), id); err != nil {
		h.logger.Error("mark visited failed", "id", id, "error", err)
		writeError(w, upstreamStatus(err), "could not update visit status")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "visited": clinicapi.VisitVisited})
}

// TransitionRequest is the admin decision on a pending appointment.
type TransitionRequest struct {
	Status     string `json:"status"` // "APPROVED" or "REJECTED"
	AdminNotes string `json:"admin_notes,omitempty"`
}

// Transition handles PATCH /api/appointments/{id}. The client refuses
// anything but the one-way PENDING -> APPROVED/REJECTED move.
func (h *VisitsHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be an integer")
		return
	}

	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "status must be APPROVED or REJECTED")
		return
	}

	patch := clinicapi.AppointmentPatch{Status: &req.Status}
	if req.AdminNotes != "" {
		patch.AdminNotes = &req.AdminNotes
	}
	if err := patch.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "status must be APPROVED or REJECTED")
		return
	}

	updated, err := h.backend.UpdateAppointment(r.Context(), id, patch)
	if err != nil {
		h.logger.Error("transition failed", "id", id, "status", req.Status, "error", err)
		writeError(w, upstreamStatus(err), "could not update appointment")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// upstreamStatus maps a backend failure onto our own response code: a 404
// from the backend stays 404, everything else is a bad gateway.
func upstreamStatus(err error) int {
	var apiErr *clinicapi.Error
	if errors.As(err, &apiErr) && apiErr.Kind == clinicapi.ErrStatus && apiErr.StatusCode == http.StatusNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}
