package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/oakpark-dental/clinic-portal/internal/booking"
	"github.com/oakpark-dental/clinic-portal/internal/clinicapi"
	"github.com/oakpark-dental/clinic-portal/pkg/logging"
)

// BookingSubmitter is the booking service as the handler sees it.
type BookingSubmitter interface {
	Submit(ctx context.Context, form booking.Form) (*clinicapi.AppointmentRecord, booking.FieldErrors, error)
}

// FeedbackSender forwards validated feedback to the backend.
type FeedbackSender interface {
	SubmitFeedback(ctx context.Context, req clinicapi.FeedbackRequest) error
}

// BookingHandler serves the public booking and feedback forms.
type BookingHandler struct {
	bookings BookingSubmitter
	feedback FeedbackSender
	logger   *logging.Logger
}

func NewBookingHandler(bookings BookingSubmitter, feedback FeedbackSender, logger *logging.Logger) *BookingHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingHandler{
		bookings: bookings,
		feedback: feedback,
		logger:   logger.Component("booking_handler"),
	}
}

// CreateBooking handles POST /api/bookings. Field problems come back as 422
// with a field_errors map so the form can highlight each input.
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var form booking.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, fieldErrs, err := h.bookings.Submit(r.Context(), form)
	if err != nil {
		h.logger.Error("booking submission failed", "error", err)
		writeError(w, http.StatusBadGateway, "could not submit booking")
		return
	}
	if len(fieldErrs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"field_errors": fieldErrs})
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// CreateFeedback handles POST /api/feedback.
func (h *BookingHandler) CreateFeedback(w http.ResponseWriter, r *http.Request) {
	var form booking.FeedbackForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if fieldErrs := form.Validate(); len(fieldErrs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"field_errors": fieldErrs})
		return
	}

	req := clinicapi.FeedbackRequest{Name: form.Name, Email: form.Email, Message: form.Message}
	if err := h.feedback.SubmitFeedback(r.Context(), req); err != nil {
		h.logger.Error("feedback submission failed", "error", err)
		writeError(w, http.StatusBadGateway, "could not submit feedback")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "received"})
}
