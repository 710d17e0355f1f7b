package handlers

import (
	"context"
	"net/http"

	"github.com/oakpark-dental/clinic-portal/internal/clinicapi"
	"github.com/oakpark-dental/clinic-portal/pkg/logging"
)

// DirectoryReader lists doctors and services for the booking form dropdowns.
type DirectoryReader interface {
	Doctors(ctx context.Context) ([]clinicapi.Doctor, error)
	Services(ctx context.Context) ([]clinicapi.Service, error)
}

// DirectoryHandler serves the cached doctor and service directories.
type DirectoryHandler struct {
	directory DirectoryReader
	logger    *logging.Logger
}

func NewDirectoryHandler(directory DirectoryReader, logger *logging.Logger) *DirectoryHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &DirectoryHandler{directory: directory, logger: logger.Component("directory_handler")}
}

// ListDoctors handles GET /api/doctors.
func (h *DirectoryHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.directory.Doctors(r.Context())
	if err != nil {
		h.logger.Error("doctor directory fetch failed", "error", err)
		writeError(w, http.StatusBadGateway, "doctor directory unavailable")
		return
	}
	if doctors == nil {
		doctors = []clinicapi.Doctor{}
	}
	writeJSON(w, http.StatusOK, doctors)
}

// ListServices handles GET /api/services.
func (h *DirectoryHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.directory.Services(r.Context())
	if err != nil {
		h.logger.Error("service directory fetch failed", "error", err)
		writeError(w, http.StatusBadGateway, "service directory unavailable")
		return
	}
	if services == nil {
		services = []clinicapi.Service{}
	}
	writeJSON(w, http.StatusOK, services)
}
