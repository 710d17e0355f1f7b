package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakpark-dental/clinic-portal/internal/clinicapi"
)

type stubWriter struct {
	visitErr   error
	updateErr  error
	updated    *clinicapi.AppointmentRecord
	visitedIDs []int
	patchedID  int
	gotPatch   clinicapi.AppointmentPatch
}

func (s *stubWriter) MarkVisited(_ context.Context, historyID int) error {
	s.visitedIDs = append(s.visitedIDs, historyID)
	return s.visitErr
}

func (s *stubWriter) UpdateAppointment(_ context.Context, id int, patch clinicapi.AppointmentPatch) (*clinicapi.AppointmentRecord, error) {
	s.patchedID = id
	s.gotPatch = patch
	return s.updated, s.updateErr
}

func visitsRouter(h *VisitsHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/history/{id}/visit", h.MarkVisited)
	r.Patch("/api/appointments/{id}", h.Transition)
	return r
}

func TestMarkVisitedPassesThrough(t *testing.T) {
	backend := &stubWriter{}
	router := visitsRouter(NewVisitsHandler(backend, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/history/17/visit", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{17}, backend.visitedIDs)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, clinicapi.VisitVisited, resp["visited"])
}

func TestMarkVisitedRejectsNonNumericID(t *testing.T) {
	router := visitsRouter(NewVisitsHandler(&stubWriter{}, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/history/seventeen/visit", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransitionApproves(t *testing.T) {
	backend := &stubWriter{updated: &clinicapi.AppointmentRecord{ID: 9, Status: clinicapi.StatusApproved}}
	router := visitsRouter(NewVisitsHandler(backend, nil))

	req := httptest.NewRequest(http.MethodPatch, "/api/appointments/9",
		strings.NewReader(`{"status":"APPROVED","admin_notes":"confirmed by phone"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 9, backend.patchedID)
	require.NotNil(t, backend.gotPatch.Status)
	assert.Equal(t, clinicapi.StatusApproved, *backend.gotPatch.Status)
	require.NotNil(t, backend.gotPatch.AdminNotes)
	assert.Equal(t, "confirmed by phone", *backend.gotPatch.AdminNotes)
}

func TestTransitionRejectsInvalidTarget(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "back to pending", body: `{"status":"PENDING"}`},
		{name: "unknown status", body: `{"status":"CANCELLED"}`},
		{name: "empty status", body: `{}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			backend := &stubWriter{}
			router := visitsRouter(NewVisitsHandler(backend, nil))

			req := httptest.NewRequest(http.MethodPatch, "/api/appointments/9", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Zero(t, backend.patchedID)
		})
	}
}

func TestTransitionMapsUpstreamErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "backend 404 stays 404",
			err:  &clinicapi.Error{Kind: clinicapi.ErrStatus, Endpoint: "/api/appointments/9/", StatusCode: http.StatusNotFound},
			want: http.StatusNotFound,
		},
		{
			name: "backend 500 becomes bad gateway",
			err:  &clinicapi.Error{Kind: clinicapi.ErrStatus, Endpoint: "/api/appointments/9/", StatusCode: http.StatusInternalServerError},
			want: http.StatusBadGateway,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			backend := &stubWriter{updateErr: tc.err}
			router := visitsRouter(NewVisitsHandler(backend, nil))

			req := httptest.NewRequest(http.MethodPatch, "/api/appointments/9",
				strings.NewReader(`{"status":"REJECTED"}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
