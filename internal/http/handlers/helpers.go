// Package handlers holds the HTTP handlers for the portal's JSON API:
// the admin calendar, the public status lookup, the slot-click gate, form
// submission, directory lookups, and the operational dashboard.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/oakpark-dental/clinic-portal/internal/calendar"
	"github.com/oakpark-dental/clinic-portal/internal/clinicapi"
)

// Merger is the merge layer as the handlers see it.
type Merger interface {
	Merge(ctx context.Context, scope clinicapi.Scope) calendar.Result
	MergeByPhone(ctx context.Context, phone string) calendar.Result
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// sourceErrors renders a merge result's per-source errors for transport.
// Keys are present only for sources that failed.
func sourceErrors(result calendar.Result) map[string]string {
	if !result.Degraded() {
		return nil
	}
	errs := map[string]string{}
	if result.LiveErr != nil {
		errs["active"] = result.LiveErr.Error()
	}
	if result.HistoryErr != nil {
		errs["history"] = result.HistoryErr.Error()
	}
	return errs
}
