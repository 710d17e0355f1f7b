package clinicapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	c, err := New(Config{BaseURL: ts.URL}, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, ts
}

func TestListAppointments_BareArray(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/appointments/" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("doctor_id"); got != "7" {
			t.Fatalf("doctor_id = %q, want 7", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": 1, "patient_name": "Ana", "status": "PENDING", "appointment_date": "2026-09-01"},
		})
	})

	doctorID := 7
	appts, err := c.ListAppointments(context.Background(), Scope{DoctorID: &doctorID})
	if err != nil {
		t.Fatalf("ListAppointments: %v", err)
	}
	if len(appts) != 1 || appts[0].ID != 1 || appts[0].Status != StatusPending {
		t.Fatalf("unexpected appointments: %+v", appts)
	}
}

func TestListAppointments_PaginatedEnvelope(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"count": 42,
			"results": []map[string]any{
				{"id": 5, "patient_name": "Bo", "status": "APPROVED", "appointment_date": "2026-09-02"},
				{"id": 6, "patient_name": "Cy", "status": "APPROVED", "appointment_date": "2026-09-02"},
			},
		})
	})

	appts, err := c.ListAppointments(context.Background(), Scope{})
	if err != nil {
		t.Fatalf("ListAppointments: %v", err)
	}
	if len(appts) != 2 || appts[1].ID != 6 {
		t.Fatalf("unexpected appointments: %+v", appts)
	}
}

func TestListHistory_ErrorKinds(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    ErrorKind
	}{
		{
			name: "non-2xx status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			want: ErrStatus,
		},
		{
			name: "html content type",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				_, _ = w.Write([]byte("<html>login</html>"))
			},
			want: ErrContentType,
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`[{"id": `))
			},
			want: ErrDecode,
		},
		{
			name: "unexpected shape",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"detail": "throttled"}`))
			},
			want: ErrShape,
		},
		{
			name: "scalar body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`42`))
			},
			want: ErrShape,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, tt.handler)
			_, err := c.ListHistory(context.Background(), Scope{})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if got := KindOf(err); got != tt.want {
				t.Fatalf("KindOf = %q, want %q (err=%v)", got, tt.want, err)
			}
		})
	}
}

func TestAppointmentsByPhone_QueryEncoding(t *testing.T) {
	var gotPhone string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPhone = r.URL.Query().Get("phone")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	appts, err := c.AppointmentsByPhone(context.Background(), "9841112222")
	if err != nil {
		t.Fatalf("AppointmentsByPhone: %v", err)
	}
	if len(appts) != 0 {
		t.Fatalf("expected empty result, got %+v", appts)
	}
	if gotPhone != "9841112222" {
		t.Fatalf("phone = %q, want 9841112222", gotPhone)
	}
}

func TestMarkVisited(t *testing.T) {
	calls := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/history/12/mark_visited/" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	// Idempotent: calling twice succeeds both times.
	for i := 0; i < 2; i++ {
		if err := c.MarkVisited(context.Background(), 12); err != nil {
			t.Fatalf("MarkVisited call %d: %v", i+1, err)
		}
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestUpdateAppointment(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Fatalf("method = %s, want PATCH", r.Method)
		}
		var patch map[string]any
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			t.Fatalf("decode patch: %v", err)
		}
		if patch["status"] != "APPROVED" {
			t.Fatalf("patch = %+v", patch)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 3, "status": "APPROVED", "appointment_date": "2026-09-03"})
	})

	status := StatusApproved
	updated, err := c.UpdateAppointment(context.Background(), 3, AppointmentPatch{Status: &status})
	if err != nil {
		t.Fatalf("UpdateAppointment: %v", err)
	}
	if updated.Status != StatusApproved {
		t.Fatalf("updated = %+v", updated)
	}
}

func TestUpdateAppointment_RejectsReopen(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend should not be called for an invalid transition")
	})

	status := StatusPending
	_, err := c.UpdateAppointment(context.Background(), 3, AppointmentPatch{Status: &status})
	if err == nil {
		t.Fatal("expected validation error for PENDING target")
	}
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}, nil, nil); err == nil {
		t.Fatal("expected error for missing BaseURL")
	}
}
