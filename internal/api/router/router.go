// Package router wires the portal's HTTP surface: the public status and
// booking endpoints, the admin calendar API, the live websocket, and the
// operational endpoints.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/oakpark-dental/clinic-portal/internal/http/handlers"
	httpmiddleware "github.com/oakpark-dental/clinic-portal/internal/http/middleware"
	"github.com/oakpark-dental/clinic-portal/internal/live"
	"github.com/oakpark-dental/clinic-portal/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Calendar           *handlers.CalendarHandler
	SlotGate           *handlers.SlotGateHandler
	StatusLookup       *handlers.StatusLookupHandler
	Booking            *handlers.BookingHandler
	Directory          *handlers.DirectoryHandler
	Visits             *handlers.VisitsHandler
	Dashboard          *handlers.DashboardHandler
	UIConfig           *handlers.UIConfigHandler
	LiveHub            *live.Hub
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Public endpoints: status lookup, booking and feedback forms, the
	// directory dropdowns behind them.
	r.Route("/api", func(api chi.Router) {
		if cfg.StatusLookup != nil {
			api.Get("/status", cfg.StatusLookup.Lookup)
		}
		if cfg.Booking != nil {
			api.Post("/bookings", cfg.Booking.CreateBooking)
			api.Post("/feedback", cfg.Booking.CreateFeedback)
		}
		if cfg.Directory != nil {
			api.Get("/doctors", cfg.Directory.ListDoctors)
			api.Get("/services", cfg.Directory.ListServices)
		}
		if cfg.UIConfig != nil {
			api.Get("/ui-config", cfg.UIConfig.Get)
		}

		// Admin calendar and back-office endpoints.
		if cfg.Calendar != nil {
			api.Get("/calendar/day", cfg.Calendar.DayGrid)
		}
		if cfg.SlotGate != nil {
			api.Post("/calendar/slots/check", cfg.SlotGate.CheckSlot)
		}
		if cfg.Visits != nil {
			api.Post("/history/{id}/visit", cfg.Visits.MarkVisited)
			api.Patch("/appointments/{id}", cfg.Visits.Transition)
		}
		if cfg.Dashboard != nil {
			api.Get("/admin/dashboard", cfg.Dashboard.GetDashboard)
		}
	})

	if cfg.LiveHub != nil {
		r.Handle("/ws/calendar", cfg.LiveHub.Handler())
	}

	return r
}
