package clinicapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/oakpark-dental/clinic-portal/pkg/logging"
)

const defaultTimeout = 15 * time.Second

// MetricsRecorder receives one observation per backend call. Implementations
// must be nil-safe on the caller side: a nil recorder disables metrics.
type MetricsRecorder interface {
	ObserveUpstream(endpoint, outcome string, seconds float64)
}

// Config holds configuration for the backend client.
type Config struct {
	BaseURL string // e.g. "http://clinic-backend:8000"
	Timeout time.Duration
}

// Client talks to the clinic backend REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
	metrics    MetricsRecorder
	tracer     trace.Tracer
}

// New creates a backend client.
func New(cfg Config, logger *logging.Logger, metrics MetricsRecorder) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("clinicapi: BaseURL is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Component("clinicapi"),
		metrics:    metrics,
		tracer:     otel.Tracer("clinic-portal/clinicapi"),
	}, nil
}

// ListAppointments retrieves live appointments for the given scope.
// GET /api/appointments/?doctor_id=&start_date=&end_date=&page=&page_size=
func (c *Client) ListAppointments(ctx context.Context, scope Scope) ([]AppointmentRecord, error) {
	return fetchList[AppointmentRecord](ctx, c, "/api/appointments/", scope.values())
}

// AppointmentsByPhone retrieves appointments matching a digits-only phone
// number. GET /api/appointments/by_phone/?phone=
func (c *Client) AppointmentsByPhone(ctx context.Context, phone string) ([]AppointmentRecord, error) {
	params := url.Values{}
	params.Set("phone", phone)
	return fetchList[AppointmentRecord](ctx, c, "/api/appointments/by_phone/", params)
}

// ListHistory retrieves archived appointment records for the given scope.
// GET /api/history/?doctor_id=&start_date=&end_date=&phone=&page=&page_size=
func (c *Client) ListHistory(ctx context.Context, scope Scope) ([]HistoryRecord, error) {
	return fetchList[HistoryRecord](ctx, c, "/api/history/", scope.values())
}

// ListDoctors retrieves the doctor directory.
func (c *Client) ListDoctors(ctx context.Context) ([]Doctor, error) {
	return fetchList[Doctor](ctx, c, "/api/doctors/", nil)
}

// ListServices retrieves the service directory.
func (c *Client) ListServices(ctx context.Context) ([]Service, error) {
	return fetchList[Service](ctx, c, "/api/services/", nil)
}

// CreateAppointment submits a new booking. POST /api/appointments/
func (c *Client) CreateAppointment(ctx context.Context, req BookingRequest) (*AppointmentRecord, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("clinicapi: encode booking: %w", err)
	}

	const endpoint = "/api/appointments/"
	body, err := c.do(ctx, http.MethodPost, endpoint, nil, payload, true)
	if err != nil {
		return nil, err
	}

	var created AppointmentRecord
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, &Error{Kind: ErrDecode, Endpoint: endpoint, Err: err}
	}
	return &created, nil
}

// SubmitFeedback forwards a public feedback submission. POST /api/feedback/
func (c *Client) SubmitFeedback(ctx context.Context, req FeedbackRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("clinicapi: encode feedback: %w", err)
	}
	_, err = c.do(ctx, http.MethodPost, "/api/feedback/", nil, payload, false)
	return err
}

// MarkVisited flags a history record as visited.
// POST /api/history/{id}/mark_visited/ — idempotent, no body.
func (c *Client) MarkVisited(ctx context.Context, historyID int) error {
	endpoint := fmt.Sprintf("/api/history/%d/mark_visited/", historyID)
	_, err := c.do(ctx, http.MethodPost, endpoint, nil, nil, false)
	return err
}

// UpdateAppointment applies a status/notes mutation.
// PATCH /api/appointments/{id}/
func (c *Client) UpdateAppointment(ctx context.Context, id int, patch AppointmentPatch) (*AppointmentRecord, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("clinicapi: encode patch: %w", err)
	}

	endpoint := fmt.Sprintf("/api/appointments/%d/", id)
	body, err := c.do(ctx, http.MethodPatch, endpoint, nil, payload, true)
	if err != nil {
		return nil, err
	}

	var updated AppointmentRecord
	if err := json.Unmarshal(body, &updated); err != nil {
		return nil, &Error{Kind: ErrDecode, Endpoint: endpoint, Err: err}
	}
	return &updated, nil
}

// fetchList performs a GET against a list endpoint and decodes either
// response shape.
func fetchList[T any](ctx context.Context, c *Client, endpoint string, params url.Values) ([]T, error) {
	body, err := c.do(ctx, http.MethodGet, endpoint, params, nil, true)
	if err != nil {
		return nil, err
	}
	return decodeList[T](endpoint, body)
}

func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values, payload []byte, wantJSON bool) ([]byte, error) {
	target := c.baseURL + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	ctx, span := c.tracer.Start(ctx, "clinicapi."+method,
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("clinic.endpoint", endpoint),
		))
	defer span.End()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, &Error{Kind: ErrTransport, Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		c.observe(endpoint, string(ErrTransport), elapsed)
		c.logger.Warn("backend request failed", "endpoint", endpoint, "error", err)
		return nil, &Error{Kind: ErrTransport, Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.observe(endpoint, strconv.Itoa(resp.StatusCode), elapsed)
		io.Copy(io.Discard, resp.Body)
		return nil, &Error{Kind: ErrStatus, Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	if wantJSON && !isJSONContentType(resp.Header.Get("Content-Type")) {
		c.observe(endpoint, string(ErrContentType), elapsed)
		return nil, &Error{
			Kind:     ErrContentType,
			Endpoint: endpoint,
			Err:      fmt.Errorf("unexpected content type %q", resp.Header.Get("Content-Type")),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(endpoint, string(ErrTransport), elapsed)
		return nil, &Error{Kind: ErrTransport, Endpoint: endpoint, Err: err}
	}

	c.observe(endpoint, "ok", elapsed)
	return body, nil
}

func (c *Client) observe(endpoint, outcome string, seconds float64) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveUpstream(endpoint, outcome, seconds)
}

func isJSONContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}
	return ct == "application/json" || strings.HasSuffix(ct, "+json")
}

func (s Scope) values() url.Values {
	params := url.Values{}
	if s.DoctorID != nil {
		params.Set("doctor_id", strconv.Itoa(*s.DoctorID))
	}
	if s.StartDate != "" {
		params.Set("start_date", s.StartDate)
	}
	if s.EndDate != "" {
		params.Set("end_date", s.EndDate)
	}
	if s.Phone != "" {
		params.Set("phone", s.Phone)
	}
	if s.Page > 0 {
		params.Set("page", strconv.Itoa(s.Page))
	}
	if s.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(s.PageSize))
	}
	return params
}
