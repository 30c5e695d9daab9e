package activityapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"signupdesk/internal/adapters/http/perf"
	"signupdesk/internal/domain/activity"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// RequestIDHeader carries a per-call correlation id to the activities service.
const RequestIDHeader = "X-Request-ID"

// Client calls the external activities service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	collector  *perf.Collector
	tracer     trace.Tracer
	requestID  func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets a whole-exchange timeout. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithCollector records every call into the perf collector.
func WithCollector(col *perf.Collector) Option {
	return func(c *Client) { c.collector = col }
}

// WithRequestID overrides the correlation id generator.
func WithRequestID(gen func() string) Option {
	return func(c *Client) { c.requestID = gen }
}

// New creates a Client for the service rooted at baseURL.
// PRE: baseURL has no trailing slash
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		tracer:     otel.Tracer("signupdesk/activityapi"),
		requestID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoginResult mirrors the service's login response.
type LoginResult struct {
	Success     bool   `json:"success"`
	Token       string `json:"token"`
	TeacherName string `json:"teacher_name"`
	Message     string `json:"message"`
}

// ListActivities fetches the activity mapping, keeping the response's key order.
// PRE: none
// POST: Returns the catalog, an *APIError for non-2xx, or a *TransportError
func (c *Client) ListActivities(ctx context.Context) (activity.Catalog, error) {
	const op = "list activities"
	status, body, err := c.do(ctx, op, http.MethodGet, "/activities", "", nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, apiError(op, status, body)
	}
	catalog, err := decodeCatalog(body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	return catalog, nil
}

// Login posts credentials. A decoded response is returned whatever its status,
// since the service reports bad credentials in the body.
// POST: Returns the decoded result or a *TransportError
func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	const op = "login"
	payload, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return LoginResult{}, &TransportError{Op: op, Err: err}
	}
	_, body, err := c.do(ctx, op, http.MethodPost, "/auth/login", "", payload)
	if err != nil {
		return LoginResult{}, err
	}
	var result LoginResult
	if err := json.Unmarshal(body, &result); err != nil {
		return LoginResult{}, &TransportError{Op: op, Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	return result, nil
}

// Signup registers email for the named activity.
// PRE: token is the session bearer credential
// POST: Returns the service's message, an *APIError, or a *TransportError
func (c *Client) Signup(ctx context.Context, token, activityName, email string) (string, error) {
	return c.registration(ctx, "signup", http.MethodPost, token, activityName, "signup", email)
}

// Unregister removes email from the named activity.
// PRE: token is the session bearer credential
// POST: Returns the service's message, an *APIError, or a *TransportError
func (c *Client) Unregister(ctx context.Context, token, activityName, email string) (string, error) {
	return c.registration(ctx, "unregister", http.MethodDelete, token, activityName, "unregister", email)
}

func (c *Client) registration(ctx context.Context, op, method, token, activityName, action, email string) (string, error) {
	path := RegistrationPath(activityName, action, email)
	status, body, err := c.do(ctx, op, method, path, token, nil)
	if err != nil {
		return "", err
	}
	if !gjson.ValidBytes(body) {
		return "", &TransportError{Op: op, Err: ErrMalformedResponse}
	}
	if status < 200 || status > 299 {
		return "", apiError(op, status, body)
	}
	return gjson.GetBytes(body, "message").String(), nil
}

// RegistrationPath builds /activities/{name}/{action}?email=... with both parts escaped.
func RegistrationPath(activityName, action, email string) string {
	return "/activities/" + url.PathEscape(activityName) + "/" + action + "?email=" + url.QueryEscape(email)
}

// do performs one exchange and returns the status and body.
func (c *Client) do(ctx context.Context, op, method, path, token string, payload []byte) (int, []byte, error) {
	ctx, span := c.tracer.Start(ctx, "activityapi."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	reqID := c.requestID()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", path),
		attribute.String("request.id", reqID),
	)

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, &TransportError{Op: op, Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	status := 0
	defer func() {
		durationMs := float64(time.Since(start).Microseconds()) / 1000.0
		slog.Debug("upstream_call", "op", op, "method", method, "path", path,
			"status", status, "request_id", reqID, "duration_ms", durationMs)
		c.collector.Record(perf.Entry{
			Kind:       perf.KindUpstream,
			Path:       method + " " + templatePath(path),
			StatusCode: status,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return 0, nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	status = resp.StatusCode
	span.SetAttributes(attribute.Int("http.response.status_code", status))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read body")
		return status, nil, &TransportError{Op: op, Err: err}
	}
	if status >= 400 {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
	return status, body, nil
}

// templatePath collapses per-activity paths so perf stats group by route.
func templatePath(path string) string {
	p, _, _ := strings.Cut(path, "?")
	rest, ok := strings.CutPrefix(p, "/activities/")
	if !ok {
		return p
	}
	if i := strings.LastIndex(rest, "/"); i >= 0 {
		return "/activities/{name}" + rest[i:]
	}
	return p
}

func apiError(op string, status int, body []byte) *APIError {
	detail := gjson.GetBytes(body, "detail")
	e := &APIError{Op: op, Status: status}
	if detail.Type == gjson.String {
		e.Detail = detail.String()
	}
	return e
}
