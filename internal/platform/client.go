package platform

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/placement/internal/errors"
	"github.com/felixgeelhaar/placement/internal/retry"
	"github.com/felixgeelhaar/placement/internal/telemetry"
)

// TokenSource supplies the bearer token for authenticated requests.
// An empty token sends the request without an Authorization header.
type TokenSource interface {
	AccessToken() string
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// AccessToken implements TokenSource
func (t StaticToken) AccessToken() string { return string(t) }

// Observer is told about every completed API call. status is 0 for transport failures.
type Observer func(endpoint string, status int, elapsed time.Duration)

// Client is the placement portal REST API client
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	retry      retry.Config
	observe    Observer
	tracing    trace.TracerProvider
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithTokenSource sets where bearer tokens come from
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithRetry configures retries for idempotent GET requests
func WithRetry(cfg retry.Config) Option {
	return func(c *Client) { c.retry = cfg }
}

// WithObserver registers a per-request observer (metrics)
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observe = o }
}

// WithTracerProvider traces requests with tp instead of the global provider
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracing = tp }
}

// NewClient creates a new placement API client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		retry: retry.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError is a non-2xx response from the API
type APIError struct {
	StatusCode int
	Message    string
	Details    []string
	RequestID  string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Summary(), e.StatusCode)
}

// Summary is the human-readable message with any validation details joined in.
func (e *APIError) Summary() string {
	msg := e.Message
	if len(e.Details) > 0 {
		msg = strings.Join(e.Details, "; ")
		if e.Message != "" {
			msg = e.Message + ": " + msg
		}
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return msg
}

// Describe returns a message suitable for a toast: the API summary when err
// came from the server, the error text otherwise.
func Describe(err error) string {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Summary()
	}
	var pe *errors.PortalError
	if stderrors.As(err, &pe) {
		return pe.Message
	}
	return err.Error()
}

// IsUnauthorized reports whether err is a 401 from the API
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden reports whether err is a 403 from the API
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

// IsNetwork reports whether err is a transport failure
func IsNetwork(err error) bool {
	return errors.HasCode(err, errors.ErrCodeNetwork)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return stderrors.As(err, &apiErr) && apiErr.StatusCode == status
}

// errorBody covers the error envelopes the API is known to return
type errorBody struct {
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
	Errors  json.RawMessage `json:"errors"`
}

type fieldDetail struct {
	Field   string `json:"field"`
	Path    string `json:"path"`
	Message string `json:"message"`
	Msg     string `json:"msg"`
}

// parseDetails flattens a validation details array of strings or {field, message} objects
func parseDetails(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var plain []string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}

	var fields []fieldDetail
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		name := f.Field
		if name == "" {
			name = f.Path
		}
		msg := f.Message
		if msg == "" {
			msg = f.Msg
		}
		if name != "" {
			out = append(out, name+": "+msg)
		} else {
			out = append(out, msg)
		}
	}
	return out
}

func newAPIError(resp *http.Response, requestID string) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	apiErr := &APIError{StatusCode: resp.StatusCode, RequestID: requestID}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		apiErr.Message = eb.Message
		if apiErr.Message == "" {
			apiErr.Message = eb.Error
		}
		apiErr.Details = parseDetails(eb.Details)
		if len(apiErr.Details) == 0 {
			apiErr.Details = parseDetails(eb.Errors)
		}
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(body))
	return apiErr
}

// do performs one request. GETs are retried on transport failures and 5xx responses.
func (c *Client) do(ctx context.Context, method, path, endpoint string, body, out any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(errors.ErrCodeBadResponse, "failed to marshal request body", err)
		}
		payload = data
	}

	attempt := func(ctx context.Context) error {
		err := c.once(ctx, method, path, endpoint, payload, out)
		if err == nil {
			return nil
		}
		if method != http.MethodGet {
			return retry.Permanent(err)
		}
		var apiErr *APIError
		if stderrors.As(err, &apiErr) && apiErr.StatusCode < 500 {
			return retry.Permanent(err)
		}
		if errors.HasCode(err, errors.ErrCodeBadResponse) {
			return retry.Permanent(err)
		}
		return err
	}

	return retry.Do(ctx, c.retry, attempt)
}

func (c *Client) once(ctx context.Context, method, path, endpoint string, payload []byte, out any) (err error) {
	ctx, span := telemetry.StartAPISpan(ctx, c.tracing, endpoint, method, path)
	defer func() { telemetry.End(span, err) }()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBadResponse, "failed to create request", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(endpoint, 0, start)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.NewNetworkError(err)
	}
	defer resp.Body.Close()
	c.record(endpoint, resp.StatusCode, start)
	telemetry.RecordStatus(span, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp, requestID)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return errors.Wrap(errors.ErrCodeBadResponse, fmt.Sprintf("failed to decode %s response", endpoint), err)
	}
	return nil
}

func (c *Client) record(endpoint string, status int, start time.Time) {
	if c.observe != nil {
		c.observe(endpoint, status, time.Since(start))
	}
}

// decodeEnvelope reads either {"<key>": value} or a bare value into out
func decodeEnvelope(raw json.RawMessage, key string, out any) error {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if inner, ok := envelope[key]; ok && string(inner) != "null" {
			return json.Unmarshal(inner, out)
		}
	}
	return json.Unmarshal(raw, out)
}
