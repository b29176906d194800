// Package gateway is the single configured HTTP client for the clinic backend.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/otcheredev/clinic-desk/internal/apperr"
	"github.com/otcheredev/clinic-desk/pkg/logger"
	"github.com/otcheredev/clinic-desk/pkg/metrics"
)

// DefaultTimeout applies to every request without an explicit override
const DefaultTimeout = 15 * time.Second

// TokenProvider supplies the bearer token at request-build time
type TokenProvider interface {
	Token() string
}

// TokenFunc adapts a function to TokenProvider
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Config holds gateway configuration
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	HTTPClient        *http.Client
	Metrics           *metrics.Metrics
}

// Request describes one backend call
type Request struct {
	Method  string
	Path    string
	Params  url.Values
	Body    any
	Timeout time.Duration
	// Anonymous skips the Authorization header
	Anonymous bool
}

// Client sends requests to the backend and normalizes failures
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenProvider
	timeout time.Duration
	limiter *rate.Limiter
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// New creates a gateway client. tokens may be nil for anonymous use.
func New(cfg Config, tokens TokenProvider) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// Deadlines come from the per-request context.
		httpClient = &http.Client{}
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	if tokens == nil {
		tokens = TokenFunc(func() string { return "" })
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
		timeout: timeout,
		limiter: limiter,
		metrics: cfg.Metrics,
		log:     logger.Component("gateway"),
	}, nil
}

// Do executes req and decodes a successful JSON body into out (if non-nil).
// Every failure is returned as *apperr.Error.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resource := resourceOf(req.Path)
	start := time.Now()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			e := apperr.Wrap(apperr.KindTimeout, msgTimeout, err)
			e.Retryable = true
			c.observe(req, resource, e, start)
			return e
		}
	}

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		e := apperr.Wrap(apperr.KindValidation, "The request could not be built.", err)
		c.observe(req, resource, e, start)
		return e
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		e := classifyTransport(ctx, err)
		c.observe(req, resource, e, start)
		return e
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		e := classifyTransport(ctx, err)
		c.observe(req, resource, e, start)
		return e
	}

	if resp.StatusCode >= http.StatusBadRequest {
		e := statusError(resp.StatusCode, data)
		c.observe(req, resource, e, start)
		return e
	}

	c.observe(req, resource, nil, start)

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperr.Wrap(apperr.KindServer, "The server sent an unreadable response.", fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	endpoint := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Params) > 0 {
		endpoint += "?" + req.Params.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if !req.Anonymous {
		c.addAuth(httpReq)
	}
	return httpReq, nil
}

// addAuth adds the bearer token when one is available
func (c *Client) addAuth(req *http.Request) {
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) observe(req Request, resource string, err error, start time.Time) {
	elapsed := time.Since(start)
	outcome := "ok"
	if e, ok := apperr.As(err); ok {
		outcome = string(e.Kind)
	}
	c.metrics.ObserveRequest(req.Method, resource, outcome, elapsed)

	if err != nil {
		c.log.Warn().Err(err).
			Str("method", req.Method).
			Str("path", req.Path).
			Str("outcome", outcome).
			Dur("duration", elapsed).
			Msg("Backend request failed")
		return
	}
	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Dur("duration", elapsed).
		Msg("Backend request")
}

const (
	msgTimeout = "The request took too long. Please try again."
	msgNetwork = "Could not reach the server. Check your connection or that the server is running."
)

func classifyTransport(ctx context.Context, err error) *apperr.Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		e := apperr.Wrap(apperr.KindTimeout, msgTimeout, err)
		e.Retryable = true
		return e
	}
	e := apperr.Wrap(apperr.KindNetworkUnreachable, msgNetwork, err)
	// A caller cancellation is not worth retrying.
	e.Retryable = !errors.Is(err, context.Canceled)
	return e
}

func statusError(code int, body []byte) *apperr.Error {
	e := &apperr.Error{
		Kind:       apperr.KindHTTPStatus,
		StatusCode: code,
		Message:    StatusMessage(code),
		Retryable:  code >= http.StatusInternalServerError,
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return e
	}
	e.Payload = append([]byte(nil), trimmed...)

	var payload apperr.Payload
	if err := json.Unmarshal(trimmed, &payload); err == nil {
		e.ServerMessage = payload.Message
		e.ErrorType = payload.ErrorType
		e.ConflictTime = payload.ConflictTime
	}
	return e
}

// StatusMessage returns the default display message for an HTTP status
func StatusMessage(code int) string {
	switch code {
	case http.StatusUnauthorized:
		return "Not authorized. Please log in again."
	case http.StatusForbidden:
		return "Access denied. You do not have permission for this action."
	case http.StatusNotFound:
		return "The requested resource does not exist."
	case http.StatusConflict:
		return "The request conflicts with the current state of the resource."
	case http.StatusInternalServerError:
		return "Internal server error. Please try again later."
	default:
		return "An unexpected error occurred."
	}
}

func resourceOf(path string) string {
	p := strings.TrimLeft(path, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "root"
	}
	return p
}
