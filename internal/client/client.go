// Package client fetches analytics payloads from the analytics backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/repolens/internal/model"
	"github.com/verte-zerg/repolens/internal/query"
)

const (
	// DefaultBaseURL is used when no backend is configured.
	DefaultBaseURL = "http://localhost:8080/api"
	// DefaultTimeout bounds a single fetch.
	DefaultTimeout   = 30 * time.Second
	defaultUserAgent = "repolens"
	maxBodyBytes     = 16 << 20
	requestIDHeader  = "X-Request-ID"
)

// Options configure a Client. Zero values use the defaults.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
	Logger     *slog.Logger
	Now        func() time.Time
}

// Client issues one GET per query and maps the outcome to model errors.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// New returns a Client for opts.
func New(opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: httpClient,
		logger:     logger,
		now:        now,
	}
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Endpoint returns the URL fetched for ref.
func (c *Client) Endpoint(ref query.Ref) (string, error) {
	switch ref.Kind() {
	case model.KindAccount:
		return fmt.Sprintf("%s/analytics/account/%s", c.baseURL, url.PathEscape(ref.Name())), nil
	case model.KindProject:
		return fmt.Sprintf("%s/analytics/project/%s/%s", c.baseURL, url.PathEscape(ref.Owner()), url.PathEscape(ref.Name())), nil
	default:
		return "", fmt.Errorf("query is not resolved")
	}
}

// Fetch retrieves the payload for ref. Backend and transport failures are
// *model.Error values; cancellation of ctx is returned as ctx.Err().
func (c *Client) Fetch(ctx context.Context, ref query.Ref) (model.Record, error) {
	endpoint, err := c.Endpoint(ref)
	if err != nil {
		return model.Record{}, err
	}
	requestID := uuid.NewString()
	logger := c.logger.With(
		slog.String("request_id", requestID),
		slog.String("kind", ref.Kind().String()),
		slog.String("identifier", ref.Identifier()),
	)
	start := c.now()

	data, status, err := c.get(ctx, endpoint, requestID, ref)
	elapsed := c.now().Sub(start)
	if err != nil {
		logger.Warn("fetch failed", slog.String("error_code", model.CodeName(err)), slog.Int("status", status), slog.Duration("duration", elapsed))
		return model.Record{}, err
	}
	logger.Info("fetch succeeded", slog.Int("status", status), slog.Int("bytes", len(data)), slog.Duration("duration", elapsed))
	return model.Record{
		Kind:       ref.Kind(),
		Identifier: ref.Identifier(),
		Data:       data,
		FetchedAt:  c.now(),
	}, nil
}

func (c *Client) get(ctx context.Context, endpoint, requestID string, ref query.Ref) (json.RawMessage, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, 0, ctxErr
		}
		return nil, 0, model.NetworkUnavailable(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, resp.StatusCode, ctxErr
		}
		return nil, resp.StatusCode, model.NetworkUnavailable(err)
	}

	if err := statusError(resp.StatusCode, ref); err != nil {
		return nil, resp.StatusCode, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, resp.StatusCode, model.InvalidEnvelope("")
	}
	if env.Success == nil || !*env.Success || isNull(env.Data) {
		return nil, resp.StatusCode, model.InvalidEnvelope(env.Message)
	}
	return env.Data, resp.StatusCode, nil
}

func statusError(status int, ref query.Ref) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return model.NotFound(ref.Kind(), ref.Identifier())
	case status == http.StatusForbidden:
		return model.RateLimited()
	case status >= 500:
		return model.ServerError(status)
	default:
		return model.UnexpectedStatus(status)
	}
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// IsCanceled reports whether err is the caller's context error rather than a fetch failure.
func IsCanceled(err error) bool {
	if _, ok := model.AsError(err); ok {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
