// Package backend is the client for the remote classification, search,
// and generation service. Idempotent reads are retried with increasing
// backoff; writes, generation, and questions are sent exactly once.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nhle/mailmind/internal/model"
)

// Client is a thin HTTP+JSON client for the backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	log        *zap.Logger
}

// NewClient creates a backend client from configuration. A nil logger
// disables logging.
func NewClient(cfg model.BackendConfig, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.RetryBackoff,
		log:        log.Named("backend"),
	}
}

// request describes a single logical backend call.
type request struct {
	op          string
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	idempotent  bool
}

// jsonBody encodes body as JSON into r.
func (r *request) jsonBody(body interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return &Error{Kind: KindValidation, Op: r.op, Err: fmt.Errorf("marshaling request body: %w", err)}
	}
	r.body = data
	r.contentType = "application/json"
	return nil
}

// do executes r, retrying idempotent requests on transport errors, 429,
// and 5xx responses. It returns the raw response body of the final
// successful attempt.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	attempts := 1
	if r.idempotent {
		attempts += c.maxRetries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			wait := c.backoff * time.Duration(attempt+1)
			c.log.Warn("retrying request",
				zap.String("op", r.op),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", wait),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return nil, &Error{Kind: KindTransport, Op: r.op, Err: ctx.Err()}
			case <-time.After(wait):
			}
		}

		body, retry, err := c.attempt(ctx, r, u)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry {
			break
		}
	}

	c.log.Error("request failed", zap.String("op", r.op), zap.Error(lastErr))
	return nil, lastErr
}

// attempt performs one HTTP round trip. retry reports whether the
// failure is worth another attempt.
func (c *Client) attempt(ctx context.Context, r request, u string) (body []byte, retry bool, err error) {
	var bodyReader io.Reader
	if r.body != nil {
		bodyReader = bytes.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, bodyReader)
	if err != nil {
		return nil, false, &Error{Kind: KindValidation, Op: r.op, Err: fmt.Errorf("creating request: %w", err)}
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	c.log.Debug("sending request",
		zap.String("op", r.op),
		zap.String("method", r.method),
		zap.String("path", r.path),
		zap.String("request_id", requestID),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		retryable := ctx.Err() == nil
		return nil, retryable, &Error{Kind: KindTransport, Op: r.op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, &Error{Kind: KindTransport, Op: r.op, Err: fmt.Errorf("reading response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		retryable := resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode >= http.StatusInternalServerError
		return nil, retryable, &Error{
			Kind:   KindStatus,
			Op:     r.op,
			Status: resp.StatusCode,
			Err:    errors.New(statusDetail(respBody)),
		}
	}

	return respBody, false, nil
}

// statusDetail extracts FastAPI's {"detail": ...} message when present.
func statusDetail(body []byte) string {
	var detail struct {
		Detail interface{} `json:"detail"`
	}
	if json.Unmarshal(body, &detail) == nil && detail.Detail != nil {
		if s, ok := detail.Detail.(string); ok {
			return s
		}
		return fmt.Sprint(detail.Detail)
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "empty response"
	}
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	return text
}

// decode unmarshals body into result, classifying failures as malformed.
func decode(op string, body []byte, result interface{}) error {
	if err := json.Unmarshal(body, result); err != nil {
		return &Error{Kind: KindMalformed, Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
