package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/meridharani/dharani-api/pkg/apperr"
)

// Client talks to the vision collaborator over HTTP
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	timeout     time.Duration
	maxAttempts int
	backoff     time.Duration
}

// NewClient builds a collaborator client. timeout bounds each attempt,
// maxAttempts bounds the whole call (no call is retried indefinitely).
func NewClient(baseURL, apiKey string, timeout time.Duration, maxAttempts int, backoff time.Duration) *Client {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if backoff <= 0 {
		backoff = 2 * time.Second
	}

	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		httpClient:  &http.Client{},
		timeout:     timeout,
		maxAttempts: maxAttempts,
		backoff:     backoff,
	}
}

type classifyRequest struct {
	ImageURL string `json:"imageUrl"`
}

type compareRequest struct {
	BeforeURL string `json:"beforeUrl"`
	AfterURL  string `json:"afterUrl"`
}

// Classify asks the collaborator for a waste category and confidence
func (c *Client) Classify(ctx context.Context, imageURL string) (*Classification, error) {
	var result Classification
	if err := c.post(ctx, "/v1/classify", classifyRequest{ImageURL: imageURL}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CompareCleanup asks the collaborator to score the after photo against the
// original report photo.
func (c *Client) CompareCleanup(ctx context.Context, beforeURL, afterURL string) (*Comparison, error) {
	var result Comparison
	if err := c.post(ctx, "/v1/compare", compareRequest{BeforeURL: beforeURL, AfterURL: afterURL}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// post runs one collaborator call with exponential backoff. Transport
// failures, timeouts and 5xx responses are retried up to the attempt budget;
// a 4xx is treated as permanent.
func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	requestID := uuid.NewString()

	backoff := retry.WithMaxRetries(uint64(c.maxAttempts-1), retry.NewExponential(c.backoff))

	// Do unwraps RetryableError before returning, so remember whether the
	// final failure was one we were still retrying when the budget ran out.
	exhausted := false

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		exhausted = false
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Request-ID", requestID)
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			exhausted = true
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			io.Copy(io.Discard, resp.Body)
			exhausted = true
			return retry.RetryableError(fmt.Errorf("collaborator returned %d", resp.StatusCode))
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("collaborator rejected request: %d", resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	})
	if err != nil {
		if exhausted || isTimeoutErr(err) {
			return fmt.Errorf("%w: %s %s", apperr.ErrCollaboratorTimeout, path, requestID)
		}
		return err
	}

	return nil
}

func isTimeoutErr(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
