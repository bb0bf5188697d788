package prover

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultTimeout bounds a single proving request.
	DefaultTimeout = 120 * time.Second
	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the delay before the first retry.
	DefaultRetryDelay = time.Second

	provePath  = "/v1/prove"
	healthPath = "/v1/health"

	maxErrorBody = 64 << 10
)

// Config configures a Client.
type Config struct {
	// BaseURL is the proving service root, for example https://prover.example.
	BaseURL string
	// APIKey is sent as a bearer token when set.
	APIKey string
	// HTTPClient defaults to a client with DefaultTimeout.
	HTTPClient *http.Client
	// Retry defaults to DefaultRetryConfig.
	Retry *RetryConfig
	// Logger defaults to a discarding logger.
	Logger logrus.FieldLogger
}

// Client talks to a remote proving service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retry      *RetryConfig
	log        logrus.FieldLogger
}

// Response is the proving service's answer.
type Response struct {
	// Proof is the serialized proof as returned by the service.
	Proof json.RawMessage `json:"proof"`
	// PublicSignals are the circuit's public outputs as decimal or 0x strings.
	PublicSignals []string `json:"publicSignals"`
	// RequestID identifies the job on the service side.
	RequestID string `json:"requestId,omitempty"`
}

// NewClient creates a proving service client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("prover base URL is required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: cfg.HTTPClient,
		retry:      cfg.Retry,
		log:        cfg.Logger,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if c.retry == nil {
		c.retry = DefaultRetryConfig()
	}
	if c.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.log = l
	}

	return c, nil
}

// Prove submits a witness document and returns the proof.
func (c *Client) Prove(ctx context.Context, witness any) (*Response, error) {
	var result Response
	if err := c.do(ctx, http.MethodPost, provePath, witness, &result); err != nil {
		return nil, err
	}
	if len(result.Proof) == 0 {
		return nil, fmt.Errorf("prover returned no proof")
	}
	return &result, nil
}

// Health checks that the proving service is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, healthPath, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, result any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = data
	}

	url := c.baseURL + path
	log := c.log.WithFields(logrus.Fields{"method": method, "path": path})

	for attempt := 0; ; attempt++ {
		resp, err := c.send(ctx, method, url, payload)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !c.retry.ShouldRetry(attempt, 0) {
				return &NetworkError{Err: err, URL: url, Attempt: attempt + 1}
			}
			log.WithError(err).WithField("attempt", attempt+1).Debug("prover request failed, retrying")
			if err := c.retry.Wait(ctx, c.retry.Delay(attempt)); err != nil {
				return err
			}
			continue
		}

		if resp.StatusCode >= 400 && c.retry.ShouldRetry(attempt, resp.StatusCode) {
			delay, ok := c.retry.retryAfter(resp)
			if !ok {
				delay = c.retry.Delay(attempt)
			}
			drain(resp)
			log.WithFields(logrus.Fields{"status": resp.StatusCode, "attempt": attempt + 1, "delay": delay}).
				Debug("prover returned retryable status")
			if err := c.retry.Wait(ctx, delay); err != nil {
				return err
			}
			continue
		}

		return c.handle(resp, result)
	}
}

func (c *Client) send(ctx context.Context, method, url string, payload []byte) (*http.Response, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

func (c *Client) handle(resp *http.Response, result any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return parseErrorResponse(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func parseErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var errResp struct {
		Error     string `json:"error"`
		Message   string `json:"message"`
		RequestID string `json:"requestId"`
	}

	if err := json.Unmarshal(body, &errResp); err == nil && (errResp.Error != "" || errResp.Message != "") {
		msg := errResp.Error
		if msg == "" {
			msg = errResp.Message
		}
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    msg,
			RequestID:  errResp.RequestID,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(body)),
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
}
