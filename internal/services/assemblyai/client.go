package assemblyai

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
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL        = "https://api.assemblyai.com"
	defaultPollInterval   = 3 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryAttempts  = 5
)

// Config captures the runtime settings required to talk to AssemblyAI.
type Config struct {
	APIKey         string
	BaseURL        string
	PollInterval   time.Duration
	RequestTimeout time.Duration
}

// Client wraps the AssemblyAI upload and transcript endpoints.
type Client struct {
	cfg        Config
	httpClient *http.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count (defaults to 5).
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry and poll sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a transcription client using the supplied configuration.
// A zero RequestTimeout leaves requests bounded only by the caller's context.
func NewClient(cfg Config, opts ...Option) *Client {
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			PollInterval:   cfg.PollInterval,
			RequestTimeout: cfg.RequestTimeout,
		},
		httpClient:       &http.Client{Timeout: cfg.RequestTimeout},
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.cfg.PollInterval <= 0 {
		client.cfg.PollInterval = defaultPollInterval
	}
	return client
}

type httpStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("assemblyai request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Transcribe uploads the file at path, submits a transcript job, and waits
// for it to finish.
func (c *Client) Transcribe(ctx context.Context, path string, opts Options) (Transcript, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return Transcript{}, errors.New("assemblyai transcribe: api key required")
	}
	uploadURL, err := c.Upload(ctx, path)
	if err != nil {
		return Transcript{}, err
	}
	job, err := c.Submit(ctx, uploadURL, opts)
	if err != nil {
		return Transcript{}, err
	}
	return c.Wait(ctx, job.ID)
}

// Upload streams the local file to AssemblyAI and returns the private upload URL.
func (c *Client) Upload(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("assemblyai upload: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("assemblyai upload: %s is not a regular file", path)
	}
	var resp uploadResponse
	err = c.doWithRetry(ctx, "assemblyai upload", func() (*http.Request, error) {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("v2", "upload"), file)
		if err != nil {
			_ = file.Close()
			return nil, err
		}
		req.ContentLength = info.Size()
		req.Header.Set("Content-Type", "application/octet-stream")
		return req, nil
	}, &resp)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.UploadURL) == "" {
		return "", errors.New("assemblyai upload: response missing upload_url")
	}
	return resp.UploadURL, nil
}

// Submit creates a transcript job for audioURL.
func (c *Client) Submit(ctx context.Context, audioURL string, opts Options) (Transcript, error) {
	encoded, err := json.Marshal(transcriptRequest{
		AudioURL:      audioURL,
		AutoChapters:  opts.AutoChapters,
		IABCategories: opts.IABCategories,
	})
	if err != nil {
		return Transcript{}, fmt.Errorf("assemblyai submit: encode body: %w", err)
	}
	var job Transcript
	err = c.doWithRetry(ctx, "assemblyai submit", func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("v2", "transcript"), bytes.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, &job)
	if err != nil {
		return Transcript{}, err
	}
	if strings.TrimSpace(job.ID) == "" {
		return Transcript{}, errors.New("assemblyai submit: response missing id")
	}
	return job, nil
}

// Get fetches the current state of a transcript job.
func (c *Client) Get(ctx context.Context, id string) (Transcript, error) {
	var job Transcript
	err := c.doWithRetry(ctx, "assemblyai get", func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("v2", "transcript", id), nil)
	}, &job)
	return job, err
}

// Wait polls the job until it completes or errors.
func (c *Client) Wait(ctx context.Context, id string) (Transcript, error) {
	for {
		job, err := c.Get(ctx, id)
		if err != nil {
			return Transcript{}, err
		}
		switch job.Status {
		case StatusCompleted, StatusError:
			return job, nil
		case StatusQueued, StatusProcessing, "":
		default:
			return job, fmt.Errorf("assemblyai wait: unexpected status %q", job.Status)
		}
		if err := c.sleep(ctx, c.cfg.PollInterval); err != nil {
			return Transcript{}, err
		}
	}
}

func (c *Client) endpoint(parts ...string) string {
	escaped := make([]string, 0, len(parts))
	for _, part := range parts {
		escaped = append(escaped, url.PathEscape(part))
	}
	return c.cfg.BaseURL + "/" + strings.Join(escaped, "/")
}

func (c *Client) doWithRetry(ctx context.Context, op string, build func() (*http.Request, error), out any) error {
	attempts := c.retryAttempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := c.doOnce(build, out)
		if err == nil {
			return nil
		}
		err = fmt.Errorf("%s: %w", op, err)
		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			return err
		}
		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("unknown retry failure")
	}
	return fmt.Errorf("%s: failed after %d attempts: %w", op, attempts, lastErr)
}

func (c *Client) doOnce(build func() (*http.Request, error), out any) error {
	req, err := build()
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", c.cfg.APIKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		detail := strings.TrimSpace(string(body))
		var parsed apiError
		if json.Unmarshal(body, &parsed) == nil && parsed.Error != "" {
			detail = parsed.Error
		}
		return &httpStatusError{StatusCode: resp.StatusCode, Body: detail, RetryAfter: retryAfter}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) retryAttempts() int {
	if c == nil || c.retryMaxAttempts <= 0 {
		return 1
	}
	return c.retryMaxAttempts
}

func (c *Client) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || err == nil || ctx == nil || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusRequestTimeout,
			statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode >= http.StatusInternalServerError:
			if statusErr.RetryAfter > 0 {
				return c.capDelay(statusErr.RetryAfter), true
			}
			return c.backoffDelay(attempt), true
		default:
			return 0, false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return c.backoffDelay(attempt), true
	}
	return 0, false
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	base := c.retryBaseDelay
	if base <= 0 {
		return 0
	}
	maxDelay := c.retryMaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}
	// attempt 1 -> base, attempt 2 -> base*2, attempt 3 -> base*4, ...
	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			delay = maxDelay
			break
		}
		delay *= 2
	}
	return c.capDelay(delay)
}

func (c *Client) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	maxDelay := defaultRetryMaxDelay
	if c.retryMaxDelay > 0 {
		maxDelay = c.retryMaxDelay
	}
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if delay <= 0 {
		return nil
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}
