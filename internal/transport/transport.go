// Package transport delivers analytics beacons over HTTP.
//
// Each beacon is a GET of the analytics endpoint with the beacon parameters as the query string.  The transport
// retries network failures and retryable status codes with exponential backoff, transparently decompresses
// responses and hands the trimmed response body back to the tracker.
package transport

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/PizzaHomicide/kava/internal/analytics"
	"github.com/PizzaHomicide/kava/internal/log"
	"github.com/PizzaHomicide/kava/internal/version"
)

var (
	ErrMaxRetries        = errors.New("max retries exceeded")
	ErrUnexpectedStatus  = errors.New("unexpected status code")
	ErrMissingBaseURL    = errors.New("beacon has no base url")
	errRetryableResponse = errors.New("retryable status code")
)

// Default configuration values.
const (
	DefaultTimeout           = 10 * time.Second
	DefaultRetryAttempts     = 2
	DefaultRetryDelay        = 500 * time.Millisecond
	DefaultRetryMaxDelay     = 5 * time.Second
	DefaultBackoffMultiplier = 2.0
	acceptEncoding           = "gzip, deflate, br"
	maxResponseBody          = 64 << 10
)

// Config holds the configuration for the transport.
type Config struct {
	// Timeout bounds a single attempt.
	Timeout time.Duration

	// RetryAttempts is the number of retries after the first attempt.
	RetryAttempts int

	// RetryDelay is the initial delay between retries.
	RetryDelay time.Duration

	// RetryMaxDelay is the maximum delay between retries.
	RetryMaxDelay time.Duration

	// BackoffMultiplier is the multiplier for exponential backoff.
	BackoffMultiplier float64

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string

	// BaseClient is the underlying http.Client to use.
	// If nil, a default client is created.
	BaseClient *http.Client
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:           DefaultTimeout,
		RetryAttempts:     DefaultRetryAttempts,
		RetryDelay:        DefaultRetryDelay,
		RetryMaxDelay:     DefaultRetryMaxDelay,
		BackoffMultiplier: DefaultBackoffMultiplier,
		UserAgent:         version.UserAgent(),
	}
}

// HTTPTransport implements analytics.Transport over HTTP GET requests.
type HTTPTransport struct {
	config Config
	client *http.Client
}

var _ analytics.Transport = (*HTTPTransport)(nil)

// New creates a transport.  Zero values in cfg fall back to the defaults, except RetryAttempts where zero means
// no retries.
func New(cfg Config) *HTTPTransport {
	defaults := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaults.RetryDelay
	}
	if cfg.RetryMaxDelay <= 0 {
		cfg.RetryMaxDelay = defaults.RetryMaxDelay
	}
	if cfg.BackoffMultiplier < 1 {
		cfg.BackoffMultiplier = defaults.BackoffMultiplier
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}

	client := cfg.BaseClient
	if client == nil {
		client = &http.Client{}
	}

	return &HTTPTransport{
		config: cfg,
		client: client,
	}
}

// Dispatch sends the beacon, retrying as configured, and returns the response body.
func (t *HTTPTransport) Dispatch(ctx context.Context, beacon analytics.Beacon) (analytics.Response, error) {
	if beacon.BaseURL == "" {
		return analytics.Response{}, ErrMissingBaseURL
	}
	target := BeaconURL(beacon)

	var lastErr error
	delay := t.config.RetryDelay

	for attempt := 0; attempt <= t.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			log.Debug("Retrying beacon", "event", beacon.Event.String(), "attempt", attempt, "delay", delay)

			select {
			case <-ctx.Done():
				return analytics.Response{}, ctx.Err()
			case <-time.After(delay):
			}

			delay = time.Duration(float64(delay) * t.config.BackoffMultiplier)
			if delay > t.config.RetryMaxDelay {
				delay = t.config.RetryMaxDelay
			}
		}

		body, err := t.attempt(ctx, target)
		if err == nil {
			return analytics.Response{Body: body}, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return analytics.Response{}, ctx.Err()
		}
		if errors.Is(err, ErrUnexpectedStatus) {
			return analytics.Response{}, err
		}
		log.Debug("Beacon attempt failed", "event", beacon.Event.String(), "url", obfuscateURL(target),
			"attempt", attempt, "error", err)
	}

	return analytics.Response{}, fmt.Errorf("%w: %v", ErrMaxRetries, lastErr)
}

func (t *HTTPTransport) attempt(ctx context.Context, target string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", t.config.UserAgent)
	req.Header.Set("Accept-Encoding", acceptEncoding)

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	log.Trace("Beacon response", "status", resp.StatusCode, "duration", time.Since(start))

	if isRetryableStatus(resp.StatusCode) {
		return "", fmt.Errorf("%w: %d", errRetryableResponse, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	reader, err := decompress(resp)
	if err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	defer reader.Close()
	data, err := io.ReadAll(io.LimitReader(reader, maxResponseBody))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	return trimBody(string(data)), nil
}

// BeaconURL renders the full request URL of a beacon
func BeaconURL(beacon analytics.Beacon) string {
	sep := "?"
	if strings.Contains(beacon.BaseURL, "?") {
		sep = "&"
	}
	return beacon.BaseURL + sep + beacon.Params.Encode()
}

// decompress wraps the response body according to its Content-Encoding.  Closing the result releases the decoder
// only; the response body stays with the caller.
func decompress(resp *http.Response) (io.ReadCloser, error) {
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		return gzip.NewReader(resp.Body)
	case "deflate":
		return flate.NewReader(resp.Body), nil
	case "br":
		return io.NopCloser(brotli.NewReader(resp.Body)), nil
	default:
		return io.NopCloser(resp.Body), nil
	}
}

// trimBody strips whitespace and the quotes a JSON string response comes wrapped in
func trimBody(body string) string {
	body = strings.TrimSpace(body)
	if len(body) >= 2 && body[0] == '"' && body[len(body)-1] == '"' {
		body = body[1 : len(body)-1]
	}
	return body
}

// isRetryableStatus returns true if the HTTP status code is retryable.
func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// obfuscateURL returns the URL with the access signature masked, for logging
func obfuscateURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	query := u.Query()
	if query.Has("ks") {
		query.Set("ks", "***")
	}
	u.RawQuery = query.Encode()
	return u.String()
}
