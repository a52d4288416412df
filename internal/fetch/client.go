// Package fetch performs the bounded outbound GET requests used for ownership
// checks, remote certificate templates and remote render settings.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// DefaultMaxBodySize caps how much of a response body is read into memory.
const DefaultMaxBodySize = 10 << 20

var (
	ErrInvalidURL       = errors.New("invalid url")
	ErrTimeout          = errors.New("request timed out")
	ErrUnreachable      = errors.New("host unreachable")
	ErrUnexpectedStatus = errors.New("unexpected status code")
	ErrBodyTooLarge     = errors.New("response body too large")
)

// Response is a fully read HTTP response.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Client issues single GET requests bounded by a timeout.
type Client struct {
	http        *http.Client
	timeout     time.Duration
	maxBodySize int64
	logger      *zap.Logger
}

// NewClient creates a fetch client. Every request is cancelled after timeout.
func NewClient(timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:        &http.Client{},
		timeout:     timeout,
		maxBodySize: DefaultMaxBodySize,
		logger:      logger,
	}
}

// ValidateURL checks that raw is an absolute http(s) URL.
func ValidateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme %q is not http or https", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return u, nil
}

// Get fetches raw and returns the response regardless of its status code.
// Network failures are reported as ErrTimeout or ErrUnreachable.
func (c *Client) Get(ctx context.Context, raw string) (*Response, error) {
	u, err := ValidateURL(raw)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("Outbound request failed", zap.String("url", raw), zap.Error(err))
		return nil, classify(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, classify(err)
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, fmt.Errorf("%w: more than %d bytes from %s", ErrBodyTooLarge, c.maxBodySize, raw)
	}

	c.logger.Debug("Outbound request completed",
		zap.String("url", raw),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// GetOK is Get that additionally requires a 2xx status.
func (c *Client) GetOK(ctx context.Context, raw string) (*Response, error) {
	resp, err := c.Get(ctx, raw)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, raw)
	}
	return resp, nil
}

// IsFetchError reports whether err came from an outbound request.
func IsFetchError(err error) bool {
	return errors.Is(err, ErrInvalidURL) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrUnreachable) ||
		errors.Is(err, ErrUnexpectedStatus) ||
		errors.Is(err, ErrBodyTooLarge)
}

func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrUnreachable, err)
}
