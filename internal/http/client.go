package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// DefaultTimeout bounds connection setup, the wait for response headers and
// every pause between two body reads.
const DefaultTimeout = 60 * time.Second

// ErrStalled is returned when a request makes no progress for the client's
// timeout. A transfer that keeps delivering bytes never stalls, however long
// it takes.
var ErrStalled = errors.New("transfer stalled")

// Doer is the transport capability the Client is built on.
// *http.Client satisfies it; tests may substitute their own.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client wraps HTTP operations with installer-specific configuration.
//
// Client provides:
//   - Configured User-Agent header
//   - Idle timeout handling: a request fails only when it stops making progress
//   - Status classification via StatusError
//   - Streaming downloads and HEAD size probes
//
// Example usage:
//
//	client := NewClient(WithTimeout(30 * time.Second))
//
//	// Fetch and decode a JSON feed
//	var versions []dto.GameVersion
//	err := client.GetJSON(ctx, "https://meta.quiltmc.org/v3/versions/game", &versions)
//
//	// Stream a file body
//	body, size, err := client.Open(ctx, jarURL)
//	defer body.Close()
type Client struct {
	doer      Doer
	userAgent string
	timeout   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithDoer replaces the underlying transport.
func WithDoer(d Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.doer = d
		}
	}
}

// WithTimeout sets the idle timeout. Non-positive values keep
// DefaultTimeout, so every request has a deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient creates a new HTTP client.
//
// The client is configured with:
//   - 60 second idle timeout, also applied to dialing, TLS handshakes and
//     response headers
//   - "quilt-installer" User-Agent header
func NewClient(opts ...Option) *Client {
	c := &Client{
		userAgent: "quilt-installer",
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.doer == nil {
		c.doer = &http.Client{Transport: newTransport(c.timeout)}
	}
	return c
}

func newTransport(timeout time.Duration) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.DialContext = (&net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	t.TLSHandshakeTimeout = timeout
	t.ResponseHeaderTimeout = timeout
	return t
}

// StatusError is returned for any non-200 response.
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d: %s", e.URL, e.Code, e.Status)
}

// Transient reports whether retrying the request may succeed:
// server errors, 408 Request Timeout and 429 Too Many Requests.
func (e *StatusError) Transient() bool {
	return e.Code >= 500 || e.Code == http.StatusRequestTimeout || e.Code == http.StatusTooManyRequests
}

// IsNotFound reports whether err is a 404 or 410 StatusError.
func IsNotFound(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == http.StatusNotFound || se.Code == http.StatusGone
}

// IsTransient reports whether err is worth retrying.
//
// Stalls, transport failures (connection reset, DNS, timeouts) and transient
// status codes are retryable. Cancellation of the caller's context is not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrStalled) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Transient()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF)
}

// DecodeError is returned by GetJSON when the body arrived but is not the
// expected JSON document.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Get performs a GET request and returns the response body as bytes.
//
// Returns an error if:
//   - The request fails
//   - The response status is not 200 OK (a *StatusError)
//   - Reading the body fails or stalls
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	body, _, err := c.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return io.ReadAll(body)
}

// GetJSON performs a GET request and decodes the JSON body into v.
// Decoding failures come back as *DecodeError.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	body, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &DecodeError{URL: url, Err: err}
	}
	return nil
}

// GetFileSize returns the size of a file at the given URL via HEAD request.
//
// This is useful for checking whether a local file matches the remote one
// when no checksum is published.
func (c *Client) GetFileSize(ctx context.Context, url string) (int64, error) {
	resp, w, err := c.start(ctx, http.MethodHead, url)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	w.stop()

	if resp.ContentLength < 0 {
		return 0, fmt.Errorf("no Content-Length header for %s", url)
	}
	return resp.ContentLength, nil
}

// Open starts a GET request and returns the body for streaming along with
// the advertised content length (-1 when unknown). The caller must close
// the body.
//
// The timeout applies to each wait for data, not to the whole transfer: a
// body that keeps arriving is read to the end, one that goes quiet for the
// timeout fails with ErrStalled.
func (c *Client) Open(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	resp, w, err := c.start(ctx, http.MethodGet, url)
	if err != nil {
		return nil, 0, err
	}
	return &idleBody{ReadCloser: resp.Body, watchdog: w}, resp.ContentLength, nil
}

func (c *Client) start(ctx context.Context, method, url string) (*http.Response, *watchdog, error) {
	ctx, w := newWatchdog(ctx, c.timeout)

	resp, err := c.do(ctx, method, url)
	if err != nil {
		err = w.explain(err)
		w.stop()
		return nil, nil, err
	}
	return resp, w, nil
}

func (c *Client) do(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &StatusError{URL: url, Code: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}
	return resp, nil
}

// watchdog cancels a request once it has gone timeout without progress.
type watchdog struct {
	ctx     context.Context
	cancel  context.CancelCauseFunc
	timer   *time.Timer
	timeout time.Duration
}

func newWatchdog(parent context.Context, timeout time.Duration) (context.Context, *watchdog) {
	ctx, cancel := context.WithCancelCause(parent)
	w := &watchdog{ctx: ctx, cancel: cancel, timeout: timeout}
	w.timer = time.AfterFunc(timeout, func() { cancel(ErrStalled) })
	return ctx, w
}

// kick pushes the deadline back by a full timeout.
func (w *watchdog) kick() {
	w.timer.Reset(w.timeout)
}

func (w *watchdog) stop() {
	w.timer.Stop()
	w.cancel(nil)
}

// explain reports a request torn down by the watchdog as ErrStalled rather
// than as a cancellation, which callers would not retry.
func (w *watchdog) explain(err error) error {
	if err != nil && errors.Is(context.Cause(w.ctx), ErrStalled) {
		return fmt.Errorf("%w: no data for %s: %v", ErrStalled, w.timeout, err)
	}
	return err
}

// idleBody feeds the watchdog on every read that makes progress and stops
// it once the body is closed.
type idleBody struct {
	io.ReadCloser
	watchdog *watchdog
}

func (b *idleBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if n > 0 {
		b.watchdog.kick()
	}
	if err != nil && err != io.EOF {
		err = b.watchdog.explain(err)
	}
	return n, err
}

func (b *idleBody) Close() error {
	err := b.ReadCloser.Close()
	b.watchdog.stop()
	return err
}
