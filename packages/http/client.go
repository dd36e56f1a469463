package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

const (
	// DefaultTimeout bounds how long a hop waits for response headers
	DefaultTimeout = 30 * time.Second
	// DefaultMaxBodySize caps how many bytes of a response body are read
	DefaultMaxBodySize int64 = 64 << 20
	// DefaultUserAgent is sent when no User-Agent header is configured
	DefaultUserAgent = "pagefetch/1.0"
	// DefaultDialTimeout bounds connection establishment
	DefaultDialTimeout = 30 * time.Second
	// DefaultTLSHandshakeTimeout bounds the TLS handshake
	DefaultTLSHandshakeTimeout = 10 * time.Second

	acceptEncoding = "gzip, deflate, br"
)

var (
	// ErrBodyTooLarge is returned by a body read once the body has grown past
	// the configured maximum size
	ErrBodyTooLarge = errors.New("response body exceeds size limit")
	// ErrHeaderTimeout means no response headers arrived within the timeout
	ErrHeaderTimeout = errors.New("timed out waiting for response headers")
)

// Client performs single HTTP hops. It never follows redirects and never
// reuses connections; the caller decides what to do with a Location header.
type Client struct {
	httpClient     *http.Client
	timeout        time.Duration
	maxBodySize    int64
	proxyURL       string
	transport      http.RoundTripper
	defaultHeaders map[string]string
}

type ClientOption func(*Client)

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout:     DefaultTimeout,
		maxBodySize: DefaultMaxBodySize,
		defaultHeaders: map[string]string{
			"User-Agent": DefaultUserAgent,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	transport := c.transport
	if transport == nil {
		t := &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: DefaultDialTimeout,
			}).DialContext,
			DisableKeepAlives:   true,
			DisableCompression:  true,
			TLSHandshakeTimeout: DefaultTLSHandshakeTimeout,
		}

		// Configure proxy if specified
		if c.proxyURL != "" {
			proxyURL, err := neturl.Parse(c.proxyURL)
			if err == nil {
				t.Proxy = http.ProxyURL(proxyURL)
			}
		}
		transport = t
	}

	c.httpClient = &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return c
}

// WithTimeout bounds the time from sending a request to receiving its
// response headers. Reading the body is not covered, so a slow page can be
// streamed for as long as the caller's context allows. Zero disables it.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithDefaultHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.defaultHeaders[key] = value
	}
}

// WithDefaultHeaders sets multiple default headers for all requests
func WithDefaultHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range headers {
			c.defaultHeaders[k] = v
		}
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.defaultHeaders["User-Agent"] = ua
		}
	}
}

// WithProxy sets the proxy URL for all requests
func WithProxy(proxyURL string) ClientOption {
	return func(c *Client) {
		c.proxyURL = proxyURL
	}
}

// WithMaxBodySize limits the number of body bytes handed to the caller
func WithMaxBodySize(n int64) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}

// WithTransport replaces the underlying round tripper. Proxy settings are
// ignored when a transport is supplied.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.transport = rt
	}
}

// Do sends a single request. The returned Response owns an open body that
// the caller must close.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if err := ValidateURL(req.URL); err != nil {
		return nil, err
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	reqCtx, cancel := context.WithCancel(ctx)
	httpReq, err := http.NewRequestWithContext(reqCtx, method, req.URL, nil)
	if err != nil {
		cancel()
		return nil, err
	}

	for k, v := range c.defaultHeaders {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set("Accept-Encoding", acceptEncoding)

	var timer *time.Timer
	if c.timeout > 0 {
		timer = time.AfterFunc(c.timeout, cancel)
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	duration := time.Since(start)
	if timer != nil && !timer.Stop() {
		if err == nil {
			httpResp.Body.Close()
		}
		cancel()
		return nil, fmt.Errorf("%w after %s: %w", ErrHeaderTimeout, c.timeout, context.DeadlineExceeded)
	}
	if err != nil {
		cancel()
		return nil, err
	}

	body, err := decodeBody(httpResp.Header.Get("Content-Encoding"), httpResp.Body, c.maxBodySize)
	if err != nil {
		httpResp.Body.Close()
		cancel()
		return nil, err
	}
	// the request context lives until the caller closes the body
	body.closers = append([]io.Closer{closerFunc(cancel)}, body.closers...)

	return &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		URL:        req.URL,
		Headers:    httpResp.Header,
		Body:       body,
		Duration:   duration,
	}, nil
}

// Get issues a single GET hop
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  http.MethodGet,
		URL:     url,
		Headers: headers,
	})
}

// bodyReader pairs a decoding reader with everything that must be closed
// once the caller is done with it.
type bodyReader struct {
	io.Reader
	closers []io.Closer
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}

func (b *bodyReader) Close() error {
	var first error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// decodeBody undoes Content-Encoding in the order the encodings were applied
func decodeBody(encoding string, raw io.ReadCloser, limit int64) (*bodyReader, error) {
	br := &bodyReader{Reader: raw, closers: []io.Closer{raw}}

	if encoding != "" {
		codings := strings.Split(encoding, ",")
		for i := len(codings) - 1; i >= 0; i-- {
			switch strings.ToLower(strings.TrimSpace(codings[i])) {
			case "", "identity":
			case "gzip", "x-gzip":
				zr, err := gzip.NewReader(br.Reader)
				if err != nil {
					return nil, fmt.Errorf("failed to open gzip body: %w", err)
				}
				br.Reader = zr
				br.closers = append(br.closers, zr)
			case "deflate":
				zr, err := zlib.NewReader(br.Reader)
				if err != nil {
					return nil, fmt.Errorf("failed to open deflate body: %w", err)
				}
				br.Reader = zr
				br.closers = append(br.closers, zr)
			case "br":
				br.Reader = brotli.NewReader(br.Reader)
			default:
				return nil, fmt.Errorf("unsupported content encoding: %s", codings[i])
			}
		}
	}

	if limit > 0 {
		br.Reader = &limitedReader{r: br.Reader, n: limit}
	}
	return br, nil
}

// limitedReader passes through at most n bytes and then fails with
// ErrBodyTooLarge if the underlying reader still has data.
type limitedReader struct {
	r io.Reader
	n int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if int64(len(p)) > l.n+1 {
		p = p[:l.n+1]
	}
	n, err := l.r.Read(p)
	if int64(n) > l.n {
		n = int(l.n)
		l.n = 0
		return n, ErrBodyTooLarge
	}
	l.n -= int64(n)
	return n, err
}

// ValidateURL checks that a URL is well-formed and uses an allowed scheme
func ValidateURL(rawURL string) error {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}

	// Check for valid scheme
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %s (only http and https are allowed)", u.Scheme)
	}

	// Check for valid host
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}

	return nil
}
