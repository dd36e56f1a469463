package fetch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/abdul-hamid-achik/pagefetch/packages/cookie"
	"github.com/abdul-hamid-achik/pagefetch/packages/http"
)

const (
	// DefaultMaxRedirects bounds the number of Location headers followed
	DefaultMaxRedirects = 20

	statusOK = 200
)

// Fetcher reads pages through a hand-driven redirect loop
type Fetcher struct {
	client         *http.Client
	maxRedirects   int
	lineBreaks     bool
	defaultCharset string
	log            *slog.Logger
}

type Option func(*Fetcher)

func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		maxRedirects:   DefaultMaxRedirects,
		defaultCharset: DefaultCharset,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = http.NewClient()
	}
	if f.log == nil {
		f.log = slog.Default()
	}
	return f
}

// WithClient sets the hop client
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithMaxRedirects sets the redirect cap; values below 1 keep the default
func WithMaxRedirects(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxRedirects = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		f.log = l
	}
}

// WithLineBreaks makes Fetch keep a newline after every line by default
func WithLineBreaks(keep bool) Option {
	return func(f *Fetcher) {
		f.lineBreaks = keep
	}
}

// WithDefaultCharset replaces UTF-8 as the fallback body charset
func WithDefaultCharset(name string) Option {
	return func(f *Fetcher) {
		if name != "" {
			f.defaultCharset = name
		}
	}
}

// Stream is the decoded body of the last hop of a redirect chain
type Stream struct {
	Session Session

	body   io.ReadCloser
	reader *bufio.Reader
}

func (s *Stream) Read(p []byte) (int, error) {
	return s.reader.Read(p)
}

// ReadLine returns the next line without its "\n" or "\r\n" terminator.
// It returns io.EOF once the body is exhausted. On any other error the
// unterminated fragment read before the failure is returned with it.
func (s *Stream) ReadLine() (string, error) {
	line, err := s.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimSuffix(line, "\r"), nil
		}
		return strings.TrimSuffix(line, "\r"), err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

func (s *Stream) Close() error {
	return s.body.Close()
}

func checkURL(rawURL string) error {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return &URLError{URL: rawURL}
	}
	return nil
}

// Open follows the redirect chain starting at rawURL and returns a stream
// positioned at the start of the final body. The caller must close it.
func (f *Fetcher) Open(ctx context.Context, rawURL string) (*Stream, error) {
	if err := checkURL(rawURL); err != nil {
		return nil, err
	}

	session := newSession(rawURL)
	log := f.log.With("session", session.ID)

	var body io.ReadCloser
	closeBody := func() {
		if body != nil {
			_ = body.Close()
			body = nil
		}
	}

	target := rawURL
	for {
		req := http.NewGet(target).SetCookieHeader(cookie.Header(session.Cookies))

		log.DebugContext(ctx, "connecting", "url", target, "hop", len(session.Hops)+1)
		resp, err := f.client.Do(ctx, req)
		if err != nil {
			closeBody()
			return nil, &HopError{URL: target, Err: err}
		}

		for _, raw := range resp.SetCookies() {
			c := cookie.Parse(raw)
			log.DebugContext(ctx, "received cookie", "url", target, "cookie", c.String())
			session.Cookies = append(session.Cookies, c)
		}

		next := ""
		if location := resp.Location(); location != "" {
			next = resolveLocation(target, location)
			session.FinalURL = next
		}

		session.Hops = append(session.Hops, Hop{
			URL:        target,
			StatusCode: resp.StatusCode,
			Location:   next,
			Duration:   resp.Duration,
		})
		session.StatusCode = resp.StatusCode
		log.DebugContext(ctx, "response", "url", target, "status", resp.StatusCode, "location", next)

		closeBody()
		if resp.IsClientError() || resp.IsServerError() {
			_ = resp.Close()
			return nil, &StatusError{URL: target, StatusCode: resp.StatusCode}
		}

		contentType := resp.ContentType()
		reader, name := f.decoder(ctx, log, resp.Body, CharsetFromContentType(contentType))
		body = textStream{Reader: reader, Closer: resp.Body}
		session.ContentType = contentType
		session.Charset = name

		if resp.StatusCode == statusOK || next == "" {
			break
		}
		if session.Redirects() >= f.maxRedirects {
			closeBody()
			return nil, fmt.Errorf("%w: limit of %d reached, next was %s", ErrTooManyRedirects, f.maxRedirects, next)
		}
		target = next
	}

	if body == nil {
		return nil, ErrIO
	}

	return &Stream{
		Session: session,
		body:    body,
		reader:  bufio.NewReader(body),
	}, nil
}

// decoder picks the body charset, falling back to the default charset when
// the declared one is unknown
func (f *Fetcher) decoder(ctx context.Context, log *slog.Logger, r io.Reader, label string) (io.Reader, string) {
	if label != "" {
		reader, name, err := textReader(r, label)
		if err == nil {
			return reader, name
		}
		log.WarnContext(ctx, "unknown charset, using default", "charset", label, "default", f.defaultCharset)
	}

	reader, name, err := textReader(r, f.defaultCharset)
	if err != nil {
		reader, name, _ = textReader(r, DefaultCharset)
	}
	return reader, name
}

// resolveLocation resolves a possibly relative Location against the URL
// that produced it
func resolveLocation(base, location string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return location
	}
	ref, err := url.Parse(location)
	if err != nil {
		return location
	}
	return baseURL.ResolveReference(ref).String()
}
