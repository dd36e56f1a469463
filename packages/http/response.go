package http

import (
	"io"
	"net/http"
	"time"
)

type Response struct {
	StatusCode int
	Status     string
	URL        string
	Headers    http.Header
	Body       io.ReadCloser
	Duration   time.Duration
}

func (r *Response) Header(key string) string {
	return r.Headers.Get(key)
}

// Values returns every value of a header, in the order received
func (r *Response) Values(key string) []string {
	return r.Headers.Values(key)
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

func (r *Response) Location() string {
	return r.Header("Location")
}

// SetCookies returns the non-empty Set-Cookie values
func (r *Response) SetCookies() []string {
	values := r.Values("Set-Cookie")
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			result = append(result, v)
		}
	}
	return result
}

// Close releases the body. It is safe to call more than once.
func (r *Response) Close() error {
	if r.Body == nil {
		return nil
	}
	err := r.Body.Close()
	r.Body = nil
	return err
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500
}

func (r *Response) DurationMs() int64 {
	return r.Duration.Milliseconds()
}
