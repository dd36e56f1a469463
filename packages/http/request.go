package http

import (
	"net/http"
)

type Request struct {
	Method  string
	URL     string
	Headers map[string]string
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method:  method,
		URL:     requestURL,
		Headers: make(map[string]string),
	}
}

// NewGet is shorthand for NewRequest(http.MethodGet, url)
func NewGet(requestURL string) *Request {
	return NewRequest(http.MethodGet, requestURL)
}

func (r *Request) SetHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

// SetCookieHeader sets the Cookie header unless value is empty
func (r *Request) SetCookieHeader(value string) *Request {
	if value != "" {
		r.Headers["Cookie"] = value
	}
	return r
}
