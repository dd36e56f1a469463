package fetch

import (
	"time"

	"github.com/abdul-hamid-achik/pagefetch/packages/cookie"
	"github.com/google/uuid"
)

// Hop is one request/response exchange of a redirect chain
type Hop struct {
	URL        string        `json:"url"`
	StatusCode int           `json:"statusCode"`
	Location   string        `json:"location,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Session is the state of a single Open call. It is never shared between
// calls.
type Session struct {
	ID          string          `json:"id"`
	OriginURL   string          `json:"originUrl"`
	FinalURL    string          `json:"finalUrl"`
	StatusCode  int             `json:"statusCode"`
	ContentType string          `json:"contentType,omitempty"`
	Charset     string          `json:"charset"`
	Cookies     []cookie.Cookie `json:"cookies,omitempty"`
	Hops        []Hop           `json:"hops"`
}

func newSession(rawURL string) Session {
	return Session{
		ID:        uuid.NewString(),
		OriginURL: rawURL,
		FinalURL:  rawURL,
	}
}

// Redirects returns how many Location headers were followed
func (s Session) Redirects() int {
	if len(s.Hops) == 0 {
		return 0
	}
	return len(s.Hops) - 1
}

// CookieHeader returns the Cookie header the next hop would have sent
func (s Session) CookieHeader() string {
	return cookie.Header(s.Cookies)
}

// Duration sums the time spent on every hop
func (s Session) Duration() time.Duration {
	var total time.Duration
	for _, h := range s.Hops {
		total += h.Duration
	}
	return total
}
