package fetch

import (
	"context"
	"errors"
	"io"
	"strings"
)

// Outcome tells a complete page apart from one cut short by a read error
type Outcome int

const (
	Complete Outcome = iota
	Partial
)

func (o Outcome) String() string {
	if o == Partial {
		return "partial"
	}
	return "complete"
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Page is the result of Fetch
type Page struct {
	Session
	Body    string  `json:"body"`
	Outcome Outcome `json:"outcome"`
}

type fetchConfig struct {
	lineBreaks bool
}

type FetchOption func(*fetchConfig)

// IncludeLineBreaks overrides the Fetcher's line-break setting for one call
func IncludeLineBreaks(keep bool) FetchOption {
	return func(c *fetchConfig) {
		c.lineBreaks = keep
	}
}

// Fetch opens rawURL and joins the body lines into a single string.
//
// Errors from Open are returned as is with a nil page. A failure while
// reading lines is logged and returned as a *ReadError together with a
// Partial page holding what was read so far.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, opts ...FetchOption) (*Page, error) {
	cfg := fetchConfig{lineBreaks: f.lineBreaks}
	for _, opt := range opts {
		opt(&cfg)
	}

	stream, err := f.Open(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	joiner := &lineJoiner{lineBreaks: cfg.lineBreaks}
	for {
		line, err := stream.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if line != "" {
				joiner.Add(line)
			}
			f.log.WarnContext(ctx, "could not read page", "url", rawURL, "error", err)
			return &Page{
				Session: stream.Session,
				Body:    joiner.String(),
				Outcome: Partial,
			}, &ReadError{URL: rawURL, Err: err}
		}
		joiner.Add(line)
	}

	return &Page{
		Session: stream.Session,
		Body:    joiner.String(),
		Outcome: Complete,
	}, nil
}

// JoinLines applies the Fetch whitespace policy to a list of lines.
//
// Before each line the buffer either ends with a space or it does not (an
// empty buffer counts as ending with one). Then:
//   - ends with space, line has no leading space: append the line
//   - ends with space, line has a leading space: append the trimmed line
//   - no trailing space, line has a leading space: append the line
//   - otherwise a non-blank line is appended after a single space
//
// With lineBreaks a "\n" follows every line.
func JoinLines(lines []string, lineBreaks bool) string {
	j := &lineJoiner{lineBreaks: lineBreaks}
	for _, line := range lines {
		j.Add(line)
	}
	return j.String()
}

type lineJoiner struct {
	b          strings.Builder
	lineBreaks bool
}

func (j *lineJoiner) endsWithSpace() bool {
	s := j.b.String()
	return s == "" || s[len(s)-1] == ' '
}

func (j *lineJoiner) Add(line string) {
	trailing := j.endsWithSpace()
	leading := strings.HasPrefix(line, " ")

	switch {
	case trailing && !leading:
		j.b.WriteString(line)
	case trailing && leading:
		j.b.WriteString(strings.TrimSpace(line))
	case leading:
		j.b.WriteString(line)
	case strings.TrimSpace(line) != "":
		j.b.WriteByte(' ')
		j.b.WriteString(line)
	}

	if j.lineBreaks {
		j.b.WriteByte('\n')
	}
}

func (j *lineJoiner) String() string {
	return j.b.String()
}
