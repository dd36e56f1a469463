package fetch

import (
	"encoding/json"
	"testing"

	"github.com/abdul-hamid-achik/pagefetch/packages/cookie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinLines(t *testing.T) {
	tests := []struct {
		name       string
		lines      []string
		lineBreaks bool
		want       string
	}{
		{
			name:  "mixed boundaries",
			lines: []string{"foo ", " bar", "baz"},
			want:  "foo bar baz",
		},
		{
			name:  "trailing space, no leading space",
			lines: []string{"a ", "b"},
			want:  "a b",
		},
		{
			name:  "trailing space, leading space is trimmed",
			lines: []string{"a ", "   b  "},
			want:  "a b",
		},
		{
			name:  "no trailing space, leading space kept",
			lines: []string{"a", " b "},
			want:  "a b ",
		},
		{
			name:  "neither gets a single separator",
			lines: []string{"a", "b"},
			want:  "a b",
		},
		{
			name:  "blank lines dropped",
			lines: []string{"a", "", "\t", "b"},
			want:  "a b",
		},
		{
			name:  "first line with leading space is trimmed",
			lines: []string{"  <html>", "</html>"},
			want:  "<html> </html>",
		},
		{
			name:       "line breaks follow every line",
			lines:      []string{"a", "b"},
			lineBreaks: true,
			want:       "a\n b\n",
		},
		{
			name:       "line breaks with blank line",
			lines:      []string{"a", "", "b"},
			lineBreaks: true,
			want:       "a\n\n b\n",
		},
		{
			name:  "no lines",
			lines: nil,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinLines(tt.lines, tt.lineBreaks))
		})
	}
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "complete", Complete.String())
	assert.Equal(t, "partial", Partial.String())
}

func TestPage_JSON(t *testing.T) {
	page := Page{
		Session: Session{
			ID:        "id-1",
			OriginURL: "http://a.test/",
			FinalURL:  "http://b.test/",
			Charset:   "utf-8",
			Cookies:   []cookie.Cookie{cookie.Parse("sid=1; Secure")},
			Hops:      []Hop{{URL: "http://a.test/", StatusCode: 301, Location: "http://b.test/"}},
		},
		Body:    "hello",
		Outcome: Partial,
	}

	data, err := json.Marshal(page)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "http://a.test/", decoded["originUrl"])
	assert.Equal(t, "http://b.test/", decoded["finalUrl"])
	assert.Equal(t, "partial", decoded["outcome"])
	assert.Equal(t, []any{"sid=1; Secure"}, decoded["cookies"])
}

func TestSession_Helpers(t *testing.T) {
	s := newSession("http://a.test/")
	assert.Equal(t, 0, s.Redirects())
	assert.Equal(t, s.OriginURL, s.FinalURL)
	assert.NotEmpty(t, s.ID)

	s.Hops = []Hop{{Duration: 2}, {Duration: 3}}
	assert.Equal(t, 1, s.Redirects())
	assert.EqualValues(t, 5, s.Duration())
}
