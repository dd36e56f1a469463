package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/tidwall/gjson"
)

// JSONPath returns the value at path in a JSON body. An empty path returns
// the whole document. Objects and arrays come back as raw JSON.
func JSONPath(body, path string) (string, bool) {
	if !gjson.Valid(body) {
		return "", false
	}
	if path == "" {
		return strings.TrimSpace(body), true
	}

	result := gjson.Get(body, path)
	if !result.Exists() {
		return "", false
	}
	if result.IsObject() || result.IsArray() {
		return result.Raw, true
	}
	return result.String(), true
}

// Selector returns the trimmed text of every element of an HTML body that
// matches the CSS selector css
func Selector(body, css string) ([]string, error) {
	matcher, err := cascadia.Compile(css)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", css, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return doc.FindMatcher(matcher).Map(func(_ int, s *goquery.Selection) string {
		return strings.TrimSpace(s.Text())
	}), nil
}
