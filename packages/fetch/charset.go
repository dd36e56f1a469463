package fetch

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultCharset is used when Content-Type names no charset
const DefaultCharset = "UTF-8"

// CharsetFromContentType returns the value of the first ';'-segment of a
// Content-Type header that contains "charset=", or "" when there is none.
func CharsetFromContentType(contentType string) string {
	for _, segment := range strings.Split(contentType, ";") {
		idx := strings.Index(strings.ToLower(segment), "charset=")
		if idx < 0 {
			continue
		}
		value := strings.TrimSpace(segment[idx+len("charset="):])
		return strings.Trim(value, `"'`)
	}
	return ""
}

// textReader decodes r from the named charset into UTF-8. The canonical
// encoding name is returned alongside.
func textReader(r io.Reader, label string) (io.Reader, string, error) {
	enc, name := charset.Lookup(label)
	if enc == nil {
		return nil, "", fmt.Errorf("unsupported charset: %s", label)
	}
	if name == "utf-8" {
		// Replaces invalid sequences with U+FFFD instead of passing them on
		return transform.NewReader(r, unicode.UTF8.NewDecoder()), name, nil
	}
	return transform.NewReader(r, enc.NewDecoder()), name, nil
}

type textStream struct {
	io.Reader
	io.Closer
}
