package cookie

import (
	"maps"
	"slices"
	"strings"
)

// Reserved attribute names, compared case-insensitively
const (
	AttrDomain  = "domain"
	AttrExpires = "expires"
	AttrPath    = "path"
	AttrMaxAge  = "max-age"
	AttrComment = "comment"
	AttrSecure  = "secure"
	AttrVersion = "version"
)

type attr struct {
	value string
	set   bool
}

func (a attr) get() (string, bool) {
	return a.value, a.set
}

// Cookie is one parsed Set-Cookie header value. It is immutable once parsed.
type Cookie struct {
	domain  attr
	expires attr
	path    attr
	maxAge  attr
	comment attr
	secure  attr
	version attr

	custom map[string]string
	order  []string
}

// Parse parses a raw Set-Cookie header value. Segments without '=' get an
// empty value; blank segments are skipped.
func Parse(raw string) Cookie {
	c := Cookie{custom: make(map[string]string)}

	for _, segment := range strings.Split(raw, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		key, value, _ := strings.Cut(segment, "=")

		switch strings.ToLower(key) {
		case AttrDomain:
			c.domain = attr{value, true}
		case AttrExpires:
			c.expires = attr{value, true}
		case AttrPath:
			c.path = attr{value, true}
		case AttrMaxAge:
			c.maxAge = attr{value, true}
		case AttrComment:
			c.comment = attr{value, true}
		case AttrSecure:
			c.secure = attr{value, true}
		case AttrVersion:
			c.version = attr{value, true}
		default:
			if _, exists := c.custom[key]; !exists {
				c.order = append(c.order, key)
			}
			c.custom[key] = value
		}
	}

	return c
}

func (c Cookie) Domain() (string, bool)  { return c.domain.get() }
func (c Cookie) Expires() (string, bool) { return c.expires.get() }
func (c Cookie) Path() (string, bool)    { return c.path.get() }
func (c Cookie) MaxAge() (string, bool)  { return c.maxAge.get() }
func (c Cookie) Comment() (string, bool) { return c.comment.get() }
func (c Cookie) Secure() (string, bool)  { return c.secure.get() }
func (c Cookie) Version() (string, bool) { return c.version.get() }

// Value returns the custom value stored under key (case-sensitive)
func (c Cookie) Value(key string) (string, bool) {
	v, ok := c.custom[key]
	return v, ok
}

// Custom returns a copy of the custom key/value mapping
func (c Cookie) Custom() map[string]string {
	return maps.Clone(c.custom)
}

// Keys returns the custom keys in the order they were first seen
func (c Cookie) Keys() []string {
	return slices.Clone(c.order)
}

// Len returns the number of custom entries
func (c Cookie) Len() int {
	return len(c.order)
}

// Equal reports whether both cookies carry the same attributes and the same
// custom mapping. Key order is not significant.
func (c Cookie) Equal(other Cookie) bool {
	return c.domain == other.domain &&
		c.expires == other.expires &&
		c.path == other.path &&
		c.maxAge == other.maxAge &&
		c.comment == other.comment &&
		c.secure == other.secure &&
		c.version == other.version &&
		maps.Equal(c.custom, other.custom)
}

// String renders the cookie back into Set-Cookie form, custom pairs first.
func (c Cookie) String() string {
	parts := make([]string, 0, len(c.order)+7)
	for _, k := range c.order {
		parts = append(parts, k+"="+c.custom[k])
	}

	named := []struct {
		name string
		a    attr
	}{
		{"Domain", c.domain},
		{"Expires", c.expires},
		{"Path", c.path},
		{"Max-Age", c.maxAge},
		{"Comment", c.comment},
		{"Secure", c.secure},
		{"Version", c.version},
	}
	for _, n := range named {
		if !n.a.set {
			continue
		}
		if n.a.value == "" {
			parts = append(parts, n.name)
		} else {
			parts = append(parts, n.name+"="+n.a.value)
		}
	}

	return strings.Join(parts, "; ")
}

// MarshalText encodes the cookie as its String form
func (c Cookie) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Header builds the value of an outgoing Cookie request header from the
// custom pairs of every cookie, in order. The first occurrence of a key wins.
// Keys are trimmed, and pairs with a blank key are left out.
func Header(cookies []Cookie) string {
	var b strings.Builder
	seen := make(map[string]struct{})

	for _, c := range cookies {
		for _, k := range c.order {
			name := strings.TrimSpace(k)
			if name == "" {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}

			if b.Len() > 0 {
				b.WriteString("; ")
			}
			b.WriteString(name)
			b.WriteByte('=')
			b.WriteString(c.custom[k])
		}
	}

	return b.String()
}
