// Package cookie parses Set-Cookie header values for pagefetch.
//
// It provides functionality for:
//   - Splitting a raw Set-Cookie value into its ';'-delimited segments
//   - Classifying the Netscape / RFC 2109 attributes (domain, expires, path,
//     max-age, comment, secure, version)
//   - Collecting every other key into an ordered custom mapping
//   - Building the outgoing Cookie request header from accumulated cookies
//
// Values are kept as raw strings. Expiry dates and max-age are never
// interpreted, and parsing never fails.
package cookie
