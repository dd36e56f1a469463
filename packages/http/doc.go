// Package http provides the single-hop HTTP client used by pagefetch.
//
// It wraps the standard library's http package with additional features:
//   - Configurable timeouts, proxy and default headers
//   - Redirects are never followed; every hop is returned to the caller
//   - Keep-alives are disabled so no connection is reused between hops
//   - Transparent gzip, deflate and brotli body decoding
//   - Multi-value header access (Set-Cookie)
package http
