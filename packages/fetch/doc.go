// Package fetch reads web pages, following redirects by hand and carrying
// cookies from one hop to the next.
//
// A Fetcher holds configuration only. Every Open or Fetch call builds a
// fresh Session, so one Fetcher may serve many goroutines.
//
// Open walks the redirect chain:
//
//	START → CONNECTING → (REDIRECTED → CONNECTING)* → BODY_READY → DONE
//
// and returns a Stream over the decoded body of the last hop. Each hop's
// Set-Cookie values are parsed with package cookie and replayed as a single
// Cookie header on later hops. The body charset comes from Content-Type and
// defaults to UTF-8.
//
// Fetch reads that stream line by line and joins the lines into one string
// using a fixed whitespace policy (see JoinLines). Failing to open the stream
// is a hard error. A failure while reading lines yields a Partial page
// together with a *ReadError.
package fetch
