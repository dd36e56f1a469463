// Package output provides formatters for displaying fetch results.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable JSON output
//
// Both formatters render single fetches, bench summaries and the archive
// history.
package output

import (
	"github.com/abdul-hamid-achik/pagefetch/packages/archive"
	"github.com/abdul-hamid-achik/pagefetch/packages/fetch"
)

// Formatter is implemented by every output format
type Formatter interface {
	FormatPage(page *fetch.Page, err error)
	FormatHistory(records []archive.Record)
	FormatError(err error)
	FormatHeader(version string)
}

var (
	_ Formatter = (*ConsoleFormatter)(nil)
	_ Formatter = (*JSONFormatter)(nil)
)
