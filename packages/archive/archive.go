// Package archive keeps a history of fetched pages.
// Records are stored in SQLite or in a bbolt file, selected by DSN.
package archive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/pagefetch/packages/fetch"
)

// DefaultListLimit is used by List when limit is not positive
const DefaultListLimit = 20

var ErrUnsupportedDSN = errors.New("unsupported archive DSN")

// Record is one archived fetch
type Record struct {
	ID          string      `json:"id"`
	OriginURL   string      `json:"originUrl"`
	FinalURL    string      `json:"finalUrl"`
	StatusCode  int         `json:"statusCode"`
	Hops        []fetch.Hop `json:"hops"`
	ContentType string      `json:"contentType,omitempty"`
	Charset     string      `json:"charset"`
	Body        string      `json:"body"`
	Outcome     string      `json:"outcome"`
	FetchedAt   time.Time   `json:"fetchedAt"`
}

// Redirects returns how many Location headers were followed
func (r Record) Redirects() int {
	if len(r.Hops) == 0 {
		return 0
	}
	return len(r.Hops) - 1
}

// Store persists records
type Store interface {
	Save(ctx context.Context, rec Record) error
	// List returns up to limit records, newest first
	List(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

// RecordFromPage builds a record for page stamped with the current time
func RecordFromPage(page *fetch.Page) Record {
	return Record{
		ID:          page.ID,
		OriginURL:   page.OriginURL,
		FinalURL:    page.FinalURL,
		StatusCode:  page.StatusCode,
		Hops:        page.Hops,
		ContentType: page.ContentType,
		Charset:     page.Charset,
		Body:        page.Body,
		Outcome:     page.Outcome.String(),
		FetchedAt:   time.Now().UTC(),
	}
}

// Open opens the store named by dsn.
// Supported formats:
// - sqlite://path/to/history.db
// - sqlite:./history.db
// - bolt://path/to/history.bolt
// - bolt:./history.bolt
func Open(dsn string) (Store, error) {
	dsn = strings.TrimSpace(dsn)

	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		return NewSQLiteStore(strings.TrimPrefix(dsn, "sqlite://"))
	case strings.HasPrefix(dsn, "sqlite:"):
		return NewSQLiteStore(strings.TrimPrefix(dsn, "sqlite:"))
	case strings.HasPrefix(dsn, "bolt://"):
		return NewBoltStore(strings.TrimPrefix(dsn, "bolt://"))
	case strings.HasPrefix(dsn, "bolt:"):
		return NewBoltStore(strings.TrimPrefix(dsn, "bolt:"))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDSN, dsn)
	}
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
