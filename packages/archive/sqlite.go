package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS pages (
	id           TEXT PRIMARY KEY,
	origin_url   TEXT NOT NULL,
	final_url    TEXT NOT NULL,
	status_code  INTEGER NOT NULL,
	hops         TEXT NOT NULL,
	content_type TEXT NOT NULL,
	charset      TEXT NOT NULL,
	body         TEXT NOT NULL,
	outcome      TEXT NOT NULL,
	fetched_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS pages_fetched_at ON pages (fetched_at);
`

// SQLiteStore archives records in a SQLite database
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, rec Record) error {
	hops, err := json.Marshal(rec.Hops)
	if err != nil {
		return fmt.Errorf("failed to encode hops: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO pages (id, origin_url, final_url, status_code, hops, content_type, charset, body, outcome, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.OriginURL, rec.FinalURL, rec.StatusCode, string(hops),
		rec.ContentType, rec.Charset, rec.Body, rec.Outcome, rec.FetchedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, origin_url, final_url, status_code, hops, content_type, charset, body, outcome, fetched_at
		 FROM pages ORDER BY fetched_at DESC LIMIT ?`, listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var (
			rec       Record
			hops      string
			fetchedAt int64
		)
		err := rows.Scan(&rec.ID, &rec.OriginURL, &rec.FinalURL, &rec.StatusCode, &hops,
			&rec.ContentType, &rec.Charset, &rec.Body, &rec.Outcome, &fetchedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(hops), &rec.Hops); err != nil {
			return nil, fmt.Errorf("failed to decode hops of %s: %w", rec.ID, err)
		}
		rec.FetchedAt = time.Unix(0, fetchedAt).UTC()
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
