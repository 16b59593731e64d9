package artifacts

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Entry describes one persisted artifact.
type Entry struct {
	Name      string    `json:"name"`
	RunID     RunID     `json:"run_id"`
	Engine    string    `json:"engine"`
	Kind      Kind      `json:"kind"`
	Verdict   string    `json:"verdict,omitempty"`
	Size      int       `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// Catalog indexes artifacts in SQLite.
type Catalog struct {
	conn    *sql.DB
	writeMu sync.Mutex
}

// OpenCatalog opens (or creates) the catalog database with WAL enabled.
func OpenCatalog(ctx context.Context, path string) (*Catalog, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping catalog: %w", err)
	}
	if _, err := conn.ExecContext(ctx, schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to apply catalog schema: %w", err)
	}
	return &Catalog{conn: conn}, nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.conn.Close()
}

// Record inserts an entry.
func (c *Catalog) Record(ctx context.Context, e Entry) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err := c.conn.ExecContext(ctx,
		`INSERT INTO artifacts (name, run_id, engine, kind, verdict, size_bytes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Name, string(e.RunID), e.Engine, string(e.Kind), e.Verdict, e.Size,
		e.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("record artifact %s: %w", e.Name, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (c *Catalog) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := c.conn.QueryContext(ctx,
		`SELECT name, run_id, engine, kind, verdict, size_bytes, created_at
		 FROM artifacts ORDER BY created_at DESC, name DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ByRun returns the entries of one run ordered by name.
func (c *Catalog) ByRun(ctx context.Context, run RunID) ([]Entry, error) {
	rows, err := c.conn.QueryContext(ctx,
		`SELECT name, run_id, engine, kind, verdict, size_bytes, created_at
		 FROM artifacts WHERE run_id = ? ORDER BY name`, string(run))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var out []Entry
	for rows.Next() {
		var (
			e         Entry
			run, kind string
			ts        int64
		)
		if err := rows.Scan(&e.Name, &run, &e.Engine, &kind, &e.Verdict, &e.Size, &ts); err != nil {
			return nil, err
		}
		e.RunID = RunID(run)
		e.Kind = Kind(kind)
		e.CreatedAt = time.Unix(0, ts).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
