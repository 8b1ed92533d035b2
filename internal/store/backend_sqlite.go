package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"vaultsync/internal/domain"
)

// SQLite stores blobs in a single-file database. Handy when a location must
// travel as one file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, domain.ErrBackendUnavailable)
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS blobs (
		path TEXT PRIMARY KEY,
		data BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init %s: %w", path, domain.ErrBackendUnavailable)
	}
	return &SQLite{db: db}, nil
}

// Close releases the database handle.
func (b *SQLite) Close() error { return b.db.Close() }

// Read returns the blob at path, or ok=false if no row exists.
func (b *SQLite) Read(path string) ([]byte, bool, error) {
	var data []byte
	err := b.db.QueryRow(`SELECT data FROM blobs WHERE path = ?`, path).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	return data, true, nil
}

// Write upserts the blob at path.
func (b *SQLite) Write(path string, data []byte) error {
	_, err := b.db.Exec(
		`INSERT INTO blobs (path, data) VALUES (?, ?)
		 ON CONFLICT(path) DO UPDATE SET data = excluded.data`,
		path, data)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// List returns every stored path starting with prefix.
func (b *SQLite) List(prefix string) ([]string, error) {
	rows, err := b.db.Query(
		`SELECT path FROM blobs WHERE path LIKE ? || '%' ORDER BY path`, prefix)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

var _ domain.Backend = (*SQLite)(nil)
