package store

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName    = "resona"
	dbFileName = "resona.db"
)

// Manager is the sqlite-backed store.
type Manager struct {
	db *sql.DB
}

// Open opens (or creates) the database at path. An empty path uses the
// default XDG data location.
func Open(path string) (*Manager, error) {
	if path == "" {
		var err error
		path, err = xdg.DataFile(filepath.Join(appName, dbFileName))
		if err != nil {
			return nil, err
		}
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{db: db}, nil
}

// DB exposes the underlying handle.
func (m *Manager) DB() *sql.DB {
	return m.db
}

// Close closes the database.
func (m *Manager) Close() error {
	return m.db.Close()
}
