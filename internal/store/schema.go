package store

import (
	"database/sql"
)

const currentSchemaVersion = 2

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS library_tracks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			artist TEXT NOT NULL,
			album TEXT NOT NULL,
			track_number INTEGER,
			year INTEGER,
			genre TEXT,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			artwork_path TEXT,
			favorite INTEGER NOT NULL DEFAULT 0,
			rating INTEGER NOT NULL DEFAULT 0,
			play_count INTEGER NOT NULL DEFAULT 0,
			last_played_at INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_tracks_artist_album ON library_tracks(artist, album, track_number);

		CREATE TABLE IF NOT EXISTS queue_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			current_index INTEGER NOT NULL DEFAULT -1
		);

		CREATE TABLE IF NOT EXISTS queue_tracks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			position INTEGER NOT NULL,
			track_id INTEGER NOT NULL REFERENCES library_tracks(id) ON DELETE CASCADE,
			UNIQUE(position)
		);

		CREATE INDEX IF NOT EXISTS idx_queue_tracks_position ON queue_tracks(position);

		CREATE TABLE IF NOT EXISTS settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			repeat_mode INTEGER NOT NULL DEFAULT 0,
			shuffle INTEGER NOT NULL DEFAULT 0,
			speed REAL NOT NULL DEFAULT 1.0,
			volume REAL NOT NULL DEFAULT 1.0,
			sleep_timer_minutes INTEGER NOT NULL DEFAULT 0,
			eq_enabled INTEGER NOT NULL DEFAULT 0,
			eq_preset TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS recently_played (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			track_id INTEGER NOT NULL REFERENCES library_tracks(id) ON DELETE CASCADE,
			played_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_recently_played_at ON recently_played(played_at DESC);
	`)
	if err != nil {
		return err
	}

	// Set initial version if not exists
	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	if err != nil {
		return err
	}

	// Migration: add eq columns if missing
	_, _ = db.Exec(`ALTER TABLE settings ADD COLUMN eq_enabled INTEGER NOT NULL DEFAULT 0`)
	_, _ = db.Exec(`ALTER TABLE settings ADD COLUMN eq_preset TEXT NOT NULL DEFAULT ''`)

	return nil
}
