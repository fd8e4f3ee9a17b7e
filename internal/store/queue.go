package store

import (
	"database/sql"

	"github.com/cockroachdb/errors"

	dbutil "github.com/llehouerou/resona/internal/db"
)

// QueueSnapshot is the persisted queue: ordered track ids plus position.
type QueueSnapshot struct {
	CurrentIndex int
	TrackIDs     []int64
}

// LoadQueue returns the saved queue snapshot. An empty database yields an
// empty snapshot with index -1, not an error.
func (m *Manager) LoadQueue() (*QueueSnapshot, error) {
	var currentIndex int
	row := m.db.QueryRow(`SELECT current_index FROM queue_state WHERE id = 1`)
	err := row.Scan(&currentIndex)
	if errors.Is(err, sql.ErrNoRows) {
		return &QueueSnapshot{CurrentIndex: -1}, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := m.db.Query(`SELECT track_id FROM queue_tracks ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &QueueSnapshot{CurrentIndex: currentIndex, TrackIDs: ids}, nil
}

// SaveQueue replaces the saved queue snapshot wholesale.
func (m *Manager) SaveQueue(snapshot QueueSnapshot) error {
	return dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM queue_tracks`); err != nil {
			return err
		}

		_, err := tx.Exec(`
			INSERT INTO queue_state (id, current_index)
			VALUES (1, ?)
			ON CONFLICT(id) DO UPDATE SET
				current_index = excluded.current_index
		`, snapshot.CurrentIndex)
		if err != nil {
			return err
		}

		stmt, err := tx.Prepare(`INSERT INTO queue_tracks (position, track_id) VALUES (?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, id := range snapshot.TrackIDs {
			if _, err := stmt.Exec(i, id); err != nil {
				return err
			}
		}
		return nil
	})
}
