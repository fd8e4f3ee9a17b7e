package store

import (
	"database/sql"

	"github.com/cockroachdb/errors"
)

// Settings is the mutable playback configuration. The engine applies it to
// the decoder on load and persists it on every change. The EQ knobs are
// stored and handed to the decoder untouched.
type Settings struct {
	RepeatMode        int
	Shuffle           bool
	Speed             float64
	Volume            float64
	SleepTimerMinutes int
	EqualizerEnabled  bool
	EqualizerPreset   string
}

// DefaultSettings returns the settings used before anything is persisted.
func DefaultSettings() Settings {
	return Settings{
		Speed:  1.0,
		Volume: 1.0,
	}
}

// LoadSettings returns the saved settings, or defaults if none saved yet.
func (m *Manager) LoadSettings() (*Settings, error) {
	var s Settings
	row := m.db.QueryRow(`
		SELECT repeat_mode, shuffle, speed, volume, sleep_timer_minutes, eq_enabled, eq_preset
		FROM settings WHERE id = 1
	`)
	err := row.Scan(&s.RepeatMode, &s.Shuffle, &s.Speed, &s.Volume,
		&s.SleepTimerMinutes, &s.EqualizerEnabled, &s.EqualizerPreset)
	if errors.Is(err, sql.ErrNoRows) {
		def := DefaultSettings()
		return &def, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveSettings persists the settings snapshot.
func (m *Manager) SaveSettings(s Settings) error {
	_, err := m.db.Exec(`
		INSERT INTO settings (id, repeat_mode, shuffle, speed, volume, sleep_timer_minutes, eq_enabled, eq_preset)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			repeat_mode = excluded.repeat_mode,
			shuffle = excluded.shuffle,
			speed = excluded.speed,
			volume = excluded.volume,
			sleep_timer_minutes = excluded.sleep_timer_minutes,
			eq_enabled = excluded.eq_enabled,
			eq_preset = excluded.eq_preset
	`, s.RepeatMode, s.Shuffle, s.Speed, s.Volume, s.SleepTimerMinutes,
		s.EqualizerEnabled, s.EqualizerPreset)
	return err
}
