package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ayusman/mudra/internal/gesture"
)

// configKey is the settings row holding the serialized engine configuration.
const configKey = "gesture_config"

// SettingsRepository provides access to the persisted engine configuration.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// LoadConfig reads the saved engine configuration.
// Returns ErrNotFound if no configuration has been saved yet.
func (r *SettingsRepository) LoadConfig() (gesture.Config, error) {
	var raw string
	err := r.db.QueryRow(
		`SELECT value FROM settings WHERE key = ?`, configKey,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return gesture.Config{}, ErrNotFound
		}
		return gesture.Config{}, err
	}

	var cfg gesture.Config
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return gesture.Config{}, fmt.Errorf("failed to decode saved config: %w", err)
	}

	// Saved values may predate a bounds change; clamp on the way in.
	return cfg.Clamped(), nil
}

// SaveConfig persists the engine configuration, replacing any previous one.
func (r *SettingsRepository) SaveConfig(cfg gesture.Config) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		configKey, string(raw),
	)
	return err
}

// Get reads a raw setting value by key.
// Returns ErrNotFound if the key does not exist.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(
		`SELECT value FROM settings WHERE key = ?`, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set writes a raw setting value by key.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}
