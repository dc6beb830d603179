package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/icodeforyou/spotprice-go/prices"
)

const settingsKey = "price_settings"

// SaveSettings stores the limits and notify mode edited from the web UI.
func (d *Database) SaveSettings(ctx context.Context, s prices.Settings) error {
	value, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	_, err = d.write.ExecContext(ctx, `
		INSERT INTO setting (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		settingsKey, string(value))
	if err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

// LoadSettings returns false when no settings have been saved yet.
func (d *Database) LoadSettings(ctx context.Context) (prices.Settings, bool, error) {
	var value string
	err := d.read.QueryRowContext(ctx, `SELECT value FROM setting WHERE key = ?`, settingsKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return prices.Settings{}, false, nil
	}
	if err != nil {
		return prices.Settings{}, false, fmt.Errorf("loading settings: %w", err)
	}

	var s prices.Settings
	if err := json.Unmarshal([]byte(value), &s); err != nil {
		return prices.Settings{}, false, fmt.Errorf("decoding settings: %w", err)
	}
	s, err = prices.NewSettings(s.Limits.Lower, s.Limits.Upper, string(s.Notify))
	if err != nil {
		return prices.Settings{}, false, fmt.Errorf("invalid saved settings: %w", err)
	}
	return s, true, nil
}
