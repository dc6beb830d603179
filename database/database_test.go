package database

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/icodeforyou/spotprice-go/prices"
	"github.com/icodeforyou/spotprice-go/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := New(context.Background(), path)
	require.NoError(t, err)
	db.Close()

	db, err = New(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()

	var ver int
	require.NoError(t, db.read.QueryRow("PRAGMA user_version").Scan(&ver))
	assert.Equal(t, 1, ver)

	_, err = os.Stat(filepath.Join(filepath.Dir(path), "backups"))
	assert.True(t, os.IsNotExist(err), "no backup for an up to date database")
}

func TestPendingMigrations(t *testing.T) {
	all, err := pendingMigrations(0)
	require.NoError(t, err)
	require.NotEmpty(t, all)
	assert.Equal(t, 1, all[0].version)
	assert.Equal(t, "001_init.sql", all[0].file)

	none, err := pendingMigrations(all[len(all)-1].version)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLogEntries(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	for i, lvl := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		require.NoError(t, db.SaveLogEntry(ctx, LogEntryRow{
			Timestamp: time.Date(2024, time.March, 25, 12, i, 0, 0, time.UTC),
			Level:     int(lvl),
			Message:   lvl.String(),
		}))
	}

	page, err := db.GetLogEntries(ctx, slog.LevelInfo, 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, "ERROR", page.Entries[0].Message, "newest first")
	assert.Equal(t, "WARN", page.Entries[1].LevelString())
	assert.Equal(t, time.Date(2024, time.March, 25, 12, 3, 0, 0, time.UTC), page.Entries[0].Timestamp)

	page, err = db.GetLogEntries(ctx, slog.LevelInfo, 2, 2)
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.False(t, page.HasMore)
	assert.Equal(t, "INFO", page.Entries[0].Message)

	page, err = db.GetLogEntries(ctx, slog.LevelWarn, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Entries, 2)
	assert.False(t, page.HasMore, "exactly one full page")

	require.NoError(t, db.PurgeLog(ctx, 1))
	page, err = db.GetLogEntries(ctx, slog.LevelDebug, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, "ERROR", page.Entries[0].Message)
}

func TestAlerts(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	start := time.Date(2024, time.March, 25, 12, 0, 0, 0, time.UTC)
	alert := prices.Alert{
		Point:          types.PricePoint{Price: 25.5, StartDate: start, EndDate: start.Add(time.Hour)},
		Classification: prices.Above,
		Limits:         prices.PriceLimits{Lower: 1, Upper: 20},
		At:             time.Now(),
	}
	require.NoError(t, db.SaveAlert(ctx, alert))

	old := alert
	old.At = time.Now().Add(-48 * time.Hour)
	require.NoError(t, db.SaveAlert(ctx, old))

	alerts, err := db.GetAlerts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, alert.Point.StartDate, alerts[1].Point.StartDate)
	assert.Equal(t, alert.Point.EndDate, alerts[1].Point.EndDate)
	assert.Equal(t, 25.5, alerts[1].Point.Price)
	assert.Equal(t, prices.Above, alerts[1].Classification)
	assert.Equal(t, alert.Limits, alerts[1].Limits)
	assert.Equal(t, alert.Message(), alerts[1].Message)

	require.NoError(t, db.PurgeAlerts(ctx, 1))
	alerts, err = db.GetAlerts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
}

func TestSettings(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	_, ok, err := db.LoadSettings(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	s := prices.Settings{Limits: prices.PriceLimits{Lower: 3, Upper: 7.5}, Notify: prices.NotifyHigher}
	require.NoError(t, db.SaveSettings(ctx, s))
	s.Notify = prices.NotifyBoth
	require.NoError(t, db.SaveSettings(ctx, s))

	loaded, ok, err := db.LoadSettings(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, s, loaded)
}

func TestLoadSettingsRejectsInvalidRow(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"unknown notify mode", `{"limits":{"lower":1,"upper":5},"notify":"sometimes"}`},
		{"limit out of range", `{"limits":{"lower":-1,"upper":5},"notify":"lower"}`},
		{"upper out of range", `{"limits":{"lower":1,"upper":500},"notify":"both"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDatabase(t)
			ctx := context.Background()
			_, err := db.write.ExecContext(ctx,
				`INSERT INTO setting (key, value) VALUES (?, ?)`, settingsKey, tt.value)
			require.NoError(t, err)

			_, ok, err := db.LoadSettings(ctx)
			assert.ErrorContains(t, err, "invalid saved settings")
			assert.False(t, ok)
		})
	}
}

func TestLoadSettingsDefaultsEmptyNotify(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	_, err := db.write.ExecContext(ctx,
		`INSERT INTO setting (key, value) VALUES (?, ?)`, settingsKey, `{"limits":{"lower":1,"upper":5},"notify":""}`)
	require.NoError(t, err)

	loaded, ok, err := db.LoadSettings(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, prices.NotifyLower, loaded.Notify)
}

func TestBackup(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	require.NoError(t, db.Backup(ctx))

	files, err := os.ReadDir(db.backupDir())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Regexp(t, backupNameRe, files[0].Name())

	stale := filepath.Join(db.backupDir(), "20000101_000000_spotprice.db.zip")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))
	unrelated := filepath.Join(db.backupDir(), "notes.txt")
	require.NoError(t, os.WriteFile(unrelated, []byte("keep"), 0o644))

	require.NoError(t, db.PurgeBackups(ctx, 30))

	files, err = os.ReadDir(db.backupDir())
	require.NoError(t, err)
	assert.Len(t, files, 2)
	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}

func TestPurgeBackupsWithoutDirectory(t *testing.T) {
	db := newTestDatabase(t)
	assert.NoError(t, db.PurgeBackups(context.Background(), 30))
}
