package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type LogEntryRow struct {
	Timestamp time.Time
	Level     int
	Message   string
	Attrs     string
}

func (r LogEntryRow) LevelString() string {
	return slog.Level(r.Level).String()
}

func (d *Database) SaveLogEntry(ctx context.Context, r LogEntryRow) error {
	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := d.write.ExecContext(ctx, `
		INSERT INTO log (timestamp, level, message, attrs)
		VALUES (?, ?, ?, ?)`,
		formatTimestamp(ts),
		r.Level,
		r.Message,
		r.Attrs)
	if err != nil {
		return fmt.Errorf("saving log entry: %w", err)
	}
	return nil
}

// LogPage is one page of log entries, newest first.
type LogPage struct {
	Entries []LogEntryRow
	HasMore bool
}

// GetLogEntries returns page (1-based) of the entries at or above minLvl.
// One row beyond the page is read to tell whether another page follows.
func (d *Database) GetLogEntries(ctx context.Context, minLvl slog.Level, page, pageSize int) (LogPage, error) {
	page = max(page, 1)
	if pageSize < 1 {
		pageSize = 10
	}

	rows, err := d.read.QueryContext(ctx, `
		SELECT timestamp, level, message, attrs
		FROM log
		WHERE level >= ?
		ORDER BY id DESC
		LIMIT ? OFFSET ?`,
		int(minLvl), pageSize+1, (page-1)*pageSize)
	if err != nil {
		return LogPage{}, fmt.Errorf("fetching log entries: %w", err)
	}
	defer rows.Close()

	var result LogPage
	for rows.Next() {
		if len(result.Entries) == pageSize {
			result.HasMore = true
			break
		}
		var ts string
		var r LogEntryRow
		if err := rows.Scan(&ts, &r.Level, &r.Message, &r.Attrs); err != nil {
			return LogPage{}, fmt.Errorf("scanning log entry: %w", err)
		}
		if r.Timestamp, err = parseTimestamp(ts); err != nil {
			return LogPage{}, fmt.Errorf("log entry timestamp: %w", err)
		}
		result.Entries = append(result.Entries, r)
	}
	if err := rows.Err(); err != nil {
		return LogPage{}, fmt.Errorf("reading log rows: %w", err)
	}

	return result, nil
}

// PurgeLog keeps the newest maxLogEntries entries.
func (d *Database) PurgeLog(ctx context.Context, maxLogEntries int) error {
	d.logger.Debug("purging log")
	_, err := d.write.ExecContext(ctx, `
		DELETE FROM log WHERE id <= (SELECT id FROM log ORDER BY id DESC LIMIT 1 OFFSET ?)`, maxLogEntries)
	if err != nil {
		return fmt.Errorf("purging log: %w", err)
	}
	return nil
}
