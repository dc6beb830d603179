package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"embed"
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"slices"
	"strconv"
	"time"

	sqlite "modernc.org/sqlite"
)

//go:embed migrations
var migrationsDir embed.FS

const (
	timestampLayout = "2006-01-02T15:04:05Z"
	readConns       = 4
)

type Database struct {
	logger *slog.Logger
	read   *sql.DB
	write  *sql.DB
	path   string
}

const pragmas = `
	PRAGMA journal_mode = WAL;
	PRAGMA synchronous = NORMAL;
	PRAGMA busy_timeout = 5000;
	PRAGMA foreign_keys = ON;
	PRAGMA trusted_schema = OFF;
`

func init() {
	sqlite.RegisterConnectionHook(func(conn sqlite.ExecQuerierContext, _ string) error {
		_, err := conn.ExecContext(context.Background(), pragmas, []driver.NamedValue{})
		return err
	})
}

// New opens the database at path with one writer and a pool of readers,
// and brings the schema up to date.
func New(ctx context.Context, path string) (*Database, error) {
	read, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error when opening database (read): %w", err)
	}
	read.SetMaxOpenConns(readConns)
	read.SetConnMaxIdleTime(time.Minute)

	write, err := sql.Open("sqlite", path)
	if err != nil {
		read.Close()
		return nil, fmt.Errorf("error when opening database (write): %w", err)
	}
	write.SetMaxOpenConns(1) // sqlite allows a single writer
	write.SetConnMaxIdleTime(time.Minute)

	d := &Database{
		logger: slog.Default().With(slog.String("module", "database")),
		read:   read,
		write:  write,
		path:   path,
	}

	if err = d.migrate(ctx); err != nil {
		d.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	return d, nil
}

func (d *Database) SetLogger(logger *slog.Logger) {
	d.logger = logger
}

func (d *Database) Close() {
	d.read.Close()
	d.write.Close()
}

type migration struct {
	version int
	file    string
}

var migrationFileRe = regexp.MustCompile(`^(\d+)[-_].*\.sql$`)

// pendingMigrations lists the embedded migrations newer than currVer, ordered by version.
func pendingMigrations(currVer int) ([]migration, error) {
	entries, err := migrationsDir.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var pending []migration
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := migrationFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			return nil, fmt.Errorf("parse version from migration file: %s", e.Name())
		}
		ver, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("convert migration version from file %s: %w", e.Name(), err)
		}
		if ver > currVer {
			pending = append(pending, migration{version: ver, file: e.Name()})
		}
	}

	slices.SortFunc(pending, func(a, b migration) int { return a.version - b.version })
	return pending, nil
}

func (d *Database) migrate(ctx context.Context) error {
	var currVer int
	if err := d.read.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currVer); err != nil {
		return fmt.Errorf("get current version: %w", err)
	}

	pending, err := pendingMigrations(currVer)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	// A fresh database has nothing worth a backup
	if currVer > 0 {
		if err := d.Backup(ctx); err != nil {
			return fmt.Errorf("backup database before migration: %w", err)
		}
	}

	for _, m := range pending {
		if err := d.applyMigration(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (d *Database) applyMigration(ctx context.Context, m migration) error {
	d.logger.Debug("applying migration", slog.Int("version", m.version), slog.String("file", m.file))

	data, err := migrationsDir.ReadFile(path.Join("migrations", m.file))
	if err != nil {
		return fmt.Errorf("read migration file %s: %w", m.file, err)
	}

	tx, err := d.write.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start transaction for migration %d: %w", m.version, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err = tx.ExecContext(ctx, string(data)); err != nil {
		return fmt.Errorf("apply migration %d: %w", m.version, err)
	}
	// PRAGMA doesn't take bind parameters.
	if _, err = tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d;", m.version)); err != nil {
		return fmt.Errorf("update database version for migration %d: %w", m.version, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %d: %w", m.version, err)
	}
	return nil
}

// purgeBefore deletes rows whose timestamp column is older than retentionDays.
func (d *Database) purgeBefore(ctx context.Context, table, column string, retentionDays int) error {
	d.logger.Debug("purging table", slog.String("table", table))
	before := time.Now().Add(-24 * time.Hour * time.Duration(retentionDays))
	res, err := d.write.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE %s < ?`, table, column),
		formatTimestamp(before))
	if err != nil {
		return fmt.Errorf("purging %s: %w", table, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		d.logger.Warn("can't get rows affected by purge", slog.String("table", table), slog.Any("error", err))
	} else {
		d.logger.Debug("purged rows", slog.String("table", table), slog.Int64("rows", rows))
	}

	return nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(timestampLayout, s)
}
