package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var migrationFile = regexp.MustCompile(`^(\d{4})_([a-z0-9_]+)\.(up|down)\.sql$`)

// Migration is one schema version with the SQL to enter and leave it.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// embedded parses the migrations directory once per process.
var embedded = sync.OnceValues(func() ([]Migration, error) {
	return parseMigrations(migrationsFS, "migrations")
})

// parseMigrations reads NNNN_name.{up,down}.sql files from dir. Every
// version needs both halves and a single name.
func parseMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	byVersion := make(map[int]*Migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		m := migrationFile.FindStringSubmatch(entry.Name())
		if m == nil {
			return nil, fmt.Errorf("migration %q: want NNNN_name.up.sql or NNNN_name.down.sql", entry.Name())
		}
		version, _ := strconv.Atoi(m[1])
		if version == 0 {
			return nil, fmt.Errorf("migration %q: version must be positive", entry.Name())
		}

		body, err := fs.ReadFile(fsys, dir+"/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}

		mig, ok := byVersion[version]
		if !ok {
			mig = &Migration{Version: version, Name: m[2]}
			byVersion[version] = mig
		}
		if mig.Name != m[2] {
			return nil, fmt.Errorf("migration %04d: names %q and %q disagree", version, mig.Name, m[2])
		}

		half := &mig.Up
		if m[3] == "down" {
			half = &mig.Down
		}
		if *half != "" {
			return nil, fmt.Errorf("migration %04d: duplicate %s file", version, m[3])
		}
		*half = string(body)
	}

	out := make([]Migration, 0, len(byVersion))
	for _, mig := range byVersion {
		switch {
		case mig.Up == "":
			return nil, fmt.Errorf("migration %04d: missing up file", mig.Version)
		case mig.Down == "":
			return nil, fmt.Errorf("migration %04d: missing down file", mig.Version)
		}
		out = append(out, *mig)
	}
	slices.SortFunc(out, func(a, b Migration) int { return a.Version - b.Version })

	return out, nil
}

// LatestVersion returns the newest embedded migration version.
func LatestVersion() (int, error) {
	all, err := embedded()
	if err != nil || len(all) == 0 {
		return 0, err
	}
	return all[len(all)-1].Version, nil
}

// SchemaVersion returns the highest applied migration version, or 0 for an
// empty database.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var v sql.NullInt64
	if err := db.conn.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(v.Int64), nil
}

// migrator applies embedded migrations to one connection, tracking them in
// schema_migrations.
type migrator struct {
	conn *sql.DB
	all  []Migration
}

func newMigrator(ctx context.Context, conn *sql.DB) (*migrator, error) {
	all, err := embedded()
	if err != nil {
		return nil, err
	}

	_, err = conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at INTEGER NOT NULL
		)`)
	if err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	return &migrator{conn: conn, all: all}, nil
}

func (m *migrator) applied(ctx context.Context) (map[int]bool, error) {
	rows, err := m.conn.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("query applied versions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	set := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		set[v] = true
	}
	return set, rows.Err()
}

// up applies every pending migration in version order and returns how many ran.
func (m *migrator) up(ctx context.Context) (int, error) {
	done, err := m.applied(ctx)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, mig := range m.all {
		if done[mig.Version] {
			continue
		}

		err := m.step(ctx, mig.Up,
			"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
			mig.Version, mig.Name, time.Now().UnixNano())
		if err != nil {
			return n, fmt.Errorf("migration %04d_%s: %w", mig.Version, mig.Name, err)
		}
		log.Debug().Int("version", mig.Version).Str("name", mig.Name).Msg("migration applied")
		n++
	}
	return n, nil
}

// down reverts the newest n applied migrations.
func (m *migrator) down(ctx context.Context, n int) error {
	if n <= 0 {
		return fmt.Errorf("revert count must be positive, got %d", n)
	}

	done, err := m.applied(ctx)
	if err != nil {
		return err
	}

	var revert []Migration
	for _, mig := range slices.Backward(m.all) {
		if done[mig.Version] {
			revert = append(revert, mig)
		}
	}
	if n > len(revert) {
		return fmt.Errorf("cannot revert %d migrations, %d applied", n, len(revert))
	}

	for _, mig := range revert[:n] {
		err := m.step(ctx, mig.Down, "DELETE FROM schema_migrations WHERE version = ?", mig.Version)
		if err != nil {
			return fmt.Errorf("revert %04d_%s: %w", mig.Version, mig.Name, err)
		}
		log.Info().Int("version", mig.Version).Str("name", mig.Name).Msg("migration reverted")
	}
	return nil
}

// step runs body and the bookkeeping statement in one transaction.
func (m *migrator) step(ctx context.Context, body, record string, args ...any) error {
	tx, err := m.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, body); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, record, args...); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return tx.Commit()
}
