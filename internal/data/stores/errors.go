package stores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/riccilnl/linkgenie/internal/data/db"
)

const (
	busyAttempts = 4
	busyBackoff  = 25 * time.Millisecond
)

var corruptionMessages = []string{
	"database disk image is malformed",
	"file is not a database",
	"database corruption",
}

func sqliteCode(err error) (int, bool) {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code(), true
	}
	return 0, false
}

// IsBusyError reports whether err is SQLITE_BUSY or SQLITE_LOCKED.
func IsBusyError(err error) bool {
	code, ok := sqliteCode(err)
	return ok && (code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED)
}

// IsCorruptionError reports whether err means the database file is unusable.
func IsCorruptionError(err error) bool {
	if err == nil {
		return false
	}

	if code, ok := sqliteCode(err); ok {
		switch code {
		case sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_CANTOPEN:
			return true
		}
		return false
	}

	msg := err.Error()
	for _, m := range corruptionMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// IsNotFoundError returns true if the error is a "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// retryBusy runs fn again with linear backoff while it fails with a busy
// error. Another linkgenie process writing the same cache is the usual cause.
func retryBusy(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= busyAttempts; attempt++ {
		if err = fn(); err == nil || !IsBusyError(err) {
			return err
		}
		if attempt == busyAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(time.Duration(attempt) * busyBackoff):
		}
	}
	return err
}

// RecoverFromCorruption moves a corrupted database and its WAL/SHM files
// aside so the next Open starts from an empty cache. It returns the backup
// path of the main file, or "" when there was nothing to move.
func RecoverFromCorruption(dataDir string) (string, error) {
	dbPath := filepath.Join(dataDir, db.FileName)
	backupPath := filepath.Join(dataDir,
		fmt.Sprintf("%s.corrupt.%s", db.FileName, time.Now().Format("20060102-150405")))

	moved := ""
	if err := os.Rename(dbPath, backupPath); err == nil {
		moved = backupPath
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("back up corrupted database: %w", err)
	}

	// Orphaned WAL/SHM files would be replayed against the new database.
	for _, suffix := range []string{"-wal", "-shm"} {
		src := dbPath + suffix
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if err := os.Rename(src, backupPath+suffix); err != nil {
			if rmErr := os.Remove(src); rmErr != nil {
				return moved, fmt.Errorf("back up or remove %s: %w", filepath.Base(src), errors.Join(err, rmErr))
			}
		}
	}

	return moved, nil
}
