package stores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riccilnl/linkgenie/internal/data/db"
)

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, IsNotFoundError(fmt.Errorf("kv get: %w", sql.ErrNoRows)))
	assert.False(t, IsNotFoundError(errors.New("other")))
	assert.False(t, IsNotFoundError(nil))
}

func TestIsCorruptionError_Message(t *testing.T) {
	assert.True(t, IsCorruptionError(errors.New("database disk image is malformed")))
	assert.False(t, IsCorruptionError(errors.New("connection refused")))
}

func TestRecoverFromCorruption(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, db.FileName)

	require.NoError(t, os.WriteFile(dbPath, []byte("garbage"), 0o644))
	require.NoError(t, os.WriteFile(dbPath+"-wal", []byte("wal"), 0o644))

	backup, err := RecoverFromCorruption(dir)
	require.NoError(t, err)
	assert.FileExists(t, backup)
	assert.FileExists(t, backup+"-wal")

	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err), "database moved aside")
	_, err = os.Stat(dbPath + "-wal")
	assert.True(t, os.IsNotExist(err), "wal moved aside")

	matches, err := filepath.Glob(filepath.Join(dir, db.FileName+".corrupt.*"))
	require.NoError(t, err)
	assert.NotEmpty(t, matches)

	database, err := db.Open(dir, db.DefaultOpenOptions())
	require.NoError(t, err)
	require.NoError(t, database.Close())
}

func TestRecoverFromCorruption_Missing(t *testing.T) {
	backup, err := RecoverFromCorruption(t.TempDir())
	assert.NoError(t, err)
	assert.Empty(t, backup)
}

func TestRetryBusy(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := retryBusy(ctx, func() error {
		calls++
		return errors.New("constraint failed")
	})
	assert.EqualError(t, err, "constraint failed")
	assert.Equal(t, 1, calls, "non-busy errors are not retried")

	calls = 0
	require.NoError(t, retryBusy(ctx, func() error {
		calls++
		return nil
	}))
	assert.Equal(t, 1, calls)
}
