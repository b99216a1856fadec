package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DataDirCheck verifies that the data directory exists and is writable.
type DataDirCheck struct {
	dir     string
	autofix bool
}

// NewDataDirCheck creates a new data directory check. With autofix a missing
// directory is created.
func NewDataDirCheck(dir string, autofix bool) *DataDirCheck {
	return &DataDirCheck{dir: dir, autofix: autofix}
}

func (c *DataDirCheck) Name() string {
	return "Data Directory"
}

func (c *DataDirCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	info, err := os.Stat(c.dir)
	switch {
	case os.IsNotExist(err):
		if !c.autofix {
			result.Items = append(result.Items, CheckItem{
				Label:   c.dir,
				Status:  StatusWarn,
				Detail:  "does not exist (created on first use)",
				Fixable: true,
			})
			return result
		}
		if err := os.MkdirAll(c.dir, 0o755); err != nil {
			result.Items = append(result.Items, CheckItem{
				Label:  c.dir,
				Status: StatusFail,
				Detail: fmt.Sprintf("create: %v", err),
			})
			return result
		}
	case err != nil:
		result.Items = append(result.Items, CheckItem{
			Label:  c.dir,
			Status: StatusFail,
			Detail: fmt.Sprintf("cannot access: %v", err),
		})
		return result
	case !info.IsDir():
		result.Items = append(result.Items, CheckItem{
			Label:  c.dir,
			Status: StatusFail,
			Detail: "not a directory",
		})
		return result
	}

	scratch, err := os.CreateTemp(c.dir, ".doctor-*")
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  c.dir,
			Status: StatusFail,
			Detail: "not writable",
		})
		return result
	}
	_ = scratch.Close()
	_ = os.Remove(filepath.Clean(scratch.Name()))

	result.Items = append(result.Items, CheckItem{
		Label:  c.dir,
		Status: StatusPass,
	})
	return result
}

// SchemaInfo reports the applied and expected database schema versions.
type SchemaInfo interface {
	SchemaVersion(ctx context.Context) (int, error)
}

// DatabaseCheck verifies the database is reachable and fully migrated.
type DatabaseCheck struct {
	db     SchemaInfo
	latest func() (int, error)
}

// NewDatabaseCheck creates a new database check. A nil db reports that the
// database could not be opened.
func NewDatabaseCheck(db SchemaInfo, latest func() (int, error)) *DatabaseCheck {
	return &DatabaseCheck{db: db, latest: latest}
}

func (c *DatabaseCheck) Name() string {
	return "Database"
}

func (c *DatabaseCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if c.db == nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "open",
			Status: StatusFail,
			Detail: "database not available",
		})
		return result
	}

	current, err := c.db.SchemaVersion(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "schema",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	latest, err := c.latest()
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "schema",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	if current < latest {
		result.Items = append(result.Items, CheckItem{
			Label:  "schema",
			Status: StatusWarn,
			Detail: fmt.Sprintf("version %d, expected %d", current, latest),
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "schema",
		Status: StatusPass,
		Detail: fmt.Sprintf("version %d", current),
	})
	return result
}
