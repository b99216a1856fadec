package linkgenie

import (
	"context"

	"github.com/riccilnl/linkgenie/internal/core/config"
	"github.com/riccilnl/linkgenie/internal/core/doctor"
	"github.com/riccilnl/linkgenie/internal/data/db"
	"github.com/riccilnl/linkgenie/internal/data/stores"
	"github.com/riccilnl/linkgenie/internal/integration/api"
)

// DoctorService runs health checks on the linkgenie setup.
type DoctorService struct {
	config *config.Config
	client *api.Client
	db     *db.DB
	kv     *stores.KVStore
}

// NewDoctorService creates a new DoctorService. db and kv may be nil when the
// database could not be opened.
func NewDoctorService(cfg *config.Config, client *api.Client, database *db.DB, kvStore *stores.KVStore) *DoctorService {
	return &DoctorService{
		config: cfg,
		client: client,
		db:     database,
		kv:     kvStore,
	}
}

// RunChecks executes all doctor checks and returns results.
func (d *DoctorService) RunChecks(ctx context.Context, configPath string, autofix bool) []doctor.Result {
	var schema doctor.SchemaInfo
	if d.db != nil {
		schema = d.db
	}
	var cache doctor.CacheStore
	if d.kv != nil {
		cache = d.kv
	}

	checks := []doctor.Check{
		doctor.NewConfigCheck(d.config, configPath),
		doctor.NewDataDirCheck(d.config.DataDir, autofix),
		doctor.NewDatabaseCheck(schema, db.LatestVersion),
		doctor.NewCacheCheck(cache, CacheNamespace+":", d.config.Cache.IsEnabled(), autofix),
		doctor.NewAPICheck(d.client, api.ErrUnauthorized),
	}
	return doctor.RunAll(ctx, checks, d.config.API.Timeout)
}
