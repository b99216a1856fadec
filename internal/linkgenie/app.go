// Package linkgenie wires the bookmark backend client, the offline cache and
// the enhancement tracker into the services used by commands.
package linkgenie

import (
	"context"

	"github.com/riccilnl/linkgenie/internal/core/config"
	"github.com/riccilnl/linkgenie/internal/core/eventbus"
	"github.com/riccilnl/linkgenie/internal/core/kv"
	"github.com/riccilnl/linkgenie/internal/core/logging"
	"github.com/riccilnl/linkgenie/internal/core/notify"
	"github.com/riccilnl/linkgenie/internal/data/db"
	"github.com/riccilnl/linkgenie/internal/data/stores"
	"github.com/riccilnl/linkgenie/internal/integration/api"
)

// App is the central entry point for all linkgenie operations.
// Commands consume App instead of cherry-picking raw dependencies.
type App struct {
	Bookmarks     *BookmarkService
	Enhance       *EnhanceService
	Workflows     *WorkflowService
	Folders       *FolderService
	Notifications *notify.Bus
	Doctor        *DoctorService

	Client *api.Client
	Bus    *eventbus.EventBus
	KV     *stores.KVStore
	Config *config.Config
	DB     *db.DB
}

// NewApp constructs an App from explicit dependencies.
func NewApp(
	cfg *config.Config,
	client *api.Client,
	database *db.DB,
	kvStore *stores.KVStore,
	notifications *notify.Bus,
	bus *eventbus.EventBus,
) *App {
	var cache kv.KV
	if cfg.Cache.IsEnabled() && kvStore != nil {
		cache = kvStore
	}
	bookmarks := NewBookmarkService(client, cache, cfg.Cache.TTL, logging.Component("bookmarks"))

	return &App{
		Bookmarks:     bookmarks,
		Enhance:       NewEnhanceService(bookmarks, client, bus, nil, cfg.EnhanceOptions(), logging.Component("enhance")),
		Workflows:     NewWorkflowService(client, bus, logging.Component("workflows")),
		Folders:       NewFolderService(client, bookmarks, logging.Component("folders")),
		Notifications: notifications,
		Doctor:        NewDoctorService(cfg, client, database, kvStore),
		Client:        client,
		Bus:           bus,
		KV:            kvStore,
		Config:        cfg,
		DB:            database,
	}
}

// PersistNotifications forwards notifications published on the event bus to
// the notification bus, which stores them.
func PersistNotifications(ctx context.Context, bus *eventbus.EventBus, notifications *notify.Bus) {
	bus.SubscribeNotificationPublished(func(p eventbus.NotificationPublishedPayload) {
		notifications.Publish(ctx, notify.Notification{
			Level:   p.Level,
			Message: p.Message,
		})
	})
}
