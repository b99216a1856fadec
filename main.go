package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/riccilnl/linkgenie/internal/commands"
	"github.com/riccilnl/linkgenie/internal/core/config"
	"github.com/riccilnl/linkgenie/internal/core/eventbus"
	"github.com/riccilnl/linkgenie/internal/core/logging"
	"github.com/riccilnl/linkgenie/internal/core/notify"
	"github.com/riccilnl/linkgenie/internal/core/styles"
	"github.com/riccilnl/linkgenie/internal/data/db"
	"github.com/riccilnl/linkgenie/internal/data/stores"
	"github.com/riccilnl/linkgenie/internal/integration/api"
	"github.com/riccilnl/linkgenie/internal/linkgenie"
	"github.com/riccilnl/linkgenie/internal/linkgenie/sweep"
	"github.com/riccilnl/linkgenie/internal/printer"
	"github.com/riccilnl/linkgenie/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// build() falls back to runtime/debug.BuildInfo for `go install` builds.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	var (
		logCloser   func()
		app         = &linkgenie.App{}
		database    *db.DB
		sweepCancel context.CancelFunc
		busCancel   context.CancelFunc
		busDone     chan struct{}
	)

	flags := &commands.Flags{}

	root := &cli.Command{
		Name:      "linkgenie",
		Usage:     "Save bookmarks and let AI fill in the details",
		UsageText: "linkgenie [global options] command [command options]",
		Description: `linkgenie is a command line client for a linkding compatible bookmark server
with AI enhancement.

Run 'linkgenie add <url> --enhance' to save a bookmark and wait for its title
and description to be generated. Run 'linkgenie enhance <id>' to enhance
bookmarks that are already saved.`,
		Version: build(),
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("LINKGENIE_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/linkgenie.log)",
				Sources:     cli.EnvVars("LINKGENIE_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("LINKGENIE_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("LINKGENIE_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "api-url",
				Usage:       "backend base URL (overrides api.base_url)",
				Sources:     cli.EnvVars("LINKGENIE_API_URL"),
				Destination: &flags.APIURL,
			},
			&cli.StringFlag{
				Name:        "token",
				Usage:       "backend API token (overrides api.token)",
				Sources:     cli.EnvVars("LINKGENIE_TOKEN"),
				Destination: &flags.Token,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; use explicit path or default to <datadir>/linkgenie.log
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "linkgenie.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile, logging.ContextHook{})
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			if flags.APIURL != "" {
				cfg.API.BaseURL = flags.APIURL
			}
			if flags.Token != "" {
				cfg.API.Token = flags.Token
			}
			if err := cfg.Validate(); err != nil {
				return ctx, fmt.Errorf("invalid config: %w", err)
			}
			flags.Config = cfg

			// Apply configured theme (validation ensures name is valid)
			if palette, ok := styles.GetPalette(cfg.UI.Theme); ok {
				styles.SetTheme(palette)
			}

			ctx = printer.NewContext(ctx, printer.New(os.Stderr))

			database, err = openDatabase(cfg)
			if err != nil {
				return ctx, err
			}

			kvStore := stores.NewKVStore(database)
			notifications := notify.NewBus(
				stores.NewNotifyStore(database, cfg.Notifications.Retention),
				logging.Component("notify"),
			)

			bus := eventbus.New(256)
			eventbus.RegisterDebugLogger(bus, logging.Component("eventbus"))
			eventbus.NewNotificationRouter(bus).Register()

			busCtx, cancelBus := context.WithCancel(context.WithoutCancel(ctx))
			busCancel = cancelBus
			busDone = make(chan struct{})
			go func() {
				defer close(busDone)
				bus.Start(busCtx)
			}()
			linkgenie.PersistNotifications(context.WithoutCancel(ctx), bus, notifications)

			client, err := api.New(api.Options{
				BaseURL:   cfg.API.BaseURL,
				Token:     cfg.API.Token,
				Timeout:   cfg.API.Timeout,
				RateLimit: cfg.API.RateLimit,
				Burst:     cfg.API.Burst,
				UserAgent: "linkgenie/" + version,
			}, logging.Component("api"))
			if err != nil {
				return ctx, fmt.Errorf("create api client: %w", err)
			}

			// Start background KV sweep goroutine
			sweepCtx, cancel := context.WithCancel(context.Background())
			sweepCancel = cancel
			go sweep.Start(sweepCtx, kvStore, cfg.Cache.SweepInterval)

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*app = *linkgenie.NewApp(cfg, client, database, kvStore, notifications, bus)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if sweepCancel != nil {
				sweepCancel()
			}

			// Drain queued events so notifications are persisted before the
			// database closes.
			if busCancel != nil {
				busCancel()
				<-busDone
			}

			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	root = commands.NewAddCmd(flags, app).Register(root)
	root = commands.NewLsCmd(flags, app).Register(root)
	root = commands.NewGetCmd(flags, app).Register(root)
	root = commands.NewDeleteCmd(flags, app).Register(root)
	root = commands.NewFoldersCmd(flags, app).Register(root)
	root = commands.NewExportCmd(flags, app).Register(root)
	root = commands.NewTagsCmd(flags, app).Register(root)
	root = commands.NewEnhanceCmd(flags, app).Register(root)
	root = commands.NewWorkflowCmd(flags, app).Register(root)
	root = commands.NewNotificationsCmd(flags, app).Register(root)
	root = commands.NewCacheCmd(flags, app).Register(root)
	root = commands.NewDoctorCmd(flags, app).Register(root)
	root = commands.NewConfigCmd(flags).Register(root)

	exitCode := 0
	runErr := root.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	stop()
	os.Exit(exitCode)
}

// openDatabase opens the cache database, moving a corrupted file aside and
// starting fresh when needed.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	opts := db.OpenOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		BusyTimeout:  cfg.Database.BusyTimeout,
	}

	database, err := db.Open(cfg.DataDir, opts)
	if err == nil {
		return database, nil
	}
	if !stores.IsCorruptionError(err) {
		return nil, fmt.Errorf("open database: %w", err)
	}

	backup, rerr := stores.RecoverFromCorruption(cfg.DataDir)
	if rerr != nil {
		return nil, fmt.Errorf("open database: %w", errors.Join(err, rerr))
	}
	log.Warn().Err(err).Str("backup", backup).Msg("database corrupted, starting with an empty cache")

	database, err = db.Open(cfg.DataDir, opts)
	if err != nil {
		return nil, fmt.Errorf("open database after recovery: %w", err)
	}
	return database, nil
}
