package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/alexanderramin/portfolio/internal/backup"
	"github.com/alexanderramin/portfolio/internal/cli"
	"github.com/alexanderramin/portfolio/internal/cli/formatter"
	"github.com/alexanderramin/portfolio/internal/config"
	"github.com/alexanderramin/portfolio/internal/db"
	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/alexanderramin/portfolio/internal/effort"
	"github.com/alexanderramin/portfolio/internal/notify"
	"github.com/alexanderramin/portfolio/internal/outbox"
	"github.com/alexanderramin/portfolio/internal/repository"
	"github.com/alexanderramin/portfolio/internal/service"
	"github.com/alexanderramin/portfolio/internal/store"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	settings, err := config.LoadSettings(os.Getenv("PORTFOLIO_SETTINGS"))
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: settings.SlogLevel()}))
	slog.SetDefault(logger)

	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		formatter.DisableColor()
	}

	// Open database
	database, err := db.OpenDB(settings.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	userRepo := repository.NewSQLiteUserRepo(database)
	initiativeRepo := repository.NewSQLiteInitiativeRepo(database)
	changeRepo := repository.NewSQLiteChangeRepo(database)
	configRepo := repository.NewSQLiteConfigRepo(database)
	notificationRepo := repository.NewSQLiteNotificationRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	// Initiatives live in memory; the syncer writes snapshots back.
	syncer := store.NewSyncer(initiativeRepo, logger)
	syncer.Start(ctx)
	defer syncer.Close()

	items, err := initiativeRepo.List(ctx, true)
	if err != nil {
		return fmt.Errorf("loading initiatives: %w", err)
	}
	st := store.New(store.WithPublisher(syncer))
	st.Load(items)

	changeLog, err := service.LoadChangeLog(ctx, changeRepo)
	if err != nil {
		return fmt.Errorf("loading change log: %w", err)
	}
	changeLog.Subscribe(service.PersistChanges(changeRepo, logger))

	var observers []service.UseCaseObserver
	if settings.LogUseCases {
		observers = append(observers, service.NewSlogUseCaseObserver(logger.With("component", "service")))
	}

	initial, err := loadAppConfig(ctx, configRepo, settings.AppConfigFile, logger)
	if err != nil {
		return err
	}
	cfg := service.NewConfigService(initial, configRepo, logger, observers...)
	users := service.NewUserService(userRepo, cfg, logger, observers...)
	notifications := service.NewNotificationService(notificationRepo)

	var dispatcher notify.Dispatcher = notifications
	var ob *outbox.RedisOutbox
	if settings.Redis.URL != "" {
		ob, err = outbox.New(ctx, settings.Redis.URL)
		if err != nil {
			logger.Warn("outbox_unavailable", "error", err)
		} else {
			defer ob.Close()
			dispatcher = notify.Multi(notifications, ob)
		}
	}

	mutationOpts := []service.MutationOption{
		service.WithDispatcher(dispatcher),
		service.WithUserDirectory(users),
		service.WithPurgeUnitOfWork(uow),
		service.WithLogger(logger),
		service.WithObserver(observers...),
	}

	app := &cli.App{
		Mutations:      service.NewMutationService(st, changeLog, cfg, mutationOpts...),
		Users:          users,
		Config:         cfg,
		Notifications:  notifications,
		Log:            changeLog,
		Converter:      effort.Converter{DaysPerWeek: settings.DaysPerWeek},
		BackupSchedule: settings.Backup.Schedule,
		Outbox:         ob,
		DefaultActor:   settings.Actor,
	}

	if settings.Backup.Enabled() {
		runner, err := newBackupRunner(ctx, settings, uow, syncer, logger)
		if err != nil {
			logger.Warn("backup_unavailable", "error", err)
		} else {
			app.Backup = runner
		}
	}

	// Execute root command
	rootCmd := cli.NewRootCmd(app)
	return rootCmd.ExecuteContext(ctx)
}

// loadAppConfig prefers the stored configuration, then the YAML file named
// in settings, then the built-in defaults.
func loadAppConfig(ctx context.Context, repo repository.ConfigRepo, path string, logger *slog.Logger) (domain.AppConfig, error) {
	stored, err := repo.Get(ctx)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.AppConfig{}, fmt.Errorf("loading app config: %w", err)
	}
	if path == "" {
		return domain.DefaultAppConfig(), nil
	}
	cfg, warnings, err := config.LoadAppConfig(path)
	if err != nil {
		return domain.AppConfig{}, err
	}
	for _, w := range warnings {
		logger.Warn("app_config_entry_ignored", "file", path, "detail", w)
	}
	return cfg, nil
}

// newBackupRunner flushes pending snapshot writes before every export so a
// backup never misses the latest edits.
func newBackupRunner(ctx context.Context, settings config.Settings, reader db.SnapshotReader, syncer *store.Syncer, logger *slog.Logger) (*backup.Runner, error) {
	b := settings.Backup
	objects, err := backup.NewMinioStore(backup.MinioOptions{
		Endpoint:  b.Endpoint,
		AccessKey: b.AccessKey,
		SecretKey: b.SecretKey,
		Bucket:    b.Bucket,
		UseTLS:    b.UseTLS,
	})
	if err != nil {
		return nil, err
	}
	if err := objects.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	reporter := settings.Actor
	if reporter == "" {
		reporter = "cli"
	}
	exporter := backup.NewDBExporter(reader)
	flushed := backup.ExporterFunc(func(ctx context.Context) ([]backup.File, error) {
		syncer.Flush(ctx)
		return exporter.Export(ctx)
	})
	return backup.NewRunner(objects, flushed, reporter, backup.WithLogger(logger)), nil
}
