package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/in-nis/lessonboard/internal/config"
	"github.com/in-nis/lessonboard/internal/db"
	"github.com/in-nis/lessonboard/internal/pipeline"
	"github.com/in-nis/lessonboard/internal/processor"
	"github.com/in-nis/lessonboard/internal/storage"
)

// App holds the collaborators shared by the server and the CLI.
type App struct {
	Config     *config.Config
	Enrichment config.Enrichment
	Logger     *zap.Logger

	Files     *storage.FileStore
	Store     *db.Store
	Options   pipeline.Options
	Processor *processor.Processor
}

func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	enrichment, err := config.LoadEnrichment(cfg.EnrichmentFile)
	if err != nil {
		return nil, err
	}

	files, err := storage.NewFileStore(cfg.StorageRoot)
	if err != nil {
		return nil, err
	}

	writer, err := buildWriter(cfg, files)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:     cfg,
		Enrichment: enrichment,
		Logger:     logger,
		Files:      files,
	}

	opts := pipeline.Options{
		Reader:            files,
		Writer:            writer,
		Logger:            logger,
		InputBucket:       cfg.InputBucket,
		WebsiteBucket:     cfg.WebsiteBucket,
		ScheduleKey:       cfg.ScheduleKey,
		PrivateGroupTypes: enrichment.Orders.PrivateGroupTypes,
		DefaultInstructor: enrichment.Instructor(),
		RefreshSeconds:    enrichment.Display.RefreshIntervalSeconds,
		Location:          cfg.Location(),
	}

	if cfg.DBUrl != "" {
		store, err := db.InitDB(cfg.DBUrl, logger)
		if err != nil {
			return nil, err
		}
		a.Store = store
		opts.Sink = store
	} else {
		logger.Warn("DATABASE_URL not set, schedules will not be stored")
	}

	a.Options = opts
	a.Processor = processor.New(opts, cfg.MaxParallelRuns)
	return a, nil
}

// buildWriter publishes to the SFTP host, when configured, and then to the
// local website bucket. The local copy is written last so a failed upload
// leaves the locally served schedule untouched.
func buildWriter(cfg *config.Config, files *storage.FileStore) (storage.Writer, error) {
	var targets []storage.Writer

	if cfg.SFTPHost != "" {
		sw, err := storage.NewSFTPWriter(storage.SFTPConfig{
			Host:      cfg.SFTPHost,
			Port:      cfg.SFTPPort,
			User:      cfg.SFTPUser,
			Pass:      cfg.SFTPPass,
			RemoteDir: cfg.SFTPDir,
		})
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		targets = append(targets, sw)
	}
	targets = append(targets, files)

	writers := make(storage.MultiWriter, 0, len(targets))
	for _, t := range targets {
		if cfg.PublishBrotli {
			t = storage.NewBrotliWriter(t)
		}
		writers = append(writers, t)
	}
	return writers, nil
}

func (a *App) Close() {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warn("closing database", zap.Error(err))
		}
	}
}
