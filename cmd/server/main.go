package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/in-nis/lessonboard/internal/api"
	"github.com/in-nis/lessonboard/internal/app"
	"github.com/in-nis/lessonboard/internal/config"
	"github.com/in-nis/lessonboard/internal/cron"
	"github.com/in-nis/lessonboard/internal/logging"
	"github.com/in-nis/lessonboard/internal/pipeline"
	"github.com/in-nis/lessonboard/internal/watch"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, using system env")
	}

	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to start", zap.Error(err))
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handle := func(ctx context.Context, triggers []pipeline.Trigger) {
		resp := a.Processor.Handle(ctx, triggers)
		logger.Info("processing complete", zap.Any("results", resp.Results))
	}

	if cfg.WatchInput {
		w, err := watch.New(cfg.StorageRoot, cfg.InputBucket, handle, logger)
		if err != nil {
			logger.Fatal("failed to create input watcher", zap.Error(err))
		}
		if err := w.Start(ctx); err != nil {
			logger.Fatal("failed to watch input", zap.Error(err))
		}
		defer w.Stop()
	}

	if cfg.OrdersURL != "" {
		job := &cron.FetchJob{
			Fetcher:  cron.NewFetcher(cfg.OrdersURL, a.Files, cfg.InputBucket, logger),
			Window:   cron.Window{Start: cfg.FetchWindowStart, End: cfg.FetchWindowEnd},
			Location: cfg.Location(),
			Logger:   logger,
		}
		// the watcher already picks up fetched files
		if !cfg.WatchInput {
			job.OnFetched = func(ctx context.Context, t pipeline.Trigger) {
				handle(ctx, []pipeline.Trigger{t})
			}
		}
		c, err := cron.StartJobs(cfg.FetchSchedule, job)
		if err != nil {
			logger.Fatal("failed to schedule fetch job", zap.Error(err))
		}
		defer c.Stop()
	} else {
		logger.Warn("ORDERS_URL not configured, fetch job disabled")
	}

	r := api.SetupRouter(&api.Handler{
		Reader:        a.Files,
		Store:         storeOrNil(a),
		Runner:        a.Processor,
		Logger:        logger,
		InputBucket:   cfg.InputBucket,
		WebsiteBucket: cfg.WebsiteBucket,
		ScheduleKey:   cfg.ScheduleKey,
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		logger.Info("Server running", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
}

// storeOrNil keeps a nil *db.Store from becoming a non-nil interface.
func storeOrNil(a *app.App) api.LessonStore {
	if a.Store == nil {
		return nil
	}
	return a.Store
}
