package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/in-nis/lessonboard/internal/pipeline"
)

// Window is a daily HH:MM range, start inclusive and end exclusive. A window
// whose end is before its start spans midnight. The zero Window is always open.
type Window struct {
	Start string
	End   string
}

func (w Window) Contains(t time.Time) bool {
	if w.Start == "" && w.End == "" {
		return true
	}
	clock := t.Format("15:04")
	if w.Start <= w.End {
		return clock >= w.Start && clock < w.End
	}
	return clock >= w.Start || clock < w.End
}

// FetchJob fetches orders while the window is open and hands every new
// snapshot to OnFetched.
type FetchJob struct {
	Fetcher   *Fetcher
	Window    Window
	Location  *time.Location
	Timeout   time.Duration
	OnFetched func(ctx context.Context, t pipeline.Trigger)
	Logger    *zap.Logger

	now func() time.Time
}

func (j *FetchJob) Run() {
	now := time.Now
	if j.now != nil {
		now = j.now
	}
	t := now()
	if j.Location != nil {
		t = t.In(j.Location)
	}
	if !j.Window.Contains(t) {
		j.Logger.Debug("outside fetch window, skipping", zap.String("time", t.Format("15:04")))
		return
	}

	timeout := j.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	j.Logger.Info("Running orders fetch job...")
	key, err := j.Fetcher.Fetch(ctx)
	if err != nil {
		j.Logger.Error("❌ Failed to fetch orders", zap.Error(err))
		return
	}
	if j.OnFetched != nil {
		j.OnFetched(ctx, pipeline.Trigger{Bucket: j.Fetcher.Bucket, Key: key})
	}
}

// StartJobs schedules the fetch job and starts the cron runner. Stop the
// returned cron on shutdown.
func StartJobs(spec string, job *FetchJob) (*cron.Cron, error) {
	if job.Logger == nil {
		job.Logger = zap.NewNop()
	}
	opts := []cron.Option{}
	if job.Location != nil {
		opts = append(opts, cron.WithLocation(job.Location))
	}
	c := cron.New(opts...)

	if _, err := c.AddJob(spec, cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(job)); err != nil {
		return nil, fmt.Errorf("cron: schedule %q: %w", spec, err)
	}
	c.Start()
	job.Logger.Info("fetch job scheduled",
		zap.String("schedule", spec),
		zap.String("window_start", job.Window.Start),
		zap.String("window_end", job.Window.End))
	return c, nil
}
