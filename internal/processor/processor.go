package processor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/in-nis/lessonboard/internal/pipeline"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the outcome of one input file.
type Result struct {
	Key              string `json:"key"`
	Status           string `json:"status"`
	Error            string `json:"error,omitempty"`
	LessonsProcessed int    `json:"lessons_processed"`
	RunID            string `json:"run_id"`
}

// Response summarizes a batch of triggers.
type Response struct {
	Message    string    `json:"message"`
	Results    []Result  `json:"results"`
	FinishedAt time.Time `json:"finished_at"`
}

// Processor runs one isolated pipeline per trigger.
type Processor struct {
	opts   pipeline.Options
	logger *zap.Logger
	limit  int

	// overridable in tests
	now   func() time.Time
	newID func() string

	mu   sync.Mutex
	last *Response
}

func New(opts pipeline.Options, limit int) *Processor {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if limit <= 0 {
		limit = 1
	}
	return &Processor{
		opts:   opts,
		logger: logger,
		limit:  limit,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

// Process runs the full pipeline for a single trigger.
func (p *Processor) Process(ctx context.Context, t pipeline.Trigger) Result {
	pc := pipeline.NewContext(p.newID(), t, p.now())
	runner := pipeline.NewRunner(p.logger, pipeline.DefaultStages(p.opts)...)

	res := Result{Key: t.Key, RunID: pc.RunID}
	if err := runner.Run(ctx, pc); err != nil {
		res.Status = StatusError
		res.Error = err.Error()
		return res
	}
	res.Status = StatusSuccess
	res.LessonsProcessed = len(pc.Redacted)
	return res
}

// Handle processes every trigger, at most limit at a time. A failing file
// never affects its siblings; each gets its own entry in the response.
func (p *Processor) Handle(ctx context.Context, triggers []pipeline.Trigger) Response {
	results := make([]Result, len(triggers))

	var g errgroup.Group
	g.SetLimit(p.limit)
	for i, t := range triggers {
		g.Go(func() error {
			p.logger.Info("processing file", zap.String("bucket", t.Bucket), zap.String("key", t.Key))
			results[i] = p.Process(ctx, t)
			if results[i].Status == StatusError {
				p.logger.Error("processing failed", zap.String("key", t.Key), zap.String("error", results[i].Error))
			}
			return nil
		})
	}
	_ = g.Wait()

	resp := Response{
		Message:    "Processing complete",
		Results:    results,
		FinishedAt: p.now().UTC(),
	}

	p.mu.Lock()
	p.last = &resp
	p.mu.Unlock()
	return resp
}

// Last returns the most recent batch response, if any.
func (p *Processor) Last() (Response, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return Response{}, false
	}
	return *p.last, true
}
