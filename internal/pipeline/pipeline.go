package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/in-nis/lessonboard/internal/instructors"
	"github.com/in-nis/lessonboard/internal/models"
)

// Trigger names the object that caused a run.
type Trigger struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// Raw holds the input bytes loaded for a run.
type Raw struct {
	Orders      []byte
	OrdersKey   string
	Roster      []byte
	RosterKey   string
	Profiles    []byte
	ProfilesKey string
}

// Metadata collects diagnostics as the run progresses.
type Metadata struct {
	DataSources     map[string]string
	Encoding        string
	RecordsTotal    int
	RecordsFiltered int
	FilterReasons   map[string]int
	LessonsParsed   int
	Assigned        int
	Defaulted       int
	LessonsInvalid  int
	InvalidReasons  map[string]int
	CurrentCount    int
	UpcomingCount   int
	LessonsStored   int
	Published       []string
}

// Context is owned by exactly one run. Each stage reads the fields filled by
// the stages before it and fills its own.
type Context struct {
	RunID   string
	Trigger Trigger
	Now     time.Time

	Raw       Raw
	Roster    instructors.Roster
	Profiles  instructors.Profiles
	Lessons   []models.Lesson
	Merged    []models.MergedLesson
	Validated []models.ValidatedLesson
	Redacted  []models.RedactedLesson
	Document  *models.ScheduleDocument

	Metadata Metadata
}

func NewContext(runID string, trigger Trigger, now time.Time) *Context {
	return &Context{
		RunID:   runID,
		Trigger: trigger,
		Now:     now,
		Metadata: Metadata{
			DataSources:    map[string]string{},
			FilterReasons:  map[string]int{},
			InvalidReasons: map[string]int{},
		},
	}
}

// Stage is one step of a run.
type Stage struct {
	Name string
	Run  func(ctx context.Context, pc *Context) error
}

// StageError is the only error shape Runner.Run returns.
type StageError struct {
	Stage   string
	Message string
	Err     error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline: stage %s: %s", e.Stage, e.Message)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Fail builds a StageError carrying a message of its own.
func Fail(stage, message string, err error) *StageError {
	return &StageError{Stage: stage, Message: message, Err: err}
}

type Runner struct {
	stages []Stage
	logger *zap.Logger
}

func NewRunner(logger *zap.Logger, stages ...Stage) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{stages: stages, logger: logger}
}

// Stages returns the stage names in execution order.
func (r *Runner) Stages() []string {
	names := make([]string, len(r.stages))
	for i, s := range r.stages {
		names[i] = s.Name
	}
	return names
}

// Run executes every stage in order and stops at the first failure.
func (r *Runner) Run(ctx context.Context, pc *Context) error {
	log := r.logger.With(zap.String("run_id", pc.RunID), zap.String("key", pc.Trigger.Key))
	log.Info("pipeline started", zap.Int("stages", len(r.stages)))

	for _, s := range r.stages {
		if err := ctx.Err(); err != nil {
			return Fail(s.Name, "run canceled", err)
		}

		started := time.Now()
		if err := r.runStage(ctx, s, pc); err != nil {
			log.Error("stage failed", zap.String("stage", s.Name), zap.Error(err))
			return err
		}
		log.Debug("stage completed", zap.String("stage", s.Name), zap.Duration("took", time.Since(started)))
	}

	log.Info("pipeline completed")
	return nil
}

func (r *Runner) runStage(ctx context.Context, s Stage, pc *Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = Fail(s.Name, fmt.Sprintf("panic: %v", p), fmt.Errorf("panic: %v", p))
		}
	}()

	if err := s.Run(ctx, pc); err != nil {
		var se *StageError
		if errors.As(err, &se) {
			return se
		}
		return Fail(s.Name, err.Error(), err)
	}
	return nil
}
