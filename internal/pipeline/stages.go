package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/in-nis/lessonboard/internal/excel"
	"github.com/in-nis/lessonboard/internal/instructors"
	"github.com/in-nis/lessonboard/internal/merge"
	"github.com/in-nis/lessonboard/internal/models"
	"github.com/in-nis/lessonboard/internal/orders"
	"github.com/in-nis/lessonboard/internal/output"
	"github.com/in-nis/lessonboard/internal/privacy"
	"github.com/in-nis/lessonboard/internal/storage"
	"github.com/in-nis/lessonboard/internal/validate"
)

const (
	OrdersPrefix      = "orders/"
	InstructorsPrefix = "instructors/"
	ProfilesKey       = "instructors/profiles.json"
	RosterPrefix      = "instructors/roster-"

	// RunTimestampLayout versions every stored item of a run.
	RunTimestampLayout = "2006-01-02T15:04:05Z"
)

// Sink persists a finished run for auditing. Writes are keyed by the run
// timestamp, so a redelivered run does not duplicate items.
type Sink interface {
	SaveSchedule(ctx context.Context, run models.ScheduleRun) (int, error)
}

// Options wires the stages to their collaborators.
type Options struct {
	Reader storage.Reader
	Writer storage.Writer
	// Sink is optional; without it the storage stage is left out.
	Sink   Sink
	Logger *zap.Logger

	InputBucket   string
	WebsiteBucket string
	ScheduleKey   string

	PrivateGroupTypes []string
	DefaultInstructor models.Instructor
	RefreshSeconds    int
	// Location is the zone "now" is read in when partitioning. Nil means UTC.
	Location *time.Location
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// DefaultStages returns the full run: parse, merge, validate, redact, render,
// store and finally publish.
func DefaultStages(o Options) []Stage {
	stages := []Stage{
		ParseOrders(o),
		ParseInstructors(o),
		Merge(o),
		Validate(o),
		Privacy(),
		Output(o),
	}
	if o.Sink != nil {
		stages = append(stages, Store(o))
	}
	return append(stages, Publish(o))
}

// ParseOrders loads the orders export named by the trigger, or the latest
// one in the input bucket when the trigger is not an orders file.
func ParseOrders(o Options) Stage {
	const name = "parse_orders"
	return Stage{Name: name, Run: func(ctx context.Context, pc *Context) error {
		bucket, key := pc.Trigger.Bucket, pc.Trigger.Key
		if !strings.HasPrefix(key, OrdersPrefix) {
			bucket = o.InputBucket
			latest, err := latestKey(ctx, o.Reader, bucket, OrdersPrefix)
			if err != nil {
				return Fail(name, "list orders", err)
			}
			if latest == "" {
				return Fail(name, "no orders file available", storage.ErrNotFound)
			}
			key = latest
		}

		data, err := o.Reader.Get(ctx, bucket, key)
		if err != nil {
			return Fail(name, fmt.Sprintf("read %s", key), err)
		}

		opts := orders.Options{PrivateGroupTypes: o.PrivateGroupTypes}
		var res orders.Result
		if strings.EqualFold(path.Ext(key), ".xlsx") {
			res, err = excel.ParseOrders(data, opts, o.logger())
			res.Encoding = "xlsx"
		} else {
			res, err = orders.ParseTSV(data, opts)
		}
		if err != nil {
			return Fail(name, fmt.Sprintf("parse %s: %v", key, err), err)
		}

		pc.Raw.Orders, pc.Raw.OrdersKey = data, key
		pc.Lessons = res.Lessons

		md := &pc.Metadata
		md.DataSources["orders"] = key
		md.Encoding = res.Encoding
		md.RecordsTotal = res.Rows
		md.RecordsFiltered += res.Filtered
		for reason, n := range res.Reasons {
			md.FilterReasons[reason] += n
		}
		md.LessonsParsed = len(res.Lessons)

		o.logger().Info("parsed orders",
			zap.String("key", key),
			zap.String("encoding", res.Encoding),
			zap.Int("rows", res.Rows),
			zap.Int("filtered", res.Filtered),
			zap.Int("lessons", len(res.Lessons)))
		return nil
	}}
}

// ParseInstructors loads the roster and profiles. An instructor file that
// triggered the run is used as is; anything else falls back to
// instructors/profiles.json and the newest instructors/roster-* file.
// Missing files leave every lesson on the default instructor.
func ParseInstructors(o Options) Stage {
	const name = "parse_instructors"
	return Stage{Name: name, Run: func(ctx context.Context, pc *Context) error {
		log := o.logger()

		if key := pc.Trigger.Key; strings.HasPrefix(key, InstructorsPrefix) {
			base := path.Base(key)
			switch {
			case strings.Contains(base, "roster"):
				data, err := o.Reader.Get(ctx, pc.Trigger.Bucket, key)
				if err != nil {
					return Fail(name, fmt.Sprintf("read %s", key), err)
				}
				pc.Raw.Roster, pc.Raw.RosterKey = data, key
			case strings.Contains(base, "profiles"):
				data, err := o.Reader.Get(ctx, pc.Trigger.Bucket, key)
				if err != nil {
					return Fail(name, fmt.Sprintf("read %s", key), err)
				}
				pc.Raw.Profiles, pc.Raw.ProfilesKey = data, key
			default:
				log.Warn("unrecognized instructor file", zap.String("key", key))
			}
		}

		if pc.Raw.ProfilesKey == "" {
			data, err := getOptional(ctx, o.Reader, o.InputBucket, ProfilesKey)
			if err != nil {
				return Fail(name, "read profiles", err)
			}
			if data == nil {
				log.Warn("instructor profiles not found", zap.String("key", ProfilesKey))
			} else {
				pc.Raw.Profiles, pc.Raw.ProfilesKey = data, ProfilesKey
			}
		}

		if pc.Raw.RosterKey == "" {
			key, err := latestKey(ctx, o.Reader, o.InputBucket, RosterPrefix)
			if err != nil {
				return Fail(name, "list rosters", err)
			}
			data, err := getOptional(ctx, o.Reader, o.InputBucket, key)
			if err != nil {
				return Fail(name, "read roster", err)
			}
			if data == nil {
				log.Warn("instructor roster not found")
			} else {
				pc.Raw.Roster, pc.Raw.RosterKey = data, key
			}
		}

		if pc.Raw.Roster != nil {
			roster, err := instructors.ParseRoster(pc.Raw.Roster)
			if err != nil {
				return Fail(name, fmt.Sprintf("invalid JSON in %s", pc.Raw.RosterKey), err)
			}
			pc.Roster = roster
			pc.Metadata.DataSources["roster"] = pc.Raw.RosterKey
		}
		if pc.Raw.Profiles != nil {
			profiles, err := instructors.ParseProfiles(pc.Raw.Profiles)
			if err != nil {
				return Fail(name, fmt.Sprintf("invalid JSON in %s", pc.Raw.ProfilesKey), err)
			}
			pc.Profiles = profiles
			pc.Metadata.DataSources["profiles"] = pc.Raw.ProfilesKey
		}

		log.Info("loaded instructors",
			zap.Int("assignments", len(pc.Roster.Assignments)),
			zap.Int("profiles", len(pc.Profiles)))
		return nil
	}}
}

func Merge(o Options) Stage {
	const name = "merge"
	return Stage{Name: name, Run: func(_ context.Context, pc *Context) error {
		m := merge.New(instructors.NewResolver(pc.Roster, pc.Profiles), o.DefaultInstructor)
		merged, stats, err := m.Merge(pc.Lessons)
		if err != nil {
			return Fail(name, "merge lessons", err)
		}
		pc.Merged = merged
		pc.Metadata.Assigned = stats.Assigned
		pc.Metadata.Defaulted = stats.Defaulted

		o.logger().Info("merged instructors",
			zap.Int("assigned", stats.Assigned),
			zap.Int("defaulted", stats.Defaulted))
		return nil
	}}
}

func Validate(o Options) Stage {
	return Stage{Name: "validate", Run: func(_ context.Context, pc *Context) error {
		valid, report := validate.Filter(pc.Merged, o.logger())
		pc.Validated = valid

		md := &pc.Metadata
		md.LessonsInvalid = report.Filtered
		md.RecordsFiltered += report.Filtered
		for reason, n := range report.Reasons {
			md.InvalidReasons[reason] += n
			md.FilterReasons[reason] += n
		}
		return nil
	}}
}

func Privacy() Stage {
	return Stage{Name: "privacy", Run: func(_ context.Context, pc *Context) error {
		pc.Redacted = privacy.Redact(pc.Validated)
		return nil
	}}
}

// Output renders the schedule document. Nothing is written here.
func Output(o Options) Stage {
	return Stage{Name: "output", Run: func(_ context.Context, pc *Context) error {
		now := pc.Now
		if o.Location != nil {
			now = now.In(o.Location)
		} else {
			now = now.UTC()
		}

		doc := output.Build(pc.Redacted, now, pc.Metadata.DataSources, o.RefreshSeconds)
		pc.Document = &doc
		pc.Metadata.CurrentCount = len(doc.CurrentLessons)
		pc.Metadata.UpcomingCount = len(doc.UpcomingLessons)

		o.logger().Info("built schedule",
			zap.String("date", doc.Date),
			zap.Int("current", len(doc.CurrentLessons)),
			zap.Int("upcoming", len(doc.UpcomingLessons)))
		return nil
	}}
}

// Store hands the redacted lessons to the audit sink.
func Store(o Options) Stage {
	const name = "storage"
	return Stage{Name: name, Run: func(ctx context.Context, pc *Context) error {
		if len(pc.Redacted) == 0 {
			o.logger().Info("no lessons to store")
			return nil
		}
		n, err := o.Sink.SaveSchedule(ctx, models.ScheduleRun{
			RunID:           pc.RunID,
			GeneratedAt:     pc.Now.UTC().Format(RunTimestampLayout),
			Lessons:         pc.Redacted,
			RecordsFiltered: pc.Metadata.RecordsFiltered,
			DataSources:     pc.Metadata.DataSources,
		})
		if err != nil {
			return Fail(name, "failed to store data", err)
		}
		pc.Metadata.LessonsStored = n
		return nil
	}}
}

// Publish writes the document. It must stay the last stage so a failed run
// never replaces the published schedule.
func Publish(o Options) Stage {
	const name = "publish"
	return Stage{Name: name, Run: func(ctx context.Context, pc *Context) error {
		if pc.Document == nil {
			return Fail(name, "no document to publish", nil)
		}
		body, err := EncodeDocument(*pc.Document)
		if err != nil {
			return Fail(name, "encode schedule", err)
		}
		if err := o.Writer.Put(ctx, o.WebsiteBucket, o.ScheduleKey, body, storage.JSONOptions); err != nil {
			return Fail(name, fmt.Sprintf("write %s/%s", o.WebsiteBucket, o.ScheduleKey), err)
		}
		pc.Metadata.Published = append(pc.Metadata.Published, o.WebsiteBucket+"/"+o.ScheduleKey)

		o.logger().Info("published schedule",
			zap.String("bucket", o.WebsiteBucket),
			zap.String("key", o.ScheduleKey),
			zap.Int("bytes", len(body)))
		return nil
	}}
}

// EncodeDocument renders the document as indented JSON without HTML escaping.
func EncodeDocument(doc models.ScheduleDocument) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func latestKey(ctx context.Context, r storage.Reader, bucket, prefix string) (string, error) {
	keys, err := r.List(ctx, bucket, prefix)
	if err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return "", nil
	}
	return keys[len(keys)-1], nil
}

// getOptional returns nil data for an empty key or a missing object.
func getOptional(ctx context.Context, r storage.Reader, bucket, key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	data, err := r.Get(ctx, bucket, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return data, err
}
