package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/in-nis/lessonboard/internal/models"
)

const (
	KindMeta   = "META"
	KindLesson = "LESSON"

	// BatchSize caps the rows per INSERT statement.
	BatchSize = 25
)

// Store is the audit trail of published schedules. Every run adds a new
// version per date; nothing is ever updated in place.
type Store struct {
	DB     *gorm.DB
	logger *zap.Logger
}

func InitDB(dsn string, logger *zap.Logger) (*Store, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("db: connect: %w", err)
	}
	return New(gdb, logger)
}

// New migrates the schema on an already opened connection.
func New(gdb *gorm.DB, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := gdb.AutoMigrate(&models.ScheduleItem{}); err != nil {
		return nil, fmt.Errorf("db: migrate: %w", err)
	}
	logger.Info("✅ Database connected and migrated")
	return &Store{DB: gdb, logger: logger}, nil
}

// SaveSchedule stores one META item per lesson date plus one LESSON item per
// lesson and returns how many rows were inserted. Items already present are
// left alone, so redelivering a run is a no-op that reports zero.
func (s *Store) SaveSchedule(ctx context.Context, run models.ScheduleRun) (int, error) {
	items := BuildItems(run)
	if len(items) == 0 {
		return 0, nil
	}

	res := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&items, BatchSize)
	if res.Error != nil {
		return 0, fmt.Errorf("db: save schedule %s: %w", run.GeneratedAt, res.Error)
	}

	// rows skipped on conflict are not counted
	stored := int(res.RowsAffected)
	s.logger.Info("stored schedule",
		zap.String("run_id", run.RunID),
		zap.String("generated_at", run.GeneratedAt),
		zap.Int("items", len(items)),
		zap.Int("inserted", stored))
	return stored, nil
}

// LatestMeta returns the META item of the newest run for a DD.MM.YYYY date.
func (s *Store) LatestMeta(ctx context.Context, date string) (*models.ScheduleItem, error) {
	var meta models.ScheduleItem
	err := s.DB.WithContext(ctx).
		Where("pk = ? AND kind = ?", PartitionKey(date), KindMeta).
		Order("sk DESC").
		First(&meta).Error
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// LatestLessons returns the lessons stored by the newest run for a date,
// ordered by start time. gorm.ErrRecordNotFound means no run covered it.
func (s *Store) LatestLessons(ctx context.Context, date string) ([]models.ScheduleItem, error) {
	meta, err := s.LatestMeta(ctx, date)
	if err != nil {
		return nil, err
	}

	var lessons []models.ScheduleItem
	err = s.DB.WithContext(ctx).
		Where("pk = ? AND kind = ? AND generated_at = ?", meta.PK, KindLesson, meta.GeneratedAt).
		Order("start ASC").Order("sk ASC").
		Find(&lessons).Error
	if err != nil {
		return nil, err
	}
	return lessons, nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func PartitionKey(date string) string {
	return "SCHEDULE#" + date
}

// LessonID derives a stable 16 hex char id. Private lessons with a booking
// are identified by booking and start. Private lessons without one use their
// grouping key, which holds the full sponsor name; abbreviated sponsors are
// not unique within a slot. Group lessons are identified by their slot.
func LessonID(l models.RedactedLesson) string {
	var parts []string
	switch {
	case l.Private && l.BookingID != "":
		parts = []string{l.BookingID, l.Start}
	case l.Private:
		parts = []string{l.Key, l.Start}
	default:
		parts = []string{l.Date, l.Start, l.Level, l.GroupType, l.Location}
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])[:16]
}

// BuildItems lays a run out as rows, dates in ascending order.
func BuildItems(run models.ScheduleRun) []models.ScheduleItem {
	byDate := map[string][]models.RedactedLesson{}
	for _, l := range run.Lessons {
		if l.Date == "" {
			continue
		}
		byDate[l.Date] = append(byDate[l.Date], l)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	var items []models.ScheduleItem
	for _, date := range dates {
		lessons := byDate[date]
		pk := PartitionKey(date)

		items = append(items, models.ScheduleItem{
			PK:              pk,
			SK:              "META#" + run.GeneratedAt,
			Kind:            KindMeta,
			Date:            date,
			RunID:           run.RunID,
			GeneratedAt:     run.GeneratedAt,
			LessonCount:     len(lessons),
			RecordsFiltered: run.RecordsFiltered,
			DataSources:     run.DataSources,
		})

		for _, l := range lessons {
			id := LessonID(l)
			items = append(items, models.ScheduleItem{
				PK:              pk,
				SK:              "LESSON#" + run.GeneratedAt + "#" + id,
				Kind:            KindLesson,
				Date:            date,
				RunID:           run.RunID,
				GeneratedAt:     run.GeneratedAt,
				LessonID:        id,
				BookingID:       l.BookingID,
				Start:           l.Start,
				End:             l.End,
				Level:           l.Level,
				GroupType:       l.GroupType,
				Location:        l.Location,
				PeopleCount:     l.PeopleCount(),
				People:          l.People,
				InstructorID:    l.Instructor.ID,
				InstructorName:  l.Instructor.Name,
				InstructorPhoto: l.Instructor.Photo,
				Notes:           l.Notes,
			})
		}
	}
	return items
}
