package models

import "time"

// InstructorView is the public shape of an instructor.
type InstructorView struct {
	ID    *string `json:"id"`
	Name  string  `json:"name"`
	Photo string  `json:"photo"`
}

// LessonView is one lesson as rendered into schedule.json.
type LessonView struct {
	Start            string          `json:"start"`
	End              string          `json:"end"`
	LevelKey         string          `json:"level_key"`
	LanguageKey      string          `json:"language_key"`
	LocationKey      string          `json:"location_key"`
	GroupTypeKey     string          `json:"group_type_key"`
	Sponsor          string          `json:"sponsor"`
	Participants     []string        `json:"participants"`
	People           []Person        `json:"people"`
	ParticipantCount int             `json:"participant_count"`
	Instructor       *InstructorView `json:"instructor"`
	BookingID        *string         `json:"booking_id"`
	Notes            *string         `json:"notes"`
}

// ScheduleDocument is the single artifact published per run.
type ScheduleDocument struct {
	GeneratedAt      string                  `json:"generated_at"`
	Date             string                  `json:"date"`
	DataSources      map[string]string       `json:"data_sources"`
	CurrentLessons   []LessonView            `json:"current_lessons"`
	UpcomingLessons  []LessonView            `json:"upcoming_lessons"`
	AllLessonsByDate map[string][]LessonView `json:"all_lessons_by_date"`
	RefreshSeconds   int                     `json:"refresh_interval_seconds,omitempty"`
}

// ScheduleItem is a versioned row of the audit store. Every run writes one
// META item per date plus one LESSON item per lesson, all keyed by the run
// timestamp so earlier runs are preserved.
type ScheduleItem struct {
	PK string `gorm:"primaryKey;size:64"`
	SK string `gorm:"primaryKey;size:160"`

	Kind        string `gorm:"size:8;index"` // META or LESSON
	Date        string `gorm:"size:10;index"`
	RunID       string `gorm:"size:36"`
	GeneratedAt string `gorm:"size:20;index"`

	// META
	LessonCount     int
	RecordsFiltered int
	DataSources     map[string]string `gorm:"serializer:json"`

	// LESSON
	LessonID        string `gorm:"size:16"`
	BookingID       string
	Start           string `gorm:"size:5"`
	End             string `gorm:"size:5"`
	Level           string
	GroupType       string
	Location        string
	PeopleCount     int
	People          []Person `gorm:"serializer:json"`
	InstructorID    *string
	InstructorName  string
	InstructorPhoto string
	Notes           *string

	CreatedAt time.Time
}

// ScheduleRun is what one pipeline run hands to the audit store.
type ScheduleRun struct {
	RunID           string
	GeneratedAt     string // UTC, 2006-01-02T15:04:05Z
	Lessons         []RedactedLesson
	RecordsFiltered int
	DataSources     map[string]string
}
