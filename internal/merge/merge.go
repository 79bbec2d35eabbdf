package merge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/in-nis/lessonboard/internal/models"
)

var ErrMalformedLesson = errors.New("malformed lesson")

// MergeError reports a lesson that could not be merged.
type MergeError struct {
	Key string
	Err error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merge: lesson %q: %v", e.Key, e.Err)
}

func (e *MergeError) Unwrap() error {
	return e.Err
}

// InstructorLookup resolves a booking id to an instructor.
type InstructorLookup interface {
	Lookup(bookingID string) (models.Instructor, bool)
}

// Stats counts how lessons got their instructor.
type Stats struct {
	Assigned  int
	Defaulted int
}

type Merger struct {
	Lookup   InstructorLookup
	Fallback models.Instructor
}

func New(lookup InstructorLookup, fallback models.Instructor) *Merger {
	return &Merger{Lookup: lookup, Fallback: fallback}
}

// Merge attaches instructors and HH:MM times to every lesson.
func (m *Merger) Merge(lessons []models.Lesson) ([]models.MergedLesson, Stats, error) {
	out := make([]models.MergedLesson, 0, len(lessons))
	var stats Stats

	for _, l := range lessons {
		ml, assigned, err := m.mergeOne(l)
		if err != nil {
			return nil, stats, err
		}
		if assigned {
			stats.Assigned++
		} else {
			stats.Defaulted++
		}
		out = append(out, ml)
	}
	return out, stats, nil
}

func (m *Merger) mergeOne(l models.Lesson) (models.MergedLesson, bool, error) {
	if strings.TrimSpace(l.Key) == "" {
		return models.MergedLesson{}, false, &MergeError{Key: l.Date + " " + l.TimestampStart, Err: fmt.Errorf("%w: empty identity key", ErrMalformedLesson)}
	}

	instructor, assigned := models.Instructor{}, false
	if l.BookingID != "" && m.Lookup != nil {
		instructor, assigned = m.Lookup.Lookup(l.BookingID)
	}
	if !assigned {
		instructor = m.Fallback
	}

	people := make([]models.Person, len(l.People))
	copy(people, l.People)

	return models.MergedLesson{
		Key:        l.Key,
		Private:    l.Private,
		OrderID:    l.OrderID,
		BookingID:  l.BookingID,
		Date:       l.Date,
		Start:      ExtractTime(l.TimestampStart),
		End:        ExtractTime(l.TimestampEnd),
		Level:      l.Level,
		GroupType:  l.GroupType,
		Location:   l.Location,
		Sponsor:    l.Sponsor,
		People:     people,
		Instructor: instructor,
	}, assigned, nil
}

// ExtractTime returns HH:MM from an ISO-8601 timestamp such as
// 2025-12-28T09:00:00+01:00. Values without a T separator pass through.
func ExtractTime(ts string) string {
	i := strings.IndexByte(ts, 'T')
	if i < 0 {
		return ts
	}
	t := ts[i+1:]
	if len(t) > 5 {
		t = t[:5]
	}
	return t
}
