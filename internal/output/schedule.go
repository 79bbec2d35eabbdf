package output

import (
	"sort"
	"strings"
	"time"

	"github.com/in-nis/lessonboard/internal/models"
)

const (
	// DisplayDateLayout is the date format used by the orders export.
	DisplayDateLayout = "02.01.2006"
	// DocumentDateLayout is the date format of ScheduleDocument.Date.
	DocumentDateLayout = "2006-01-02"
	clockLayout        = "15:04"
)

// Class is the time-window bucket a lesson falls into.
type Class int

const (
	Past Class = iota
	Current
	Upcoming
)

func (c Class) String() string {
	switch c {
	case Current:
		return "current"
	case Upcoming:
		return "upcoming"
	default:
		return "past"
	}
}

// Classify compares zero-padded HH:MM strings. A lesson is current while
// start <= now < end and upcoming while start > now. A lesson whose end is
// not after its start is never current.
func Classify(start, end, now string) Class {
	switch {
	case start > now:
		return Upcoming
	case start <= now && now < end:
		return Current
	default:
		return Past
	}
}

// Build renders the schedule document for the day of now. Lessons must
// already be validated; the comparisons rely on the HH:MM format.
func Build(lessons []models.RedactedLesson, now time.Time, sources map[string]string, refreshSeconds int) models.ScheduleDocument {
	today := now.Format(DisplayDateLayout)
	clock := now.Format(clockLayout)

	current := []models.RedactedLesson{}
	upcoming := []models.RedactedLesson{}
	for _, l := range lessons {
		if l.Date != today {
			continue
		}
		switch Classify(l.Start, l.End, clock) {
		case Current:
			current = append(current, l)
		case Upcoming:
			upcoming = append(upcoming, l)
		}
	}
	sortByStart(current)
	sortByStart(upcoming)

	ds := make(map[string]string, len(sources))
	for k, v := range sources {
		ds[k] = v
	}

	return models.ScheduleDocument{
		GeneratedAt:      now.UTC().Format(time.RFC3339),
		Date:             now.Format(DocumentDateLayout),
		DataSources:      ds,
		CurrentLessons:   views(current),
		UpcomingLessons:  views(upcoming),
		AllLessonsByDate: ByDate(lessons),
		RefreshSeconds:   refreshSeconds,
	}
}

// ByDate groups every lesson by its DD.MM.YYYY date, each list sorted by start.
func ByDate(lessons []models.RedactedLesson) map[string][]models.LessonView {
	grouped := map[string][]models.RedactedLesson{}
	for _, l := range lessons {
		if l.Date == "" {
			continue
		}
		grouped[l.Date] = append(grouped[l.Date], l)
	}

	out := make(map[string][]models.LessonView, len(grouped))
	for date, ls := range grouped {
		sortByStart(ls)
		out[date] = views(ls)
	}
	return out
}

func sortByStart(ls []models.RedactedLesson) {
	sort.SliceStable(ls, func(i, j int) bool { return ls[i].Start < ls[j].Start })
}

func views(ls []models.RedactedLesson) []models.LessonView {
	out := make([]models.LessonView, 0, len(ls))
	for _, l := range ls {
		out = append(out, View(l))
	}
	return out
}

// View converts a redacted lesson into its published JSON shape.
func View(l models.RedactedLesson) models.LessonView {
	participants := make([]string, 0, len(l.People))
	people := make([]models.Person, len(l.People))
	copy(people, l.People)

	var langs []string
	seen := map[string]bool{}
	for _, p := range l.People {
		participants = append(participants, p.Name)
		if p.Language != "" && !seen[p.Language] {
			seen[p.Language] = true
			langs = append(langs, p.Language)
		}
	}

	v := models.LessonView{
		Start:            l.Start,
		End:              l.End,
		LevelKey:         l.Level,
		LanguageKey:      strings.Join(langs, ","),
		LocationKey:      l.Location,
		GroupTypeKey:     l.GroupType,
		Sponsor:          l.Sponsor,
		Participants:     participants,
		People:           people,
		ParticipantCount: len(people),
		Notes:            l.Notes,
	}
	if l.Instructor.Name != "" {
		v.Instructor = &models.InstructorView{
			ID:    l.Instructor.ID,
			Name:  l.Instructor.Name,
			Photo: l.Instructor.Photo,
		}
	}
	if l.BookingID != "" {
		id := l.BookingID
		v.BookingID = &id
	}
	return v
}
