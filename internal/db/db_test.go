package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/in-nis/lessonboard/internal/models"
)

func strPtr(s string) *string { return &s }

func lesson(date, start string, private bool, booking string) models.RedactedLesson {
	return models.RedactedLesson{MergedLesson: models.MergedLesson{
		Private:   private,
		BookingID: booking,
		Date:      date,
		Start:     start,
		End:       "11:50",
		Level:     "A1",
		GroupType: "privát",
		Location:  "Stone bar",
		Sponsor:   "Ir.Sc.",
		People:    []models.Person{{Name: "Anna", Language: "de", Sponsor: "Ir.Sc."}},
		Instructor: models.Instructor{
			ID:    strPtr("jan-novak"),
			Name:  "Jan Novák",
			Photo: "assets/instructors/jan-novak.jpg",
		},
	}}
}

func TestLessonID(t *testing.T) {
	a := lesson("28.12.2025", "10:00", true, "b-1")

	id := LessonID(a)
	assert.Len(t, id, 16)
	assert.Regexp(t, `^[0-9a-f]{16}$`, id)
	assert.Equal(t, id, LessonID(a))

	// private with booking ignores the slot details
	moved := a
	moved.Location = "Lift 2"
	assert.Equal(t, id, LessonID(moved))

	later := a
	later.Start = "13:00"
	assert.NotEqual(t, id, LessonID(later))

	group := lesson("28.12.2025", "10:00", false, "b-1")
	otherBooking := lesson("28.12.2025", "10:00", false, "b-9")
	assert.Equal(t, LessonID(group), LessonID(otherBooking))

	p1 := lesson("28.12.2025", "10:00", true, "")
	p1.Key = "private|Iryna Schröder|28.12.2025|2025-12-28T10:00:00+01:00|A1|Stone bar"
	p2 := p1
	p2.Key = "private|Jan Li|28.12.2025|2025-12-28T10:00:00+01:00|A1|Stone bar"
	assert.NotEqual(t, LessonID(p1), LessonID(p2))
}

func privateWithoutBooking(sponsor, abbreviated string) models.RedactedLesson {
	l := lesson("28.12.2025", "09:00", true, "")
	l.Key = "private|" + sponsor + "|28.12.2025|2025-12-28T09:00:00+01:00|A1|Stone bar"
	l.Sponsor = abbreviated
	return l
}

func TestLessonID_SameAbbreviationDifferentSponsors(t *testing.T) {
	a := privateWithoutBooking("Jan Li", "Ja.Li.")
	b := privateWithoutBooking("Jana Lisková", "Ja.Li.")
	assert.NotEqual(t, LessonID(a), LessonID(b))

	items := BuildItems(models.ScheduleRun{
		GeneratedAt: "2025-12-28T08:00:00Z",
		Lessons:     []models.RedactedLesson{a, b},
	})
	require.Len(t, items, 3)
	assert.NotEqual(t, items[1].SK, items[2].SK)
}

func TestBuildItems(t *testing.T) {
	run := models.ScheduleRun{
		RunID:           "run-1",
		GeneratedAt:     "2025-12-28T09:30:00Z",
		RecordsFiltered: 2,
		DataSources:     map[string]string{"orders": "orders/a.tsv"},
		Lessons: []models.RedactedLesson{
			lesson("29.12.2025", "10:00", true, "b-2"),
			lesson("28.12.2025", "10:00", true, "b-1"),
			lesson("28.12.2025", "13:00", false, ""),
			lesson("", "13:00", false, ""),
		},
	}

	items := BuildItems(run)
	require.Len(t, items, 5)

	meta := items[0]
	assert.Equal(t, "SCHEDULE#28.12.2025", meta.PK)
	assert.Equal(t, "META#2025-12-28T09:30:00Z", meta.SK)
	assert.Equal(t, KindMeta, meta.Kind)
	assert.Equal(t, 2, meta.LessonCount)
	assert.Equal(t, 2, meta.RecordsFiltered)
	assert.Equal(t, "orders/a.tsv", meta.DataSources["orders"])

	l := items[1]
	assert.Equal(t, "SCHEDULE#28.12.2025", l.PK)
	assert.Equal(t, "LESSON#2025-12-28T09:30:00Z#"+l.LessonID, l.SK)
	assert.Equal(t, KindLesson, l.Kind)
	assert.Equal(t, "b-1", l.BookingID)
	assert.Equal(t, 1, l.PeopleCount)
	assert.Equal(t, "jan-novak", *l.InstructorID)
	assert.Equal(t, "Jan Novák", l.InstructorName)

	assert.Equal(t, "SCHEDULE#29.12.2025", items[3].PK)
	assert.Equal(t, KindMeta, items[3].Kind)
	assert.Equal(t, 1, items[3].LessonCount)
}

func TestBuildItems_Empty(t *testing.T) {
	assert.Empty(t, BuildItems(models.ScheduleRun{GeneratedAt: "2025-12-28T09:30:00Z"}))
}

func TestBuildItems_UniqueKeys(t *testing.T) {
	run := models.ScheduleRun{
		GeneratedAt: "2025-12-28T09:30:00Z",
		Lessons: []models.RedactedLesson{
			lesson("28.12.2025", "09:00", true, "b-1"),
			lesson("28.12.2025", "11:00", true, "b-1"),
			lesson("28.12.2025", "09:00", false, ""),
		},
	}
	seen := map[string]bool{}
	for _, it := range BuildItems(run) {
		k := it.PK + "/" + it.SK
		assert.False(t, seen[k], k)
		seen[k] = true
	}
}
