package orders

import (
	"strings"

	"github.com/in-nis/lessonboard/internal/models"
)

// Key returns the lesson identity of a row. Private lessons are keyed by
// sponsor so one sponsor can hold several bookings; group lessons collapse
// every participant of the slot regardless of sponsor.
func Key(rec RawRecord, opts Options) (string, bool) {
	date := rec.get(ColDate)
	start := rec.get(ColStart)
	level := rec.get(ColLevel)
	groupType := rec.get(ColGroupType)
	location := rec.get(ColLocation)

	if opts.isPrivate(groupType) {
		return strings.Join([]string{"private", rec.get(ColSponsor), date, start, level, location}, "|"), true
	}
	return strings.Join([]string{"group", date, start, level, groupType, location}, "|"), false
}

// Group folds valid rows into lessons, in first-seen key order.
func Group(records []RawRecord, opts Options) []models.Lesson {
	index := map[string]int{}
	var lessons []models.Lesson

	for _, rec := range records {
		key, private := Key(rec, opts)

		i, ok := index[key]
		if !ok {
			l := models.Lesson{
				Key:            key,
				Private:        private,
				OrderID:        rec.get(ColOrderID),
				BookingID:      rec.get(ColBookingID),
				Date:           rec.get(ColDate),
				TimestampStart: rec.get(ColStart),
				TimestampEnd:   rec.get(ColEnd),
				Level:          rec.get(ColLevel),
				GroupType:      rec.get(ColGroupType),
				Location:       rec.get(ColLocation),
				People:         []models.Person{},
			}
			if private {
				l.Sponsor = rec.get(ColSponsor)
			}
			lessons = append(lessons, l)
			i = len(lessons) - 1
			index[key] = i
		}

		l := &lessons[i]
		if l.BookingID == "" {
			l.BookingID = rec.get(ColBookingID)
		}
		if l.OrderID == "" {
			l.OrderID = rec.get(ColOrderID)
		}

		name := rec.get(ColParticipant)
		sponsor := rec.get(ColSponsor)
		if name == "" || l.HasPerson(name, sponsor) {
			continue
		}
		l.People = append(l.People, models.Person{
			Name:     name,
			Language: rec.get(ColLanguage),
			Sponsor:  sponsor,
		})
	}

	return lessons
}
