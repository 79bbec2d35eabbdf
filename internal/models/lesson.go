package models

// Person is one participant of a lesson.
type Person struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Sponsor  string `json:"sponsor"`
}

// Lesson is a booking slot grouped from raw order rows, before any
// instructor is attached.
type Lesson struct {
	Key            string   `json:"key"`
	Private        bool     `json:"private"`
	OrderID        string   `json:"order_id"`
	BookingID      string   `json:"booking_id"`
	Date           string   `json:"date_lesson"` // DD.MM.YYYY
	TimestampStart string   `json:"timestamp_start"`
	TimestampEnd   string   `json:"timestamp_end"`
	Level          string   `json:"level"`
	GroupType      string   `json:"group_type"`
	Location       string   `json:"location_meeting"`
	Sponsor        string   `json:"sponsor"` // set for private lessons only
	People         []Person `json:"people"`
}

func (l Lesson) PeopleCount() int {
	return len(l.People)
}

// HasPerson reports whether a participant with the same name and sponsor
// is already listed.
func (l Lesson) HasPerson(name, sponsor string) bool {
	for _, p := range l.People {
		if p.Name == name && p.Sponsor == sponsor {
			return true
		}
	}
	return false
}

// Instructor is the resolved (or default) instructor of a lesson.
// ID is nil for the placeholder instructor.
type Instructor struct {
	ID    *string `json:"id"`
	Name  string  `json:"name"`
	Photo string  `json:"photo"`
}

func (i Instructor) IsDefault() bool {
	return i.ID == nil
}

// MergedLesson is a lesson with an instructor and HH:MM times.
type MergedLesson struct {
	Key        string
	Private    bool
	OrderID    string
	BookingID  string
	Date       string
	Start      string
	End        string
	Level      string
	GroupType  string
	Location   string
	Sponsor    string
	People     []Person
	Instructor Instructor
	Notes      *string
}

func (l MergedLesson) PeopleCount() int {
	return len(l.People)
}

// ValidatedLesson can only be produced by the validator; Start and End are
// guaranteed to be zero-padded HH:MM values.
type ValidatedLesson struct {
	MergedLesson
}

// RedactedLesson carries abbreviated sponsor names and is safe to publish.
type RedactedLesson struct {
	MergedLesson
}
