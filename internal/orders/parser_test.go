package orders

import (
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/in-nis/lessonboard/internal/models"
)

var testHeader = []string{
	"id_order", "booking_id", "date_lesson", "timestamp_start_lesson", "timestamp_end_lesson",
	"level", "group_size", "name_sponsor", "name_participant", "language", "location_meeting",
}

func tsv(rows ...[]string) []byte {
	var b strings.Builder
	b.WriteString(strings.Join(testHeader, "\t"))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(strings.Join(r, "\t"))
		b.WriteString("\n")
	}
	return []byte(b.String())
}

func row(order, booking, date, start, end, level, group, sponsor, participant, lang, location string) []string {
	return []string{order, booking, date, start, end, level, group, sponsor, participant, lang, location}
}

func privateRow(booking, sponsor, participant string) []string {
	return row("1001", booking, "28.12.2025", "2025-12-28T09:00:00+01:00", "2025-12-28T10:50:00+01:00",
		"dětská školka", "privát", sponsor, participant, "de", "Stone bar")
}

func TestParseTSV_MergesSameBookingIntoOneLesson(t *testing.T) {
	data := tsv(
		privateRow("b-1", "Iryna Schröder", "Anna"),
		privateRow("b-1", "Iryna Schröder", "Max"),
	)

	res, err := ParseTSV(data, Options{})
	require.NoError(t, err)

	require.Len(t, res.Lessons, 1)
	l := res.Lessons[0]
	assert.True(t, l.Private)
	assert.Equal(t, "b-1", l.BookingID)
	assert.Equal(t, "Iryna Schröder", l.Sponsor)
	assert.Equal(t, 2, l.PeopleCount())
	assert.Equal(t, []models.Person{
		{Name: "Anna", Language: "de", Sponsor: "Iryna Schröder"},
		{Name: "Max", Language: "de", Sponsor: "Iryna Schröder"},
	}, l.People)
}

func TestParseTSV_DeduplicatesPeople(t *testing.T) {
	data := tsv(
		privateRow("b-1", "Iryna Schröder", "Anna"),
		privateRow("b-1", "Iryna Schröder", "Anna"),
		privateRow("b-1", "Iryna Schröder", " Anna "),
	)

	res, err := ParseTSV(data, Options{})
	require.NoError(t, err)
	require.Len(t, res.Lessons, 1)
	assert.Equal(t, 1, res.Lessons[0].PeopleCount())
}

func TestParseTSV_SentinelRowsAreFiltered(t *testing.T) {
	data := tsv(
		row("1", "", "01.01.1970", "2025-12-28T09:00:00+01:00", "2025-12-28T10:50:00+01:00",
			"A1", "malá skupina", "Jan Li", "Eva", "cz", "Stone bar"),
		row("2", "", "28.12.2025", "1970-01-01T00:00:00+01:00", "1970-01-01T00:00:00+01:00",
			"A1", "malá skupina", "Jan Li", "Eva", "cz", "Stone bar"),
	)

	res, err := ParseTSV(data, Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Lessons)
	assert.Equal(t, 2, res.Filtered)
	assert.Equal(t, 2, res.Reasons["sentinel_1970"])
}

func TestParseTSV_SentinelAlongsideValidRows(t *testing.T) {
	data := tsv(
		row("1", "", "01.01.1970", "1970-01-01T00:00:00+01:00", "1970-01-01T00:00:00+01:00",
			"A1", "malá skupina", "Jan Li", "Eva", "cz", "Stone bar"),
		row("2", "", "28.12.2025", "2025-12-28T09:00:00+01:00", "2025-12-28T10:50:00+01:00",
			"A1", "malá skupina", "Jan Li", "Eva", "cz", "Stone bar"),
		row("3", "", "28.12.2025", "2025-12-28T11:00:00+01:00", "2025-12-28T12:50:00+01:00",
			"A1", "malá skupina", "Jan Li", "Eva", "cz", "Stone bar"),
		row("4", "", "28.12.2025", "2025-12-28T09:00:00+01:00", "2025-12-28T10:50:00+01:00",
			"B2", "velká skupina", "Jan Li", "Eva", "cz", "Stone bar"),
	)

	res, err := ParseTSV(data, Options{})
	require.NoError(t, err)
	assert.Len(t, res.Lessons, 3)
	assert.Equal(t, 4, res.Rows)
	assert.Equal(t, 3, res.Valid)
	assert.Equal(t, 1, res.Filtered)
}

func TestParseTSV_MissingFieldIsFiltered(t *testing.T) {
	data := tsv(
		row("1", "", "28.12.2025", "2025-12-28T09:00:00+01:00", "2025-12-28T10:50:00+01:00",
			"A1", "malá skupina", "Jan Li", "   ", "cz", "Stone bar"),
	)

	res, err := ParseTSV(data, Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Lessons)
	assert.Equal(t, 1, res.Reasons["missing_name_participant"])
}

func TestParseTSV_SchemaError(t *testing.T) {
	data := []byte("date_lesson\tlevel\n28.12.2025\tA1\n")

	_, err := ParseTSV(data, Options{})
	require.Error(t, err)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Contains(t, schemaErr.Missing, ColStart)
	assert.Contains(t, schemaErr.Missing, ColSponsor)
	assert.NotContains(t, schemaErr.Missing, ColDate)
}

func TestParseTSV_EmptyInputIsSchemaError(t *testing.T) {
	_, err := ParseTSV(nil, Options{})

	var schemaErr *SchemaError
	assert.True(t, errors.As(err, &schemaErr))
}

func TestParseTSV_OptionalColumnsMayBeAbsent(t *testing.T) {
	header := strings.Join(RequiredColumns, "\t")
	line := strings.Join([]string{
		"28.12.2025", "2025-12-28T09:00:00+01:00", "2025-12-28T10:50:00+01:00",
		"A1", "malá skupina", "Jan Li", "Eva", "cz", "Stone bar",
	}, "\t")

	res, err := ParseTSV([]byte(header+"\n"+line+"\n"), Options{})
	require.NoError(t, err)
	require.Len(t, res.Lessons, 1)
	assert.Empty(t, res.Lessons[0].BookingID)
}

func TestGroup_GroupLessonsIgnoreSponsor(t *testing.T) {
	data := tsv(
		row("1", "g-1", "28.12.2025", "2025-12-28T09:00:00+01:00", "2025-12-28T10:50:00+01:00",
			"A1", "malá skupina", "Jan Li", "Eva", "cz", "Stone bar"),
		row("2", "g-2", "28.12.2025", "2025-12-28T09:00:00+01:00", "2025-12-28T10:50:00+01:00",
			"A1", "malá skupina", "Petra Nová", "Eva", "en", "Stone bar"),
	)

	res, err := ParseTSV(data, Options{})
	require.NoError(t, err)
	require.Len(t, res.Lessons, 1)

	l := res.Lessons[0]
	assert.False(t, l.Private)
	assert.Empty(t, l.Sponsor)
	// same first name, different sponsor: two people
	assert.Equal(t, 2, l.PeopleCount())
	assert.Equal(t, "g-1", l.BookingID)
}

func TestGroup_PrivateLessonsSplitBySponsorAndSlot(t *testing.T) {
	late := privateRow("b-3", "Iryna Schröder", "Anna")
	late[3] = "2025-12-28T13:00:00+01:00"

	data := tsv(
		privateRow("b-1", "Iryna Schröder", "Anna"),
		privateRow("b-2", "Jan Li", "Tom"),
		late,
	)

	res, err := ParseTSV(data, Options{})
	require.NoError(t, err)
	assert.Len(t, res.Lessons, 3)
}

func TestGroup_CustomPrivateSentinel(t *testing.T) {
	r1 := privateRow("b-1", "Iryna Schröder", "Anna")
	r1[6] = "solo"
	r2 := privateRow("b-2", "Jan Li", "Tom")
	r2[6] = "solo"

	res, err := ParseTSV(tsv(r1, r2), Options{PrivateGroupTypes: []string{"solo"}})
	require.NoError(t, err)
	require.Len(t, res.Lessons, 2)
	assert.True(t, res.Lessons[0].Private)
}

func TestGroup_IsOrderIndependent(t *testing.T) {
	rows := [][]string{
		privateRow("b-1", "Iryna Schröder", "Anna"),
		privateRow("b-1", "Iryna Schröder", "Max"),
		row("2", "", "28.12.2025", "2025-12-28T09:00:00+01:00", "2025-12-28T10:50:00+01:00",
			"A1", "malá skupina", "Jan Li", "Eva", "cz", "Stone bar"),
		row("3", "", "28.12.2025", "2025-12-28T09:00:00+01:00", "2025-12-28T10:50:00+01:00",
			"A1", "malá skupina", "Petra Nová", "Ola", "pl", "Stone bar"),
	}
	reversed := make([][]string, len(rows))
	for i := range rows {
		reversed[len(rows)-1-i] = rows[i]
	}

	a, err := ParseTSV(tsv(rows...), Options{})
	require.NoError(t, err)
	b, err := ParseTSV(tsv(reversed...), Options{})
	require.NoError(t, err)

	assert.Equal(t, summarize(a.Lessons), summarize(b.Lessons))
}

// summarize maps lesson key to its sorted participant list.
func summarize(lessons []models.Lesson) map[string][]string {
	out := map[string][]string{}
	for _, l := range lessons {
		var names []string
		for _, p := range l.People {
			names = append(names, p.Name+"/"+p.Sponsor)
		}
		sort.Strings(names)
		out[l.Key] = names
	}
	return out
}

func TestDecode_Windows1250(t *testing.T) {
	src := strings.Join(testHeader, "\t") + "\n" + strings.Join(privateRow("b-1", "Iryna Schröder", "Anička"), "\t") + "\n"
	encoded, err := charmap.Windows1250.NewEncoder().Bytes([]byte(src))
	require.NoError(t, err)

	res, err := ParseTSV(encoded, Options{})
	require.NoError(t, err)
	require.Len(t, res.Lessons, 1)
	assert.Equal(t, "Iryna Schröder", res.Lessons[0].Sponsor)
	assert.Equal(t, "Anička", res.Lessons[0].People[0].Name)
	assert.Equal(t, "dětská školka", res.Lessons[0].Level)
}

func TestDecode_StripsUTF8BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, tsv(privateRow("b-1", "Jan Li", "Tom"))...)

	out, enc, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "utf-8-bom", enc)
	assert.True(t, strings.HasPrefix(string(out), "id_order"))
}
