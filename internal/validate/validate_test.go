package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/in-nis/lessonboard/internal/models"
)

func lesson(date, start, end string) models.MergedLesson {
	return models.MergedLesson{
		Key:    "group|" + date + "|" + start,
		Date:   date,
		Start:  start,
		End:    end,
		People: []models.Person{{Name: "Anna"}},
	}
}

func TestIsValidTime(t *testing.T) {
	for _, s := range []string{"00:00", "09:05", "19:59", "23:59", "12:00"} {
		assert.True(t, IsValidTime(s), s)
	}
	for _, s := range []string{"9:00", "25:00", "24:00", "10:60", "", "0900", "09:00:00", " 09:00"} {
		assert.False(t, IsValidTime(s), s)
	}
}

func TestCheck(t *testing.T) {
	cases := []struct {
		name   string
		lesson models.MergedLesson
		want   string
	}{
		{"valid", lesson("28.12.2025", "10:00", "11:50"), ""},
		{"boundaries", lesson("28.12.2025", "00:00", "23:59"), ""},
		{"missing date", lesson(" ", "10:00", "11:50"), "missing_date"},
		{"missing start", lesson("28.12.2025", "", "11:50"), "missing_start"},
		{"missing end", lesson("28.12.2025", "10:00", ""), "missing_end"},
		{"no leading zero", lesson("28.12.2025", "9:00", "11:50"), "invalid_start_time"},
		{"hour out of range", lesson("28.12.2025", "25:00", "11:50"), "invalid_start_time"},
		{"minute out of range", lesson("28.12.2025", "10:00", "10:60"), "invalid_end_time"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Check(tc.lesson))
		})
	}
}

func TestFilter(t *testing.T) {
	empty := lesson("28.12.2025", "12:00", "13:00")
	empty.People = nil

	in := []models.MergedLesson{
		lesson("28.12.2025", "10:00", "11:50"),
		lesson("28.12.2025", "9:00", "11:50"),
		lesson("28.12.2025", "10:00", "10:60"),
		empty,
	}

	out, report := Filter(in, zap.NewNop())
	require.Len(t, out, 2)
	assert.Equal(t, "10:00", out[0].Start)
	assert.Equal(t, "12:00", out[1].Start)

	assert.Equal(t, 2, report.Filtered)
	assert.Equal(t, map[string]int{"invalid_start_time": 1, "invalid_end_time": 1}, report.Reasons)
}

func TestFilter_Empty(t *testing.T) {
	out, report := Filter(nil, zap.NewNop())
	assert.Empty(t, out)
	assert.Zero(t, report.Filtered)
}
