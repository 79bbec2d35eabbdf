package validate

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/in-nis/lessonboard/internal/models"
)

var timePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Report counts rejected lessons per reason.
type Report struct {
	Filtered int
	Reasons  map[string]int
}

// IsValidTime reports whether s is a zero-padded HH:MM time of day.
func IsValidTime(s string) bool {
	return timePattern.MatchString(s)
}

// Check returns the rejection reason for a lesson, or "" when it is valid.
func Check(l models.MergedLesson) string {
	switch {
	case strings.TrimSpace(l.Date) == "":
		return "missing_date"
	case strings.TrimSpace(l.Start) == "":
		return "missing_start"
	case strings.TrimSpace(l.End) == "":
		return "missing_end"
	case !IsValidTime(l.Start):
		return "invalid_start_time"
	case !IsValidTime(l.End):
		return "invalid_end_time"
	}
	return ""
}

// Filter keeps valid lessons. Rejections are not errors; they are counted
// in the report and logged.
func Filter(lessons []models.MergedLesson, logger *zap.Logger) ([]models.ValidatedLesson, Report) {
	out := make([]models.ValidatedLesson, 0, len(lessons))
	report := Report{Reasons: map[string]int{}}

	for _, l := range lessons {
		if reason := Check(l); reason != "" {
			report.Filtered++
			report.Reasons[reason]++
			logger.Debug("filtered lesson",
				zap.String("reason", reason),
				zap.String("booking_id", l.BookingID),
				zap.String("key", l.Key))
			continue
		}
		if l.PeopleCount() == 0 {
			logger.Debug("lesson has no people listed", zap.String("key", l.Key))
		}
		out = append(out, models.ValidatedLesson{MergedLesson: l})
	}

	if report.Filtered > 0 {
		logger.Info("filtered invalid lessons",
			zap.Int("filtered", report.Filtered),
			zap.Any("reasons", report.Reasons))
	}
	return out, report
}
