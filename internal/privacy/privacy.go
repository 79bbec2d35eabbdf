package privacy

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/in-nis/lessonboard/internal/models"
)

// Abbreviate shortens a personal name for public display.
//
//	"Iryna Schröder" -> "Ir.Sc."
//	"Madonna"        -> "Ma."
//	""               -> ""
//
// Only the first and last tokens are used. Input is normalized to NFC so
// combining marks count as part of their base letter.
func Abbreviate(name string) string {
	parts := strings.Fields(norm.NFC.String(name))
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return prefix(parts[0]) + "."
	default:
		return prefix(parts[0]) + "." + prefix(parts[len(parts)-1]) + "."
	}
}

func prefix(token string) string {
	r := []rune(token)
	if len(r) > 2 {
		r = r[:2]
	}
	return string(r)
}

// Redact abbreviates every sponsor name and trims participant names.
// The input is not modified.
func Redact(lessons []models.ValidatedLesson) []models.RedactedLesson {
	out := make([]models.RedactedLesson, 0, len(lessons))
	for _, l := range lessons {
		ml := l.MergedLesson
		ml.Sponsor = Abbreviate(ml.Sponsor)

		people := make([]models.Person, len(ml.People))
		for i, p := range ml.People {
			people[i] = models.Person{
				Name:     strings.TrimSpace(p.Name),
				Language: p.Language,
				Sponsor:  Abbreviate(p.Sponsor),
			}
		}
		ml.People = people

		out = append(out, models.RedactedLesson{MergedLesson: ml})
	}
	return out
}
