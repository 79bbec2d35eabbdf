package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/in-nis/lessonboard/internal/models"
)

func TestAbbreviate(t *testing.T) {
	cases := map[string]string{
		"Iryna Schröder":         "Ir.Sc.",
		"Madonna":                "Ma.",
		"":                       "",
		"   ":                    "",
		"Jan Li":                 "Ja.Li.",
		"J":                      "J.",
		"Jan K":                  "Ja.K.",
		"  Anna  Maria  Dvořák ": "An.Dv.",
		"Šárka\tŽáková":          "Šá.Žá.",
		// S + combining caron
		"S\u030carka": "\u0160a.",
	}
	for in, want := range cases {
		assert.Equal(t, want, Abbreviate(in), "Abbreviate(%q)", in)
	}
}

func TestAbbreviate_Deterministic(t *testing.T) {
	assert.Equal(t, Abbreviate("Iryna Schröder"), Abbreviate("Iryna Schröder"))
}

func TestRedact(t *testing.T) {
	in := []models.ValidatedLesson{{MergedLesson: models.MergedLesson{
		Key:     "private|Iryna Schröder|28.12.2025|09:00|A1|Stone bar",
		Private: true,
		Sponsor: "Iryna Schröder",
		Start:   "09:00",
		End:     "10:50",
		People: []models.Person{
			{Name: " Anna ", Language: "de", Sponsor: "Iryna Schröder"},
			{Name: "Max", Language: "de", Sponsor: "Iryna Schröder"},
		},
	}}}

	out := Redact(in)
	require.Len(t, out, 1)

	l := out[0]
	assert.Equal(t, "Ir.Sc.", l.Sponsor)
	assert.Equal(t, "Anna", l.People[0].Name)
	assert.Equal(t, "Ir.Sc.", l.People[0].Sponsor)
	assert.Equal(t, "Max", l.People[1].Name)
	assert.Equal(t, "09:00", l.Start)

	// source untouched
	assert.Equal(t, "Iryna Schröder", in[0].Sponsor)
	assert.Equal(t, " Anna ", in[0].People[0].Name)
}

func TestRedact_Empty(t *testing.T) {
	assert.Empty(t, Redact(nil))
}
