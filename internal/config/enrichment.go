package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/in-nis/lessonboard/internal/models"
)

// Enrichment holds the display defaults that are not part of the input
// data. The file may be YAML or JSON.
//
//	defaults:
//	  instructor: {id: null, name: Team, photo: assets/logo.png}
//	display:
//	  refresh_interval_seconds: 60
//	orders:
//	  private_group_types: [privát, private]
type Enrichment struct {
	Defaults struct {
		Instructor InstructorDefaults `yaml:"instructor"`
	} `yaml:"defaults"`
	Display struct {
		RefreshIntervalSeconds int `yaml:"refresh_interval_seconds"`
	} `yaml:"display"`
	Orders struct {
		PrivateGroupTypes []string `yaml:"private_group_types"`
	} `yaml:"orders"`
}

type InstructorDefaults struct {
	ID    *string `yaml:"id"`
	Name  string  `yaml:"name"`
	Photo string  `yaml:"photo"`
}

func DefaultEnrichment() Enrichment {
	var e Enrichment
	e.Defaults.Instructor = InstructorDefaults{Name: "Team", Photo: "assets/logo.png"}
	e.Display.RefreshIntervalSeconds = 60
	e.Orders.PrivateGroupTypes = []string{"privát", "private"}
	return e
}

// LoadEnrichment reads path over the defaults. An empty path or a missing
// file yields the defaults; a malformed file is an error.
func LoadEnrichment(path string) (Enrichment, error) {
	e := DefaultEnrichment()
	if path == "" {
		return e, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return e, nil
	}
	if err != nil {
		return e, fmt.Errorf("config: read enrichment: %w", err)
	}
	if err := yaml.Unmarshal(data, &e); err != nil {
		return DefaultEnrichment(), fmt.Errorf("config: parse enrichment %s: %w", path, err)
	}

	if e.Defaults.Instructor.Name == "" {
		e.Defaults.Instructor = DefaultEnrichment().Defaults.Instructor
	}
	if e.Display.RefreshIntervalSeconds <= 0 {
		e.Display.RefreshIntervalSeconds = 60
	}
	if len(e.Orders.PrivateGroupTypes) == 0 {
		e.Orders.PrivateGroupTypes = DefaultEnrichment().Orders.PrivateGroupTypes
	}
	return e, nil
}

// Instructor is the fallback used when a booking has no roster assignment.
func (e Enrichment) Instructor() models.Instructor {
	d := e.Defaults.Instructor
	return models.Instructor{ID: d.ID, Name: d.Name, Photo: d.Photo}
}
