package instructors

import (
	"encoding/json"
	"fmt"

	"github.com/in-nis/lessonboard/internal/models"
)

// Assignment lists the bookings one instructor teaches on the roster day.
type Assignment struct {
	InstructorID string   `json:"instructor_id"`
	BookingIDs   []string `json:"booking_ids"`
	TimeSlots    []string `json:"time_slots"`
}

// Roster is the daily assignment file (instructors/roster-YYYY-MM-DD.json).
type Roster struct {
	Date        string       `json:"date"`
	Assignments []Assignment `json:"assignments"`
}

// Profile is the display info of one instructor.
type Profile struct {
	Name      string   `json:"name"`
	Photo     string   `json:"photo"`
	Languages []string `json:"languages"`
}

// Profiles is keyed by instructor id (instructors/profiles.json).
type Profiles map[string]Profile

func ParseRoster(data []byte) (Roster, error) {
	var r Roster
	if err := json.Unmarshal(data, &r); err != nil {
		return Roster{}, fmt.Errorf("instructors: invalid roster json: %w", err)
	}
	return r, nil
}

func ParseProfiles(data []byte) (Profiles, error) {
	var p Profiles
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("instructors: invalid profiles json: %w", err)
	}
	if p == nil {
		p = Profiles{}
	}
	return p, nil
}

// Resolver answers which instructor teaches a booking.
type Resolver struct {
	roster   Roster
	profiles Profiles
}

func NewResolver(roster Roster, profiles Profiles) *Resolver {
	return &Resolver{roster: roster, profiles: profiles}
}

// Lookup returns the instructor assigned to bookingID. Assignments are
// scanned in roster order; the first one listing the booking with a known
// profile wins.
func (r *Resolver) Lookup(bookingID string) (models.Instructor, bool) {
	if r == nil || bookingID == "" {
		return models.Instructor{}, false
	}

	for _, a := range r.roster.Assignments {
		if a.InstructorID == "" || !contains(a.BookingIDs, bookingID) {
			continue
		}
		p, ok := r.profiles[a.InstructorID]
		if !ok {
			continue
		}
		id := a.InstructorID
		return models.Instructor{ID: &id, Name: p.Name, Photo: p.Photo}, true
	}
	return models.Instructor{}, false
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
