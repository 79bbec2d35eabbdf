package instructors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rosterJSON = `{
  "date": "2025-12-28",
  "assignments": [
    {"instructor_id": "jan-novak", "booking_ids": ["b-1", "b-2"], "time_slots": ["09:00-10:50"]},
    {"instructor_id": "eva-mala", "booking_ids": ["b-2", "b-3"], "time_slots": ["11:00-12:50"]},
    {"instructor_id": "", "booking_ids": ["b-4"]},
    {"instructor_id": "ghost", "booking_ids": ["b-5"]}
  ]
}`

const profilesJSON = `{
  "jan-novak": {"name": "Jan Novák", "photo": "assets/instructors/jan-novak.jpg", "languages": ["cz", "de"]},
  "eva-mala": {"name": "Eva Malá", "photo": "assets/instructors/eva-mala.jpg", "languages": ["en"]}
}`

func resolver(t *testing.T) *Resolver {
	t.Helper()
	roster, err := ParseRoster([]byte(rosterJSON))
	require.NoError(t, err)
	profiles, err := ParseProfiles([]byte(profilesJSON))
	require.NoError(t, err)
	return NewResolver(roster, profiles)
}

func TestParseRoster(t *testing.T) {
	roster, err := ParseRoster([]byte(rosterJSON))
	require.NoError(t, err)
	assert.Equal(t, "2025-12-28", roster.Date)
	require.Len(t, roster.Assignments, 4)
	assert.Equal(t, []string{"b-1", "b-2"}, roster.Assignments[0].BookingIDs)
}

func TestParseProfiles_Invalid(t *testing.T) {
	_, err := ParseProfiles([]byte(`{"jan":`))
	assert.Error(t, err)
}

func TestLookup_Match(t *testing.T) {
	in, ok := resolver(t).Lookup("b-1")
	require.True(t, ok)
	require.NotNil(t, in.ID)
	assert.Equal(t, "jan-novak", *in.ID)
	assert.Equal(t, "Jan Novák", in.Name)
	assert.Equal(t, "assets/instructors/jan-novak.jpg", in.Photo)
}

func TestLookup_FirstAssignmentWins(t *testing.T) {
	in, ok := resolver(t).Lookup("b-2")
	require.True(t, ok)
	assert.Equal(t, "jan-novak", *in.ID)
}

func TestLookup_Misses(t *testing.T) {
	r := resolver(t)

	for _, id := range []string{"", "unknown", "b-4", "b-5"} {
		_, ok := r.Lookup(id)
		assert.False(t, ok, "booking %q", id)
	}
}

func TestLookup_EmptyData(t *testing.T) {
	r := NewResolver(Roster{}, Profiles{})
	_, ok := r.Lookup("b-1")
	assert.False(t, ok)

	var nilResolver *Resolver
	_, ok = nilResolver.Lookup("b-1")
	assert.False(t, ok)
}
