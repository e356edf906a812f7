package icons

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moltude/cairn/internal/palette"
)

func TestCanonicalIconName(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Campsite", "Campsite", true},
		{"campsite", "Campsite", true},
		{"camp_backcountry", "Camp Backcountry", true},
		{"camp-backcountry", "Camp Backcountry", true},
		{"CampBackcountry", "Camp Backcountry", true},
		{"XC SKIING", "XC Skiing", true},
		{"xcskiing", "XC Skiing", true},
		{"  location  ", "Location", true},
		{"4x4", "4x4", true},
		{"Camp", "", false},
		{"Castle", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := CanonicalIconName(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestVocabularyHasNoDuplicates(t *testing.T) {
	seen := map[string]bool{}
	for _, name := range CanonicalIconNames {
		require.False(t, seen[name], "duplicate icon %q", name)
		seen[name] = true
	}
}

func TestIconColorTableTotal(t *testing.T) {
	require.NoError(t, ValidateIconColors())
}

func TestIconColorsStayInWaypointPalette(t *testing.T) {
	allowed := map[string]bool{}
	for _, c := range palette.Waypoint {
		allowed[c.RGBA()] = true
	}
	for _, name := range CanonicalIconNames {
		assert.True(t, allowed[IconColor(name)], "icon %q color %s outside waypoint palette", name, IconColor(name))
	}
}

func TestIconColorKnownValues(t *testing.T) {
	assert.Equal(t, "rgba(255,51,0,1)", IconColor("Hazard"))
	assert.Equal(t, "rgba(8,122,255,1)", IconColor("Location"))
	assert.Equal(t, DefaultIconColor, IconColor("Never Heard Of It"))
}
