package icons

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSymbolExact(t *testing.T) {
	r := Default()

	d := r.Resolve("Rockfall zone", "", "skull")

	assert.Equal(t, "Hazard", d.Icon)
	assert.Equal(t, 1.0, d.Score)
	assert.Equal(t, SourceSymbol, d.Source)
	assert.Equal(t, []string{"skull"}, d.MatchedTerms)
	require.Len(t, d.Reasons, 1)
	assert.Contains(t, d.Reasons[0], "symbol exact match 'skull' -> 'Hazard'")
}

func TestResolveSymbolDominatesKeywords(t *testing.T) {
	r := Default()

	// Title screams camping but the symbol decides.
	d := r.Resolve("Camp by the water", "great campsite", "skull")

	assert.Equal(t, "Hazard", d.Icon)
	assert.Equal(t, SourceSymbol, d.Source)
}

func TestResolveSymbolSubstring(t *testing.T) {
	r := Default()

	t.Run("longest key wins", func(t *testing.T) {
		// "hot-springs" contains both "hot-spring" and "spring".
		d := r.Resolve("", "", "hot-springs")
		assert.Equal(t, "Hot Spring", d.Icon)
		assert.Equal(t, 0.9, d.Score)
		assert.Equal(t, SourceSymbol, d.Source)
		assert.Equal(t, []string{"hot-spring"}, d.MatchedTerms)
	})

	t.Run("length tie breaks to later key", func(t *testing.T) {
		// "camplake" contains "camp" and "lake", both four characters.
		d := r.Resolve("", "", "camplake")
		assert.Equal(t, "Water Source", d.Icon)
		assert.Equal(t, []string{"lake"}, d.MatchedTerms)
	})
}

func TestResolveGenericSymbolFallsThrough(t *testing.T) {
	r := Default()

	d := r.Resolve("Cow Camp Mile 31.9", "", "point")

	assert.Equal(t, "Campsite", d.Icon)
	assert.Equal(t, SourceKeyword, d.Source)
	assert.Equal(t, []string{"camp"}, d.MatchedTerms)
	assert.Equal(t, 1.0, d.Score)
}

func TestResolveKeywordTokenBoundary(t *testing.T) {
	r := NewResolver(nil, []KeywordEntry{
		{Icon: "Trailhead", Keywords: []string{"th"}},
		{Icon: "Hazard", Keywords: []string{"avalanche"}},
	}, "Location", nil)

	// "th" must not fire inside "path".
	d := r.Resolve("Avalanche path", "", "")

	assert.Equal(t, "Hazard", d.Icon)
	assert.Equal(t, []string{"avalanche"}, d.MatchedTerms)
}

func TestResolveKeywordPhrase(t *testing.T) {
	r := Default()

	d := r.Resolve("Upper trail head", "", "")

	assert.Equal(t, "Trailhead", d.Icon)
	assert.Equal(t, []string{"trail head"}, d.MatchedTerms)
}

func TestResolveKeywordTieFavorsEarlierEntry(t *testing.T) {
	r := Default()

	// One match each for Water Source ("water") and Water Crossing
	// ("water crossing"); the earlier entry takes the tie.
	d := r.Resolve("Knee-deep water crossing", "", "")

	assert.Equal(t, "Water Source", d.Icon)
	assert.Equal(t, []string{"water"}, d.MatchedTerms)
}

func TestResolveKeywordMatchCountWins(t *testing.T) {
	r := Default()

	// Three XC Skiing keywords against one for Ski.
	d := r.Resolve("Ski tour uptrack", "", "")

	assert.Equal(t, "XC Skiing", d.Icon)
	assert.Equal(t, 3.0, d.Score)
	assert.ElementsMatch(t, []string{"ski", "tour", "uptrack"}, d.MatchedTerms)
}

func TestResolveKeywordTieKeepsPriorityOrder(t *testing.T) {
	r := NewResolver(nil, []KeywordEntry{
		{Icon: "View", Keywords: []string{"rock"}},
		{Icon: "Climbing", Keywords: []string{"rock"}},
	}, "Location", nil)

	d := r.Resolve("Big rock", "", "")

	assert.Equal(t, "View", d.Icon)
}

func TestResolveDefault(t *testing.T) {
	r := Default()

	d := r.Resolve("Zz9 plural", "", "")

	assert.Equal(t, "Location", d.Icon)
	assert.Zero(t, d.Score)
	assert.Equal(t, SourceDefault, d.Source)
	assert.Empty(t, d.MatchedTerms)
}

func TestResolveSearchesDescription(t *testing.T) {
	r := Default()

	d := r.Resolve("Mile 12", "refill bottles here", "")

	assert.Equal(t, "Water Source", d.Icon)
	assert.Equal(t, []string{"refill"}, d.MatchedTerms)
}

func TestResolveDeterministic(t *testing.T) {
	r := Default()

	first := r.Resolve("Cow Camp Mile 31.9", "water nearby", "point")
	second := r.Resolve("Cow Camp Mile 31.9", "water nearby", "point")

	assert.Equal(t, first, second)
}

func TestUnmappedTracker(t *testing.T) {
	r := Default()
	tr := NewUnmappedTracker(r.Resolver())

	tr.Track("point", "Generic one")  // generic, skipped
	tr.Track("skull", "Mapped one")   // mapped, skipped
	tr.Track("", "Empty")             // skipped
	tr.Track("wizard-tower", "Spire")
	tr.Track("wizard-tower", "North spire")
	tr.Track("wizard-tower", "South spire")
	tr.Track("wizard-tower", "East spire")
	tr.Track("mystery", "")

	require.True(t, tr.HasUnmapped())
	rows := tr.Report()
	require.Len(t, rows, 2)

	assert.Equal(t, "wizard-tower", rows[0].Symbol)
	assert.Equal(t, 4, rows[0].Count)
	assert.Equal(t, []string{"Spire", "North spire", "South spire"}, rows[0].Examples)

	assert.Equal(t, "mystery", rows[1].Symbol)
	assert.Equal(t, 1, rows[1].Count)
	assert.Empty(t, rows[1].Examples)
}

func TestUnmappedTrackerSorted(t *testing.T) {
	r := Default()
	tr := NewUnmappedTracker(r.Resolver())

	tr.Track("zzz", "a")
	tr.Track("aaa", "b")
	tr.Track("aaa", "c")

	rows := tr.SortedSymbols()
	require.Len(t, rows, 2)
	assert.Equal(t, "aaa", rows[0].Symbol)
	assert.Equal(t, "zzz", rows[1].Symbol)
}
