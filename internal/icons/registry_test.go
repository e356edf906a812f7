package icons

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mappingDoc = `
version: 1
policies:
  unknown_icon_handling: keep_point_and_append_to_description
caltopo_to_onx:
  default_icon: Location
  generic_symbols: [point, marker]
  symbol_map:
    skull: Hazard
    "CAMP ": campsite
  keyword_map:
    - icon: Campsite
      keywords: [camp, camping]
    - icon: Water Source
      keywords: [water]
onx_to_caltopo:
  default_symbol: point
  icon_map:
    Campsite: camping
    Summit: peak
`

func TestParseMappingDocument(t *testing.T) {
	r, err := Parse([]byte(mappingDoc))
	require.NoError(t, err)

	t.Run("symbol keys normalized and icons canonicalized", func(t *testing.T) {
		d := r.Resolve("", "", "skull")
		assert.Equal(t, "Hazard", d.Icon)

		// " CAMP " key lowercased, "campsite" value canonicalized.
		d = r.Resolve("", "", "Camp")
		assert.Equal(t, "Campsite", d.Icon)
		assert.Equal(t, 1.0, d.Score)
	})

	t.Run("generic symbols fall through", func(t *testing.T) {
		d := r.Resolve("Cow Camp", "", "marker")
		assert.Equal(t, "Campsite", d.Icon)
		assert.Equal(t, SourceKeyword, d.Source)
	})

	t.Run("reverse map", func(t *testing.T) {
		sym, src := r.MapOnxIconToCalTopoSymbol("Campsite")
		assert.Equal(t, "camping", sym)
		assert.Equal(t, MappingDirect, src)

		sym, src = r.MapOnxIconToCalTopoSymbol("View")
		assert.Equal(t, "point", sym)
		assert.Equal(t, MappingDefault, src)

		sym, src = r.MapOnxIconToCalTopoSymbol("")
		assert.Equal(t, "point", sym)
		assert.Equal(t, MappingDefault, src)
	})

	t.Run("policy recognized", func(t *testing.T) {
		assert.True(t, r.ShouldAppendUnknownIcon())
	})
}

func TestParseRejectsBadDocuments(t *testing.T) {
	t.Run("wrong version", func(t *testing.T) {
		_, err := Parse([]byte("version: 2\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "version")
	})

	t.Run("missing version", func(t *testing.T) {
		_, err := Parse([]byte("policies: {}\n"))
		require.Error(t, err)
	})

	t.Run("section not a mapping", func(t *testing.T) {
		_, err := Parse([]byte("version: 1\ncaltopo_to_onx: [a, b]\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "caltopo_to_onx must be a mapping")
	})

	t.Run("keyword map must be ordered list", func(t *testing.T) {
		doc := `
version: 1
caltopo_to_onx:
  keyword_map:
    Campsite: [camp]
`
		_, err := Parse([]byte(doc))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "keyword_map must be a list")
	})

	t.Run("unknown icon in symbol map", func(t *testing.T) {
		doc := `
version: 1
caltopo_to_onx:
  symbol_map:
    castle: Castle
`
		_, err := Parse([]byte(doc))
		require.Error(t, err)
		var te *TableError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, "caltopo_to_onx.symbol_map", te.Table)
		assert.Equal(t, "castle", te.Key)
	})

	t.Run("unknown policy", func(t *testing.T) {
		_, err := Parse([]byte("version: 1\npolicies:\n  unknown_icon_handling: drop\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown_icon_handling")
	})

	t.Run("unknown icon in reverse map", func(t *testing.T) {
		doc := `
version: 1
onx_to_caltopo:
  icon_map:
    Castle: point
`
		_, err := Parse([]byte(doc))
		require.Error(t, err)
		var te *TableError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, "onx_to_caltopo.icon_map", te.Table)
	})
}

func TestApplyOverrides(t *testing.T) {
	t.Run("symbol override wins on collision", func(t *testing.T) {
		r := Default()
		require.NoError(t, r.ApplyOverrides(Overrides{
			SymbolMappings: map[string]string{"skull": "Summit", "sled": "Snowmobile"},
		}))

		d := r.Resolve("", "", "skull")
		assert.Equal(t, "Summit", d.Icon)

		d = r.Resolve("", "", "sled")
		assert.Equal(t, "Snowmobile", d.Icon)
	})

	t.Run("keyword override outranks built-ins", func(t *testing.T) {
		r := Default()
		require.NoError(t, r.ApplyOverrides(Overrides{
			KeywordMappings: []KeywordEntry{{Icon: "View", Keywords: []string{"camp"}}},
		}))

		// One match each for View and Campsite; the prepended override
		// takes the tie.
		d := r.Resolve("Cow Camp", "", "")
		assert.Equal(t, "View", d.Icon)

		// The built-in View entry is gone, not duplicated.
		count := 0
		for _, e := range r.KeywordEntries() {
			if e.Icon == "View" {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("default icon canonicalized", func(t *testing.T) {
		r := Default()
		require.NoError(t, r.ApplyOverrides(Overrides{DefaultIcon: "campsite"}))
		assert.Equal(t, "Campsite", r.DefaultIconName())

		d := r.Resolve("Nothing matches", "", "")
		assert.Equal(t, "Campsite", d.Icon)
	})

	t.Run("unknown default icon rejected", func(t *testing.T) {
		r := Default()
		err := r.ApplyOverrides(Overrides{DefaultIcon: "Castle"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "default_icon")
	})

	t.Run("unknown symbol target rejected before any change", func(t *testing.T) {
		r := Default()
		err := r.ApplyOverrides(Overrides{
			SymbolMappings: map[string]string{"skull": "Castle"},
		})
		require.Error(t, err)

		d := r.Resolve("", "", "skull")
		assert.Equal(t, "Hazard", d.Icon)
	})

	t.Run("default color quantized to waypoint palette", func(t *testing.T) {
		r := Default()
		require.NoError(t, r.ApplyOverrides(Overrides{DefaultColor: "#00FF00"}))
		assert.Equal(t, "rgba(132,212,0,1)", r.DefaultWaypointColor())
	})
}

func TestDefaultRegistryTables(t *testing.T) {
	r := Default()

	assert.Equal(t, "Location", r.DefaultIconName())
	assert.Equal(t, "point", r.DefaultSymbolName())
	assert.True(t, r.ShouldAppendUnknownIcon())
	assert.Contains(t, r.GenericSymbols(), "point")

	t.Run("every symbol target is canonical", func(t *testing.T) {
		for sym, icon := range r.SymbolMappings() {
			canonical, ok := CanonicalIconName(icon)
			require.True(t, ok, "symbol %q maps to unknown icon %q", sym, icon)
			assert.Equal(t, canonical, icon, "symbol %q target not canonical spelling", sym)
		}
	})

	t.Run("every keyword icon is canonical", func(t *testing.T) {
		for _, e := range r.KeywordEntries() {
			canonical, ok := CanonicalIconName(e.Icon)
			require.True(t, ok, "keyword entry for unknown icon %q", e.Icon)
			assert.Equal(t, canonical, e.Icon)
			assert.NotEmpty(t, e.Keywords)
		}
	})

	t.Run("every reverse key is canonical", func(t *testing.T) {
		for icon := range r.OnxIconMappings() {
			_, ok := CanonicalIconName(icon)
			require.True(t, ok, "reverse map key %q not canonical", icon)
		}
	})
}

func TestOnxFuzzySuggestions(t *testing.T) {
	r := Default()

	got, err := r.OnxFuzzySuggestions("Campsite", []string{"camping", "danger", "peak"}, 2)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "camping", got[0].Name)
	assert.Greater(t, got[0].Score, 0.5)
}
