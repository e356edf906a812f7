package icons

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moltude/cairn/internal/geo"
)

func caltopoFixture() *geo.Document {
	doc := geo.NewDocument()
	doc.AddItem(&geo.Waypoint{ID: "a", Name: "Rockfall zone", Style: geo.Style{MarkerSymbol: "skull"}})
	doc.AddItem(&geo.Waypoint{ID: "b", Name: "Cliff warning", Style: geo.Style{MarkerSymbol: "skull", MarkerColor: "#00FF00"}})
	doc.AddItem(&geo.Waypoint{ID: "c", Name: "Plain"})
	doc.AddItem(&geo.Waypoint{ID: "d", Name: "Cow Camp", Style: geo.Style{MarkerSymbol: "point"}})
	return doc
}

func TestCollectCalTopoSymbolInventory(t *testing.T) {
	rows := Default().CollectCalTopoSymbolInventory(caltopoFixture())

	require.Len(t, rows, 3)
	assert.Equal(t, InventoryEntry{Label: "skull", Count: 2, Examples: []string{"Rockfall zone", "Cliff warning"}}, rows[0])
	assert.Equal(t, "(missing)", rows[1].Label)
	assert.Equal(t, 1, rows[1].Count)
	assert.Equal(t, "point", rows[2].Label)
}

func TestCollectCalTopoMappingRows(t *testing.T) {
	rows := Default().CollectCalTopoMappingRows(caltopoFixture())

	require.Len(t, rows, 3)

	skull := rows[0]
	assert.Equal(t, "skull", skull.Incoming)
	assert.Equal(t, "Hazard", skull.Mapped)
	assert.Equal(t, "symbol", skull.Source)
	assert.Equal(t, 2, skull.Count)
	// First waypoint has no color, so the per-icon default leads;
	// the second contributes its quantized marker color.
	assert.Equal(t, []string{"rgba(255,51,0,1)", "rgba(132,212,0,1)"}, skull.Colors)

	missing := rows[1]
	assert.Equal(t, "(missing)", missing.Incoming)
	assert.Equal(t, "Location", missing.Mapped)
	assert.Equal(t, "default", missing.Source)

	point := rows[2]
	assert.Equal(t, "point", point.Incoming)
	assert.Equal(t, "Campsite", point.Mapped)
	assert.Equal(t, "keyword", point.Source)
}

func TestCollectOnxIconInventoryAndRows(t *testing.T) {
	doc := geo.NewDocument()
	doc.AddItem(&geo.Waypoint{ID: "a", Name: "First camp", Style: geo.Style{OnxIcon: "Campsite", OnxColor: "rgba(255,51,0,1)"}})
	doc.AddItem(&geo.Waypoint{ID: "b", Name: "Second camp", Style: geo.Style{OnxIcon: "Campsite", OnxColor: "rgba(0,0,0,1)"}})
	doc.AddItem(&geo.Waypoint{ID: "c", Name: "No icon"})

	reg := Default()

	inv := reg.CollectOnxIconInventory(doc)
	require.Len(t, inv, 2)
	assert.Equal(t, "Campsite", inv[0].Label)
	assert.Equal(t, 2, inv[0].Count)
	assert.Equal(t, "(missing)", inv[1].Label)

	rows := reg.CollectOnxIconMappingRows(doc)
	require.Len(t, rows, 2)
	assert.Equal(t, "Campsite", rows[0].Incoming)
	assert.Equal(t, "camping", rows[0].Mapped)
	assert.Equal(t, "direct", rows[0].Source)
	assert.Equal(t, []string{"rgba(255,51,0,1)", "rgba(0,0,0,1)"}, rows[0].Colors)

	assert.Equal(t, "(missing)", rows[1].Incoming)
	assert.Equal(t, "point", rows[1].Mapped)
	assert.Equal(t, "default", rows[1].Source)
}

func TestInventoryExampleLimit(t *testing.T) {
	doc := geo.NewDocument()
	for _, name := range []string{"One", "Two", "Three", "Four"} {
		doc.AddItem(&geo.Waypoint{ID: name, Name: name, Style: geo.Style{MarkerSymbol: "skull"}})
	}

	rows := Default().CollectCalTopoSymbolInventory(doc)
	require.Len(t, rows, 1)
	assert.Equal(t, 4, rows[0].Count)
	assert.Equal(t, []string{"One", "Two", "Three"}, rows[0].Examples)
}
