package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentEnsureFolder(t *testing.T) {
	doc := NewDocument()

	f := doc.EnsureFolder("f1", "Day Hikes", "")
	require.NotNil(t, f)
	assert.Equal(t, "Day Hikes", f.Name)

	again := doc.EnsureFolder("f1", "Renamed", "")
	assert.Same(t, f, again)
	assert.Equal(t, "Day Hikes", again.Name)
	assert.Len(t, doc.Folders, 1)
}

func TestDocumentAccessorsPreserveOrder(t *testing.T) {
	doc := NewDocument()
	doc.AddItem(&Waypoint{ID: "w1", Name: "Spring"})
	doc.AddItem(&Track{ID: "t1", Name: "Ridge"})
	doc.AddItem(&Waypoint{ID: "w2", Name: "Saddle"})
	doc.AddItem(&Shape{ID: "s1", Name: "Burn Area"})

	wps := doc.Waypoints()
	require.Len(t, wps, 2)
	assert.Equal(t, "w1", wps[0].ID)
	assert.Equal(t, "w2", wps[1].ID)

	require.Len(t, doc.Tracks(), 1)
	require.Len(t, doc.Shapes(), 1)
	assert.Len(t, doc.Items, 4)
}

func TestItemInterface(t *testing.T) {
	var it Item = &Waypoint{ID: "w1", FolderID: "f1", Name: "Spring"}
	assert.Equal(t, "w1", it.GetID())
	assert.Equal(t, "Spring", it.GetName())
	assert.Equal(t, "f1", it.GetFolderID())

	it.GetStyle().OnxIcon = "Water Source"
	assert.Equal(t, "Water Source", it.(*Waypoint).Style.OnxIcon)
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "cairn-")
}
