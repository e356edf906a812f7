package text

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEntities(t *testing.T) {
	t.Run("double escaped apostrophe", func(t *testing.T) {
		assert.Equal(t, "Bob's Camp", NormalizeEntities("Bob&amp;apos;s Camp"))
	})

	t.Run("single escape", func(t *testing.T) {
		assert.Equal(t, `Creek & "Falls"`, NormalizeEntities("Creek &amp; &quot;Falls&quot;"))
	})

	t.Run("plain text unchanged", func(t *testing.T) {
		assert.Equal(t, "Lost Horse Canyon", NormalizeEntities("Lost Horse Canyon"))
	})
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "base camp", NormalizeKey("  Base\t Camp "))
	assert.Equal(t, "bob's camp", NormalizeKey("Bob&apos;s Camp"))
}

func TestStripHTML(t *testing.T) {
	t.Run("tags removed", func(t *testing.T) {
		assert.Equal(t, "Camp at lake", StripHTML("<b>Camp</b> at <i>lake</i>"))
	})

	t.Run("block elements collapse to single spaces", func(t *testing.T) {
		assert.Equal(t, "Water source Reliable in June", StripHTML("<p>Water source</p>\n<p>Reliable in June</p>"))
	})

	t.Run("plain text with entities", func(t *testing.T) {
		assert.Equal(t, "Rock & Ice", StripHTML("Rock &amp; Ice"))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "", StripHTML(""))
	})
}

func TestNaturalLess(t *testing.T) {
	names := []string{"Camp 10", "Camp 2", "camp 1", "Camp 2b", "Basin"}
	sort.Slice(names, func(i, j int) bool { return NaturalLess(names[i], names[j]) })

	assert.Equal(t, []string{"Basin", "camp 1", "Camp 2", "Camp 2b", "Camp 10"}, names)
}

func TestNaturalLessDigitRuns(t *testing.T) {
	assert.True(t, NaturalLess("wp002", "wp10"))
	assert.False(t, NaturalLess("wp10", "wp002"))
	assert.True(t, NaturalLess("wp2", "wp2a"))
}

func TestSanitizeName(t *testing.T) {
	t.Run("unsafe characters removed", func(t *testing.T) {
		clean, changed := SanitizeName("Camp #4 @ Lake!")
		assert.Equal(t, "Camp 4 Lake", clean)
		assert.True(t, changed)
	})

	t.Run("clean name untouched", func(t *testing.T) {
		clean, changed := SanitizeName("North Ridge")
		assert.Equal(t, "North Ridge", clean)
		assert.False(t, changed)
	})

	t.Run("preserves sort neighbours", func(t *testing.T) {
		a, _ := SanitizeName("Camp 2")
		b, _ := SanitizeName("Camp #10")
		assert.True(t, NaturalLess(a, b))
	})
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Lost_Horse_Canyon_Trail", SanitizeFilename("Lost Horse Canyon / Trail"))
	assert.Equal(t, "Untitled", SanitizeFilename(""))
	assert.Equal(t, "Untitled", SanitizeFilename("///"))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.5 KB", FormatFileSize(1536))
	assert.Equal(t, "3.8 MB", FormatFileSize(3984589))
}