package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moltude/cairn/internal/icons"
)

const userConfig = `symbol_mappings:
  skull: Hazard
  glassing: View
keyword_mappings:
  Camp:
    - tent
    - overnight
  Water Source:
    - spring
use_icon_name_prefix: true
enable_unmapped_detection: false
default_icon: Campsite
default_color: rgba(255,51,0,1)
output:
  dir: ./exports
  prefix: elk
  max_gpx_mb: 2.5
  no_split: true
  no_sort: true
`

func TestParse(t *testing.T) {
	t.Run("full config", func(t *testing.T) {
		cfg, err := Parse([]byte(userConfig))
		require.NoError(t, err)

		assert.Equal(t, map[string]string{"skull": "Hazard", "glassing": "View"}, cfg.SymbolMappings)
		require.Len(t, cfg.KeywordMappings, 2)
		assert.Equal(t, icons.KeywordEntry{Icon: "Camp", Keywords: []string{"tent", "overnight"}}, cfg.KeywordMappings[0])
		assert.Equal(t, icons.KeywordEntry{Icon: "Water Source", Keywords: []string{"spring"}}, cfg.KeywordMappings[1])
		assert.True(t, cfg.UseIconNamePrefix)
		assert.False(t, cfg.UnmappedDetection())
		assert.Equal(t, "Campsite", cfg.DefaultIcon)
		assert.Equal(t, "rgba(255,51,0,1)", cfg.DefaultColor)
		assert.Equal(t, Output{Dir: "./exports", Prefix: "elk", MaxGPXMB: 2.5, NoSplit: true, NoSort: true}, cfg.Output)
	})

	t.Run("keyword order follows the file", func(t *testing.T) {
		cfg, err := Parse([]byte("keyword_mappings:\n  Summit: [peak]\n  Camp: [tent]\n"))
		require.NoError(t, err)

		require.Len(t, cfg.KeywordMappings, 2)
		assert.Equal(t, "Summit", cfg.KeywordMappings[0].Icon)
		assert.Equal(t, "Camp", cfg.KeywordMappings[1].Icon)
	})

	t.Run("icon_emojis is rejected", func(t *testing.T) {
		_, err := Parse([]byte("icon_emojis:\n  Camp: x\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "icon_emojis is no longer supported")
	})

	t.Run("keyword_mappings must be a mapping", func(t *testing.T) {
		_, err := Parse([]byte("keyword_mappings:\n  - Camp\n"))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Parse([]byte(":\n  -"))
		require.Error(t, err)
	})

	t.Run("empty input is the zero config", func(t *testing.T) {
		cfg, err := Parse(nil)
		require.NoError(t, err)
		assert.True(t, cfg.UnmappedDetection())
		assert.False(t, cfg.UseIconNamePrefix)
	})
}

func TestLoad(t *testing.T) {
	t.Run("missing file means defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "cairn.yaml"))
		require.NoError(t, err)
		assert.True(t, cfg.UnmappedDetection())
		assert.Empty(t, cfg.SymbolMappings)
	})

	t.Run("reads an existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cairn.yaml")
		require.NoError(t, os.WriteFile(path, []byte("use_icon_name_prefix: true\n"), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.True(t, cfg.UseIconNamePrefix)
	})
}

func TestOverrides(t *testing.T) {
	cfg, err := Parse([]byte(userConfig))
	require.NoError(t, err)

	o := cfg.Overrides()
	assert.Equal(t, cfg.SymbolMappings, o.SymbolMappings)
	assert.Equal(t, []icons.KeywordEntry(cfg.KeywordMappings), o.KeywordMappings)
	assert.Equal(t, "Campsite", o.DefaultIcon)
	assert.Equal(t, "rgba(255,51,0,1)", o.DefaultColor)

	reg := icons.Default()
	require.NoError(t, reg.ApplyOverrides(o))
	assert.Equal(t, "View", reg.Resolve("Morning spot", "", "glassing").Icon)
}

func TestWriteTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cairn.yaml")
	require.NoError(t, WriteTemplate(path))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Hazard", cfg.SymbolMappings["skull"])
	assert.False(t, cfg.UseIconNamePrefix)
	assert.True(t, cfg.UnmappedDetection())
	require.NotEmpty(t, cfg.KeywordMappings)
	assert.Equal(t, "Campsite", cfg.KeywordMappings[0].Icon)

	// Every icon the template names must apply cleanly.
	require.NoError(t, icons.Default().ApplyOverrides(cfg.Overrides()))
}
