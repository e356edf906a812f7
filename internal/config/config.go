// Package config loads the optional cairn.yaml user configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/moltude/cairn/internal/icons"
)

// DefaultFileNames are probed in order when no config path is given.
var DefaultFileNames = []string{"cairn.yaml", "cairn.yml"}

// Config layers user adjustments over the built-in mapping tables and
// carries converter preferences. The zero value changes nothing.
type Config struct {
	// Symbol keys are matched case-insensitively against the CalTopo
	// marker-symbol. Values must be canonical onX icon names.
	SymbolMappings  map[string]string `yaml:"symbol_mappings,omitempty"`
	KeywordMappings KeywordMappings   `yaml:"keyword_mappings,omitempty"`

	UseIconNamePrefix       bool   `yaml:"use_icon_name_prefix,omitempty"`
	EnableUnmappedDetection *bool  `yaml:"enable_unmapped_detection,omitempty"`
	DefaultIcon             string `yaml:"default_icon,omitempty"`
	DefaultColor            string `yaml:"default_color,omitempty"`

	Output Output `yaml:"output,omitempty"`
}

// Output holds converter output preferences, each overridable per run
// from the command line.
type Output struct {
	Dir      string  `yaml:"dir,omitempty"`
	Prefix   string  `yaml:"prefix,omitempty"`
	MaxGPXMB float64 `yaml:"max_gpx_mb,omitempty"`
	NoSplit  bool    `yaml:"no_split,omitempty"`
	NoSort   bool    `yaml:"no_sort,omitempty"`
}

// KeywordMappings preserves the file's entry order, which sets keyword
// priority during icon resolution.
type KeywordMappings []icons.KeywordEntry

// UnmarshalYAML walks the mapping node pairwise so entries keep the
// order they have in the file.
func (m *KeywordMappings) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return errors.New("keyword_mappings must map icon names to keyword lists")
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		icon := value.Content[i].Value
		var keywords []string
		if err := value.Content[i+1].Decode(&keywords); err != nil {
			return fmt.Errorf("keyword_mappings[%s]: %w", icon, err)
		}
		*m = append(*m, icons.KeywordEntry{Icon: icon, Keywords: keywords})
	}
	return nil
}

// Load reads and parses the YAML configuration file from the specified
// path. A missing file is not an error: the defaults apply.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Find returns the first default config file that exists, or empty.
func Find() string {
	for _, name := range DefaultFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Parse decodes configuration bytes.
func Parse(data []byte) (*Config, error) {
	var probe struct {
		IconEmojis any `yaml:"icon_emojis"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("invalid YAML in config file: %w", err)
	}
	if probe.IconEmojis != nil {
		return nil, errors.New("icon_emojis is no longer supported, remove the icon_emojis section from your config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in config file: %w", err)
	}
	return &cfg, nil
}

// Overrides converts the mapping-related fields for the icon registry.
func (c *Config) Overrides() icons.Overrides {
	return icons.Overrides{
		SymbolMappings:  c.SymbolMappings,
		KeywordMappings: []icons.KeywordEntry(c.KeywordMappings),
		DefaultIcon:     c.DefaultIcon,
		DefaultColor:    c.DefaultColor,
	}
}

// UnmappedDetection reports whether unmapped-symbol tracking is on.
// Unset means on.
func (c *Config) UnmappedDetection() bool {
	return c.EnableUnmappedDetection == nil || *c.EnableUnmappedDetection
}
