package icons

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"gopkg.in/yaml.v3"
)

// CatalogEntry is the accumulated observation record for one label.
type CatalogEntry struct {
	Count    int      `yaml:"count"`
	Examples []string `yaml:"examples"`
}

type catalogFile struct {
	Version   int                     `yaml:"version"`
	UpdatedAt string                  `yaml:"updated_at"`
	Symbols   map[string]CatalogEntry `yaml:"observed_caltopo_symbols,omitempty"`
	Icons     map[string]CatalogEntry `yaml:"observed_onx_icons,omitempty"`
}

// Catalog is the append-only YAML record of every icon label and marker
// symbol ever observed across runs. Counts accumulate and example lists
// only grow; nothing recorded is ever removed.
type Catalog struct {
	path  string
	clock clockwork.Clock
}

// NewCatalog opens a catalog at path. The file is created on first append.
func NewCatalog(path string, clock clockwork.Clock) *Catalog {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Catalog{path: path, clock: clock}
}

// DefaultCatalogPath returns the per-user catalog location, falling back
// to the working directory when no user config directory is known.
func DefaultCatalogPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "icon_catalog.yaml"
	}
	return filepath.Join(dir, "cairn", "icon_catalog.yaml")
}

// Path returns the backing file path.
func (c *Catalog) Path() string { return c.path }

// AppendSymbolInventory merges observed CalTopo symbols into the catalog.
func (c *Catalog) AppendSymbolInventory(entries []InventoryEntry) error {
	return c.merge(entries, func(f *catalogFile) *map[string]CatalogEntry { return &f.Symbols })
}

// AppendOnxIconInventory merges observed onX icons into the catalog.
func (c *Catalog) AppendOnxIconInventory(entries []InventoryEntry) error {
	return c.merge(entries, func(f *catalogFile) *map[string]CatalogEntry { return &f.Icons })
}

func (c *Catalog) merge(entries []InventoryEntry, section func(*catalogFile) *map[string]CatalogEntry) error {
	file, err := c.read()
	if err != nil {
		return err
	}

	root := section(file)
	if *root == nil {
		*root = map[string]CatalogEntry{}
	}
	for _, e := range entries {
		label := strings.TrimSpace(e.Label)
		if label == "" {
			continue
		}
		prev := (*root)[label]
		merged := CatalogEntry{Count: prev.Count + e.Count}
		for _, ex := range prev.Examples {
			if ex = strings.TrimSpace(ex); ex != "" && !containsString(merged.Examples, ex) {
				merged.Examples = append(merged.Examples, ex)
			}
		}
		for _, ex := range e.Examples {
			ex = strings.TrimSpace(ex)
			if ex == "" || containsString(merged.Examples, ex) || len(merged.Examples) >= exampleLimit {
				continue
			}
			merged.Examples = append(merged.Examples, ex)
		}
		(*root)[label] = merged
	}

	file.UpdatedAt = c.clock.Now().UTC().Truncate(time.Second).Format(time.RFC3339)
	return c.write(file)
}

func (c *Catalog) read() (*catalogFile, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &catalogFile{Version: 1}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read icon catalog: %w", err)
	}

	var file catalogFile
	// Never clobber a catalog that cannot be parsed; growth only.
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse icon catalog %s: %w", c.path, err)
	}
	if file.Version == 0 {
		file.Version = 1
	}
	if file.Version != 1 {
		return nil, fmt.Errorf("unsupported icon catalog version: %d (expected 1)", file.Version)
	}
	return &file, nil
}

func (c *Catalog) write(file *catalogFile) error {
	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode icon catalog: %w", err)
	}
	if dir := filepath.Dir(c.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create catalog dir: %w", err)
		}
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write icon catalog: %w", err)
	}
	return nil
}

func containsString(list []string, v string) bool {
	for _, have := range list {
		if have == v {
			return true
		}
	}
	return false
}
