package icons

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/moltude/cairn/internal/palette"
)

// TableError reports an invalid entry in a mapping table.
type TableError struct {
	Table   string
	Key     string
	Problem string
}

func (e *TableError) Error() string {
	return fmt.Sprintf("%s[%q]: %s", e.Table, e.Key, e.Problem)
}

// MappingSource tells how a reverse mapping was decided.
type MappingSource string

const (
	MappingDirect  MappingSource = "direct"
	MappingDefault MappingSource = "default"
)

// PolicyKeepPointAndAppend is the only recognized unknown-icon policy:
// keep the waypoint as a plain point and append the icon name to its
// description so nothing is silently lost.
const PolicyKeepPointAndAppend = "keep_point_and_append_to_description"

// Registry holds the complete icon mapping state for one run: the
// forward (CalTopo to onX) tables, the reverse icon map, and the
// policies. Loading builds the whole registry before it is handed out,
// so readers never observe a half-applied document.
type Registry struct {
	unknownIconPolicy string

	defaultIcon    string
	defaultColor   string
	genericSymbols []string
	symbolMap      map[string]string
	keywordMap     []KeywordEntry

	defaultSymbol string
	onxIconMap    map[string]string

	resolver *Resolver
}

// Default returns a registry running on the built-in tables.
func Default() *Registry {
	r := &Registry{
		unknownIconPolicy: PolicyKeepPointAndAppend,
		defaultIcon:       DefaultIcon,
		defaultColor:      DefaultIconColor,
		genericSymbols:    DefaultGenericSymbols(),
		symbolMap:         DefaultSymbolMap(),
		keywordMap:        DefaultKeywordMap(),
		defaultSymbol:     DefaultSymbol,
		onxIconMap:        DefaultOnxIconMap(),
	}
	r.rebuild()
	return r
}

// Load reads and parses a mapping document file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read icon mappings: %w", err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse icon mappings %s: %w", path, err)
	}
	return r, nil
}

// Parse builds a registry from mapping document bytes. The document must
// carry version 1; every icon name in it must canonicalize.
func Parse(data []byte) (*Registry, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}

	if v, ok := raw["version"].(int); !ok || v != 1 {
		return nil, fmt.Errorf("unsupported icon mappings version: %v (expected 1)", raw["version"])
	}

	r := &Registry{
		defaultIcon:   DefaultIcon,
		defaultColor:  DefaultIconColor,
		defaultSymbol: DefaultSymbol,
		symbolMap:     map[string]string{},
		onxIconMap:    map[string]string{},
	}

	policies, err := asMap(raw["policies"], "policies")
	if err != nil {
		return nil, err
	}
	policy := strings.TrimSpace(stringAt(policies, "unknown_icon_handling"))
	if policy != "" && policy != PolicyKeepPointAndAppend {
		return nil, fmt.Errorf("policies.unknown_icon_handling must be one of: %s", PolicyKeepPointAndAppend)
	}
	if policy == "" {
		policy = PolicyKeepPointAndAppend
	}
	r.unknownIconPolicy = policy

	c2o, err := asMap(raw["caltopo_to_onx"], "caltopo_to_onx")
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(stringAt(c2o, "default_icon")); v != "" {
		icon, ok := CanonicalIconName(v)
		if !ok {
			return nil, &TableError{Table: "caltopo_to_onx", Key: "default_icon", Problem: fmt.Sprintf("%q is not a known icon", v)}
		}
		r.defaultIcon = icon
	}

	generics, err := asList(c2o["generic_symbols"], "caltopo_to_onx.generic_symbols")
	if err != nil {
		return nil, err
	}
	for _, g := range generics {
		if s := normSymbol(fmt.Sprint(g)); s != "" {
			r.genericSymbols = append(r.genericSymbols, s)
		}
	}

	symbolMap, err := asMap(c2o["symbol_map"], "caltopo_to_onx.symbol_map")
	if err != nil {
		return nil, err
	}
	for k, v := range symbolMap {
		key := normSymbol(k)
		val := strings.TrimSpace(fmt.Sprint(v))
		if key == "" || val == "" {
			continue
		}
		icon, ok := CanonicalIconName(val)
		if !ok {
			return nil, &TableError{Table: "caltopo_to_onx.symbol_map", Key: key, Problem: fmt.Sprintf("%q is not a known icon", val)}
		}
		r.symbolMap[key] = icon
	}

	entries, err := asList(c2o["keyword_map"], "caltopo_to_onx.keyword_map")
	if err != nil {
		return nil, err
	}
	for i, item := range entries {
		entry, err := asMap(item, fmt.Sprintf("caltopo_to_onx.keyword_map[%d]", i))
		if err != nil {
			return nil, err
		}
		name := strings.TrimSpace(stringAt(entry, "icon"))
		if name == "" {
			return nil, &TableError{Table: "caltopo_to_onx.keyword_map", Key: fmt.Sprint(i), Problem: "missing icon"}
		}
		icon, ok := CanonicalIconName(name)
		if !ok {
			return nil, &TableError{Table: "caltopo_to_onx.keyword_map", Key: name, Problem: "not a known icon"}
		}
		kws, err := asList(entry["keywords"], fmt.Sprintf("caltopo_to_onx.keyword_map[%d].keywords", i))
		if err != nil {
			return nil, err
		}
		var cleaned []string
		for _, kw := range kws {
			if s := strings.TrimSpace(fmt.Sprint(kw)); s != "" {
				cleaned = append(cleaned, s)
			}
		}
		r.keywordMap = append(r.keywordMap, KeywordEntry{Icon: icon, Keywords: cleaned})
	}

	o2c, err := asMap(raw["onx_to_caltopo"], "onx_to_caltopo")
	if err != nil {
		return nil, err
	}
	if v := normSymbol(stringAt(o2c, "default_symbol")); v != "" {
		r.defaultSymbol = v
	}
	iconMap, err := asMap(o2c["icon_map"], "onx_to_caltopo.icon_map")
	if err != nil {
		return nil, err
	}
	for k, v := range iconMap {
		icon, ok := CanonicalIconName(strings.TrimSpace(k))
		if !ok {
			return nil, &TableError{Table: "onx_to_caltopo.icon_map", Key: k, Problem: "not a known icon"}
		}
		if sym := normSymbol(fmt.Sprint(v)); sym != "" {
			r.onxIconMap[icon] = sym
		}
	}

	r.rebuild()
	return r, nil
}

// Overrides carries user-level adjustments layered on top of whatever
// document the registry was built from. User entries win on collision;
// user keyword entries outrank every built-in entry.
type Overrides struct {
	SymbolMappings  map[string]string
	KeywordMappings []KeywordEntry
	DefaultIcon     string
	DefaultColor    string
}

// ApplyOverrides merges user overrides into the registry and rebuilds
// the resolver. An unknown icon name anywhere in the overrides is an
// error and leaves the registry unchanged.
func (r *Registry) ApplyOverrides(o Overrides) error {
	symbolUpdates := make(map[string]string, len(o.SymbolMappings))
	for k, v := range o.SymbolMappings {
		key := normSymbol(k)
		if key == "" {
			continue
		}
		icon, ok := CanonicalIconName(strings.TrimSpace(v))
		if !ok {
			return &TableError{Table: "symbol_mappings", Key: key, Problem: fmt.Sprintf("%q is not a known icon", v)}
		}
		symbolUpdates[key] = icon
	}

	prepended := make([]KeywordEntry, 0, len(o.KeywordMappings))
	overridden := make(map[string]bool, len(o.KeywordMappings))
	for _, e := range o.KeywordMappings {
		icon, ok := CanonicalIconName(strings.TrimSpace(e.Icon))
		if !ok {
			return &TableError{Table: "keyword_mappings", Key: e.Icon, Problem: "not a known icon"}
		}
		prepended = append(prepended, KeywordEntry{Icon: icon, Keywords: e.Keywords})
		overridden[icon] = true
	}

	defaultIcon := r.defaultIcon
	if v := strings.TrimSpace(o.DefaultIcon); v != "" {
		icon, ok := CanonicalIconName(v)
		if !ok {
			return fmt.Errorf("invalid default_icon %q (not a known icon)", o.DefaultIcon)
		}
		defaultIcon = icon
	}

	for k, v := range symbolUpdates {
		r.symbolMap[k] = v
	}
	if len(prepended) > 0 {
		kept := make([]KeywordEntry, 0, len(r.keywordMap))
		for _, e := range r.keywordMap {
			if !overridden[e.Icon] {
				kept = append(kept, e)
			}
		}
		r.keywordMap = append(prepended, kept...)
	}
	r.defaultIcon = defaultIcon
	if v := strings.TrimSpace(o.DefaultColor); v != "" {
		r.defaultColor = palette.Quantize(v, palette.Waypoint)
	}

	r.rebuild()
	return nil
}

func (r *Registry) rebuild() {
	r.resolver = NewResolver(r.symbolMap, r.keywordMap, r.defaultIcon, r.genericSymbols)
}

// Resolver returns the forward resolver built from the current tables.
func (r *Registry) Resolver() *Resolver { return r.resolver }

// DefaultIconName returns the fallback icon.
func (r *Registry) DefaultIconName() string { return r.defaultIcon }

// DefaultWaypointColor returns the fallback waypoint color.
func (r *Registry) DefaultWaypointColor() string { return r.defaultColor }

// WaypointColorFor returns the default color for an icon, falling back to
// the registry's configured default when the color table has no entry.
func (r *Registry) WaypointColorFor(icon string) string {
	if c, ok := iconColors[icon]; ok {
		return c
	}
	return r.defaultColor
}

// DefaultSymbolName returns the reverse-mapping fallback symbol.
func (r *Registry) DefaultSymbolName() string { return r.defaultSymbol }

// GenericSymbols returns a copy of the generic symbol list.
func (r *Registry) GenericSymbols() []string {
	return append([]string(nil), r.genericSymbols...)
}

// KeywordEntries returns a copy of the keyword table in priority order.
func (r *Registry) KeywordEntries() []KeywordEntry {
	return append([]KeywordEntry(nil), r.keywordMap...)
}

// SymbolMappings returns a copy of the symbol table.
func (r *Registry) SymbolMappings() map[string]string {
	out := make(map[string]string, len(r.symbolMap))
	for k, v := range r.symbolMap {
		out[k] = v
	}
	return out
}

// OnxIconMappings returns a copy of the reverse icon table.
func (r *Registry) OnxIconMappings() map[string]string {
	out := make(map[string]string, len(r.onxIconMap))
	for k, v := range r.onxIconMap {
		out[k] = v
	}
	return out
}

// ShouldAppendUnknownIcon reports whether unmapped onX icons get their
// name appended to the waypoint description on the reverse conversion.
func (r *Registry) ShouldAppendUnknownIcon() bool {
	return r.unknownIconPolicy == PolicyKeepPointAndAppend
}

// Resolve maps one waypoint to an icon decision.
func (r *Registry) Resolve(title, description, symbol string) Decision {
	return r.resolver.Resolve(title, description, symbol)
}

// MapOnxIconToCalTopoSymbol maps an onX icon back to a CalTopo marker
// symbol. Missing or unknown icons take the default symbol.
func (r *Registry) MapOnxIconToCalTopoSymbol(icon string) (string, MappingSource) {
	icon = strings.TrimSpace(icon)
	if icon == "" {
		return r.defaultSymbol, MappingDefault
	}
	if sym, ok := r.onxIconMap[icon]; ok {
		return sym, MappingDirect
	}
	return r.defaultSymbol, MappingDefault
}

// OnxFuzzySuggestions proposes the closest CalTopo symbols for an onX
// icon. Advisory only; nothing is auto-mapped from these.
func (r *Registry) OnxFuzzySuggestions(icon string, validSymbols []string, topN int) ([]Suggestion, error) {
	m, err := NewFuzzyMatcher(validSymbols)
	if err != nil {
		return nil, err
	}
	return m.FindBestMatches(icon, topN), nil
}

func normSymbol(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func stringAt(m map[string]any, key string) string {
	if v, ok := m[key]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

func asMap(v any, label string) (map[string]any, error) {
	if v == nil {
		return map[string]any{}, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must be a mapping", label)
	}
	return m, nil
}

func asList(v any, label string) ([]any, error) {
	if v == nil {
		return nil, nil
	}
	l, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be a list", label)
	}
	return l, nil
}
