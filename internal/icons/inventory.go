package icons

import (
	"sort"
	"strings"

	"github.com/moltude/cairn/internal/geo"
	"github.com/moltude/cairn/internal/palette"
)

// missingLabel stands in for an absent icon or symbol in inventories.
const missingLabel = "(missing)"

// InventoryEntry is one aggregated row of incoming labels.
type InventoryEntry struct {
	Label    string
	Count    int
	Examples []string
}

// MappingRow is one aggregated row of the incoming-to-mapped table.
type MappingRow struct {
	Incoming string
	Mapped   string
	Source   string
	Count    int
	Examples []string
	Colors   []string
}

const (
	exampleLimit = 3
	colorLimit   = 3
)

// CollectOnxIconInventory counts waypoints per incoming onX icon.
func (r *Registry) CollectOnxIconInventory(doc *geo.Document) []InventoryEntry {
	counts := map[string]int{}
	examples := map[string][]string{}
	for _, wp := range doc.Waypoints() {
		icon := strings.TrimSpace(wp.Style.OnxIcon)
		if icon == "" {
			icon = missingLabel
		}
		counts[icon]++
		if wp.Name != "" && len(examples[icon]) < exampleLimit {
			examples[icon] = append(examples[icon], wp.Name)
		}
	}
	return sortedInventory(counts, examples)
}

// CollectOnxIconMappingRows reports, per incoming onX icon, the CalTopo
// symbol it maps to and how.
func (r *Registry) CollectOnxIconMappingRows(doc *geo.Document) []MappingRow {
	counts := map[string]int{}
	examples := map[string][]string{}
	colors := map[string][]string{}
	for _, wp := range doc.Waypoints() {
		icon := strings.TrimSpace(wp.Style.OnxIcon)
		if icon == "" {
			icon = missingLabel
		}
		counts[icon]++
		if wp.Name != "" && len(examples[icon]) < exampleLimit {
			examples[icon] = append(examples[icon], wp.Name)
		}
		if c := strings.TrimSpace(wp.Style.OnxColor); c != "" {
			colors[icon] = appendDistinct(colors[icon], c, colorLimit)
		}
	}

	labels := sortedLabels(counts)
	rows := make([]MappingRow, 0, len(labels))
	for _, icon := range labels {
		incoming := icon
		if icon == missingLabel {
			incoming = ""
		}
		mapped, src := r.MapOnxIconToCalTopoSymbol(incoming)
		rows = append(rows, MappingRow{
			Incoming: icon,
			Mapped:   mapped,
			Source:   string(src),
			Count:    counts[icon],
			Examples: examples[icon],
			Colors:   colors[icon],
		})
	}
	return rows
}

// CollectCalTopoSymbolInventory counts waypoints per incoming marker symbol.
func (r *Registry) CollectCalTopoSymbolInventory(doc *geo.Document) []InventoryEntry {
	counts := map[string]int{}
	examples := map[string][]string{}
	for _, wp := range doc.Waypoints() {
		sym := normSymbol(wp.Style.MarkerSymbol)
		if sym == "" {
			sym = missingLabel
		}
		counts[sym]++
		if wp.Name != "" && len(examples[sym]) < exampleLimit {
			examples[sym] = append(examples[sym], wp.Name)
		}
	}
	return sortedInventory(counts, examples)
}

// CollectCalTopoMappingRows resolves every waypoint and reports, per
// (symbol, icon, source) triple, the count, examples and the waypoint
// colors the conversion would emit.
func (r *Registry) CollectCalTopoMappingRows(doc *geo.Document) []MappingRow {
	type key struct {
		sym, icon, src string
	}
	counts := map[key]int{}
	examples := map[key][]string{}
	colors := map[key][]string{}

	for _, wp := range doc.Waypoints() {
		sym := normSymbol(wp.Style.MarkerSymbol)
		label := sym
		if label == "" {
			label = missingLabel
		}
		decision := r.Resolve(wp.Name, wp.Notes, sym)
		k := key{sym: label, icon: decision.Icon, src: string(decision.Source)}
		counts[k]++
		if wp.Name != "" && len(examples[k]) < exampleLimit {
			examples[k] = append(examples[k], wp.Name)
		}

		// Mirror the waypoint color policy of the conversion itself:
		// quantize a present marker color, otherwise take the per-icon
		// default.
		var color string
		if raw := strings.TrimSpace(wp.Style.MarkerColor); raw != "" {
			color = palette.Quantize(raw, palette.Waypoint)
		} else {
			color = IconColor(decision.Icon)
		}
		if color != "" {
			colors[k] = appendDistinct(colors[k], color, colorLimit)
		}
	}

	keys := make([]key, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		if keys[i].sym != keys[j].sym {
			return keys[i].sym < keys[j].sym
		}
		if keys[i].icon != keys[j].icon {
			return keys[i].icon < keys[j].icon
		}
		return keys[i].src < keys[j].src
	})

	rows := make([]MappingRow, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, MappingRow{
			Incoming: k.sym,
			Mapped:   k.icon,
			Source:   k.src,
			Count:    counts[k],
			Examples: examples[k],
			Colors:   colors[k],
		})
	}
	return rows
}

func sortedLabels(counts map[string]int) []string {
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return labels[i] < labels[j]
	})
	return labels
}

func sortedInventory(counts map[string]int, examples map[string][]string) []InventoryEntry {
	labels := sortedLabels(counts)
	out := make([]InventoryEntry, 0, len(labels))
	for _, label := range labels {
		out = append(out, InventoryEntry{Label: label, Count: counts[label], Examples: examples[label]})
	}
	return out
}

func appendDistinct(list []string, v string, limit int) []string {
	for _, have := range list {
		if have == v {
			return list
		}
	}
	if len(list) >= limit {
		return list
	}
	return append(list, v)
}
