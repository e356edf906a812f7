package icons

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Source identifies which resolution step produced an icon choice.
type Source string

const (
	SourceSymbol  Source = "symbol"
	SourceKeyword Source = "keyword"
	SourceDefault Source = "default"
)

// Decision is the result of icon resolution with its explanation. Score
// semantics depend on the source: 1.0 or 0.9 for symbol matches, the raw
// keyword match count for keyword matches, 0 for the default.
type Decision struct {
	Icon         string
	Score        float64
	Source       Source
	Reasons      []string
	MatchedTerms []string
}

// KeywordEntry binds one icon to its trigger keywords. Entries live in an
// ordered list because list position is the tie-break priority.
type KeywordEntry struct {
	Icon     string   `yaml:"icon"`
	Keywords []string `yaml:"keywords"`
}

var tokenRE = regexp.MustCompile(`[a-z0-9]+`)

// Resolver picks the best onX icon for a waypoint. The marker symbol is
// the strongest signal when it is not generic; otherwise title and
// description keywords decide; otherwise the default icon applies.
//
// Resolution is pure: same inputs, same decision, no state.
type Resolver struct {
	symbolMap   map[string]string
	keywords    []KeywordEntry
	defaultIcon string
	generics    map[string]bool
}

// NewResolver builds a resolver over normalized copies of the tables.
func NewResolver(symbolMap map[string]string, keywords []KeywordEntry, defaultIcon string, genericSymbols []string) *Resolver {
	r := &Resolver{
		symbolMap:   make(map[string]string, len(symbolMap)),
		defaultIcon: defaultIcon,
		generics:    make(map[string]bool, len(genericSymbols)),
	}
	for k, v := range symbolMap {
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if k != "" && v != "" {
			r.symbolMap[k] = v
		}
	}
	for _, g := range genericSymbols {
		if g = strings.ToLower(strings.TrimSpace(g)); g != "" {
			r.generics[g] = true
		}
	}
	for _, e := range keywords {
		icon := strings.TrimSpace(e.Icon)
		if icon == "" {
			continue
		}
		cleaned := make([]string, 0, len(e.Keywords))
		for _, kw := range e.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				cleaned = append(cleaned, kw)
			}
		}
		r.keywords = append(r.keywords, KeywordEntry{Icon: icon, Keywords: cleaned})
	}
	return r
}

// IsGeneric reports whether a symbol carries no semantic signal.
func (r *Resolver) IsGeneric(symbol string) bool {
	return r.generics[strings.ToLower(strings.TrimSpace(symbol))]
}

// HasSymbolMapping reports whether the symbol has an exact table entry.
func (r *Resolver) HasSymbolMapping(symbol string) bool {
	_, ok := r.symbolMap[strings.ToLower(strings.TrimSpace(symbol))]
	return ok
}

// Resolve picks an icon for one waypoint.
func (r *Resolver) Resolve(title, description, symbol string) Decision {
	symbolNorm := strings.ToLower(strings.TrimSpace(symbol))

	if symbolNorm != "" && !r.generics[symbolNorm] {
		if icon, ok := r.symbolMap[symbolNorm]; ok {
			return Decision{
				Icon:         icon,
				Score:        1.0,
				Source:       SourceSymbol,
				Reasons:      []string{fmt.Sprintf("symbol exact match '%s' -> '%s'", symbolNorm, icon)},
				MatchedTerms: []string{symbolNorm},
			}
		}

		// Substring match: prefer the most specific key. Length ties break
		// on the lexicographically later key so map order cannot matter.
		var bestKey, bestIcon string
		for key, icon := range r.symbolMap {
			if !strings.Contains(symbolNorm, key) {
				continue
			}
			if len(key) > len(bestKey) || (len(key) == len(bestKey) && key > bestKey) {
				bestKey, bestIcon = key, icon
			}
		}
		if bestKey != "" {
			return Decision{
				Icon:         bestIcon,
				Score:        0.9,
				Source:       SourceSymbol,
				Reasons:      []string{fmt.Sprintf("symbol substring match '%s' in '%s' -> '%s'", bestKey, symbolNorm, bestIcon)},
				MatchedTerms: []string{bestKey},
			}
		}
	}

	text := strings.ToLower(title + " " + description)
	tokens := make(map[string]bool)
	for _, tok := range tokenRE.FindAllString(text, -1) {
		tokens[tok] = true
	}

	var best *Decision
	for _, entry := range r.keywords {
		var matched []string
		for _, kw := range entry.Keywords {
			if strings.Contains(kw, " ") {
				// Phrases match as substrings of the joined text.
				if strings.Contains(text, kw) {
					matched = append(matched, kw)
				}
			} else if tokens[kw] {
				// Single words match whole tokens only, so "th" does not
				// fire inside "path".
				matched = append(matched, kw)
			}
		}
		if len(matched) == 0 {
			continue
		}

		d := Decision{
			Icon:         entry.Icon,
			Score:        float64(len(matched)),
			Source:       SourceKeyword,
			Reasons:      []string{fmt.Sprintf("keyword matches for '%s': %s", entry.Icon, strings.Join(matched, ", "))},
			MatchedTerms: matched,
		}

		// Higher match count wins; equal counts keep the earlier entry,
		// which is the configured priority order.
		if best == nil || len(matched) > len(best.MatchedTerms) {
			best = &d
		}
	}
	if best != nil {
		return *best
	}

	return Decision{
		Icon:    r.defaultIcon,
		Score:   0,
		Source:  SourceDefault,
		Reasons: []string{fmt.Sprintf("default icon '%s'", r.defaultIcon)},
	}
}

// UnmappedSymbol is one report row for a symbol with no table entry.
type UnmappedSymbol struct {
	Symbol   string
	Count    int
	Examples []string
}

// UnmappedTracker accumulates symbols that have no exact mapping. Each
// run owns its own tracker, so repeated or concurrent conversions in one
// process cannot bleed observations into each other.
type UnmappedTracker struct {
	resolver *Resolver
	order    []string
	titles   map[string][]string
}

// NewUnmappedTracker returns an empty tracker bound to the resolver whose
// tables decide what counts as unmapped.
func NewUnmappedTracker(r *Resolver) *UnmappedTracker {
	return &UnmappedTracker{resolver: r, titles: make(map[string][]string)}
}

// Track records one observed symbol. Generic symbols are skipped: they
// are meant to fall through to keyword matching.
func (t *UnmappedTracker) Track(symbol, title string) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" || t.resolver.IsGeneric(symbol) || t.resolver.HasSymbolMapping(symbol) {
		return
	}
	if _, seen := t.titles[symbol]; !seen {
		t.order = append(t.order, symbol)
	}
	t.titles[symbol] = append(t.titles[symbol], title)
}

// HasUnmapped reports whether anything was recorded.
func (t *UnmappedTracker) HasUnmapped() bool { return len(t.order) > 0 }

// Report returns rows in first-seen order with up to three example titles.
func (t *UnmappedTracker) Report() []UnmappedSymbol {
	out := make([]UnmappedSymbol, 0, len(t.order))
	for _, sym := range t.order {
		titles := t.titles[sym]
		examples := make([]string, 0, 3)
		for _, title := range titles {
			if title == "" || len(examples) >= 3 {
				continue
			}
			examples = append(examples, title)
		}
		out = append(out, UnmappedSymbol{Symbol: sym, Count: len(titles), Examples: examples})
	}
	return out
}

// SortedSymbols returns the unmapped symbols ordered by descending count
// then name, for stable report output.
func (t *UnmappedTracker) SortedSymbols() []UnmappedSymbol {
	rows := t.Report()
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Symbol < rows[j].Symbol
	})
	return rows
}
