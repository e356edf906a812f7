package icons

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/moltude/cairn/internal/text"
)

// Suggestion is one advisory fuzzy match with its confidence.
type Suggestion struct {
	Name  string
	Score float64
}

var (
	symbolPrefixRE = regexp.MustCompile(`(?i)^(marker-|icon-|symbol-|caltopo-)`)
	symbolSuffixRE = regexp.MustCompile(`(-\d+|_\d+)$`)
)

// FuzzyMatcher scores how close a label is to each name in a fixed
// candidate list. It backs the advisory suggestions in reports; nothing
// is ever auto-mapped from a fuzzy score.
type FuzzyMatcher struct {
	candidates []string
	synonyms   map[string][]string
}

// NewFuzzyMatcher builds a matcher over the candidate names. The
// candidate list and the synonym table are checked structurally here so
// a typo in either fails at startup, not mid-suggestion.
func NewFuzzyMatcher(candidates []string) (*FuzzyMatcher, error) {
	for i, c := range candidates {
		if strings.TrimSpace(c) == "" {
			return nil, fmt.Errorf("fuzzy matcher: candidate %d is empty", i)
		}
	}
	syn := synonymMap()
	if err := validateSynonyms(syn); err != nil {
		return nil, fmt.Errorf("fuzzy matcher: %w", err)
	}
	return &FuzzyMatcher{candidates: candidates, synonyms: syn}, nil
}

func validateSynonyms(syn map[string][]string) error {
	for key, related := range syn {
		if strings.TrimSpace(key) == "" {
			return errors.New("synonym table: empty key")
		}
		if len(related) == 0 {
			return fmt.Errorf("synonym table: key %q has no members", key)
		}
		for _, term := range related {
			if strings.TrimSpace(term) == "" {
				return fmt.Errorf("synonym table: key %q has an empty member", key)
			}
		}
	}
	return nil
}

// FindBestMatches returns the topN closest candidates for a symbol,
// highest confidence first. Ties keep candidate list order.
func (m *FuzzyMatcher) FindBestMatches(symbol string, topN int) []Suggestion {
	normalized := normalizeSymbol(symbol)

	scores := make([]Suggestion, 0, len(m.candidates))
	for _, name := range m.candidates {
		scores = append(scores, Suggestion{Name: name, Score: m.similarity(normalized, name)})
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })

	if topN > len(scores) {
		topN = len(scores)
	}
	return scores[:topN]
}

// normalizeSymbol strips vendor prefixes and numeric suffixes so that
// "marker-climb-1" and "climb" compare equal.
func normalizeSymbol(symbol string) string {
	symbol = symbolPrefixRE.ReplaceAllString(symbol, "")
	symbol = symbolSuffixRE.ReplaceAllString(symbol, "")
	symbol = strings.ReplaceAll(symbol, "_", " ")
	symbol = strings.ReplaceAll(symbol, "-", " ")
	return strings.TrimSpace(strings.ToLower(symbol))
}

// similarity combines exact, substring, character-sequence, synonym and
// word-overlap evidence into one confidence in [0, 1].
func (m *FuzzyMatcher) similarity(symbol, name string) float64 {
	nameLower := strings.ToLower(name)

	if symbol == nameLower {
		return 1.0
	}
	if strings.Contains(nameLower, symbol) {
		return 0.95
	}
	if strings.Contains(symbol, nameLower) {
		return 0.9
	}

	seqScore := text.SequenceRatio(symbol, nameLower)
	synScore := m.synonymScore(symbol, nameLower)
	wordScore := wordOverlap(symbol, nameLower)

	return seqScore*0.4 + synScore*0.4 + wordScore*0.2
}

// synonymScore checks both directions through the synonym table. The
// symbol side scores slightly higher than the name side so that a known
// field term beats an incidental overlap.
func (m *FuzzyMatcher) synonymScore(symbol, nameLower string) float64 {
	for key, related := range m.synonyms {
		if strings.Contains(symbol, key) || strings.Contains(key, symbol) {
			for _, term := range related {
				if strings.Contains(nameLower, term) {
					return 0.85
				}
			}
		}
	}
	for key, related := range m.synonyms {
		if strings.Contains(nameLower, key) || strings.Contains(key, nameLower) {
			for _, term := range related {
				if strings.Contains(symbol, term) {
					return 0.8
				}
			}
		}
	}
	return 0.0
}

// wordOverlap is the Jaccard similarity of the two word sets.
func wordOverlap(symbol, nameLower string) float64 {
	symbolWords := strings.Fields(symbol)
	nameWords := strings.Fields(nameLower)
	if len(symbolWords) == 0 || len(nameWords) == 0 {
		return 0.0
	}

	set := make(map[string]bool, len(symbolWords))
	for _, w := range symbolWords {
		set[w] = true
	}
	union := make(map[string]bool, len(symbolWords)+len(nameWords))
	for _, w := range symbolWords {
		union[w] = true
	}
	inter := 0
	seen := make(map[string]bool, len(nameWords))
	for _, w := range nameWords {
		union[w] = true
		if set[w] && !seen[w] {
			inter++
			seen[w] = true
		}
	}
	return float64(inter) / float64(len(union))
}

// synonymMap groups field vocabulary that names the same thing. Keys and
// members are matched as substrings on both sides.
func synonymMap() map[string][]string {
	return map[string][]string{
		// Climbing
		"climb": {"climbing", "rappel", "caving", "ascent"},

		// Camping
		"camp": {"campsite", "campground", "camping", "camp area", "camp backcountry"},
		"tent": {"campsite", "camping", "camp"},
		"bivy": {"camp backcountry", "bivouac"},

		// Water
		"water":  {"creek", "stream", "lake", "river", "spring", "water source"},
		"spring": {"water source", "water"},
		"falls":  {"waterfall"},
		"hot":    {"hot spring", "thermal", "geyser"},

		// Winter sports
		"ski":       {"skiing", "xc skiing", "ski touring", "backcountry"},
		"skin":      {"ski touring", "skin track", "uptrack"},
		"tour":      {"ski touring", "touring"},
		"snowboard": {"snowboarder", "boarding"},
		"snow":      {"snowmobile", "snowpark", "snow pit"},

		// Hazards
		"danger":    {"hazard", "caution", "warning"},
		"avy":       {"avalanche", "hazard", "slide"},
		"avalanche": {"hazard", "avy", "slide path"},

		// Transportation
		"car":     {"parking", "vehicle", "lot"},
		"parking": {"lot", "trailhead"},
		"bike":    {"bicycle", "mountain biking", "dirt bike"},
		"atv":     {"quad", "4x4"},

		// Trails
		"trail":     {"trailhead", "hike", "path"},
		"trailhead": {"trail head", "th", "parking"},
		"hike":      {"hiking", "backpacker", "mountaineer"},

		// Peaks
		"peak":   {"summit", "mountain", "top"},
		"summit": {"peak", "top", "mountain"},

		// Observation
		"view":    {"viewpoint", "vista", "overlook", "lookout"},
		"camera":  {"photo", "picture"},
		"lookout": {"observation", "tower", "view"},

		// Shelters
		"cabin":   {"hut", "yurt", "shelter"},
		"shelter": {"refuge", "cabin", "house"},

		// Water activities
		"boat":   {"canoe", "kayak", "raft"},
		"paddle": {"canoe", "kayak"},
		"raft":   {"rafting", "put in", "take out"},

		// Wildlife
		"bird": {"eagle"},
		"fish": {"fishing"},

		// Facilities
		"food":      {"restaurant", "food source", "aid station"},
		"emergency": {"phone", "sos", "rescue"},
	}
}
