package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/moltude/cairn/internal/config"
	"github.com/moltude/cairn/internal/icons"
	"github.com/moltude/cairn/internal/logger"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Suggest        string `long:"suggest" value-name:"SYMBOL" description:"Suggest onX icons for a CalTopo marker symbol"`
	SuggestCalTopo string `long:"suggest-caltopo" value-name:"ICON" description:"Suggest CalTopo marker symbols for an onX icon"`
	Top            int    `long:"top" default:"5" description:"How many suggestions to show"`
	List           bool   `long:"list" description:"List every onX icon name"`
	Validate       string `long:"validate" value-name:"FILE" description:"Validate an icon mapping document or a cairn.yaml"`
	Template       string `long:"template" value-name:"FILE" description:"Write a starter cairn.yaml"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	actions := 0
	if opts.Suggest != "" {
		actions++
	}
	if opts.SuggestCalTopo != "" {
		actions++
	}
	if opts.List {
		actions++
	}
	if opts.Validate != "" {
		actions++
	}
	if opts.Template != "" {
		actions++
	}
	if actions != 1 {
		parser.WriteHelp(os.Stderr)
		log.Fatal().Msg("Exactly one of --suggest, --suggest-caltopo, --list, --validate, --template is required")
	}

	switch {
	case opts.List:
		listIcons()
	case opts.Suggest != "":
		suggest(opts.Suggest, opts.Top)
	case opts.SuggestCalTopo != "":
		suggestCalTopo(opts.SuggestCalTopo, opts.Top)
	case opts.Validate != "":
		validate(opts.Validate)
	case opts.Template != "":
		writeTemplate(opts.Template)
	}
}

func listIcons() {
	fmt.Printf("%d onX icon names:\n", len(icons.CanonicalIconNames))
	for _, name := range icons.CanonicalIconNames {
		fmt.Println("  " + name)
	}
}

func suggest(symbol string, top int) {
	reg := icons.Default()
	if mapped, ok := reg.SymbolMappings()[strings.ToLower(strings.TrimSpace(symbol))]; ok {
		fmt.Printf("%q already maps to %s\n", symbol, mapped)
		return
	}

	matcher, err := icons.NewFuzzyMatcher(icons.CanonicalIconNames)
	if err != nil {
		log.Fatal().Err(err).Msg("Icon vocabulary is unusable")
	}
	matches := matcher.FindBestMatches(symbol, top)
	if len(matches) == 0 {
		fmt.Printf("No suggestions for %q\n", symbol)
		return
	}

	fmt.Printf("Suggestions for %q:\n", symbol)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, m := range matches {
		fmt.Fprintf(w, "  %s\t%.2f\n", m.Name, m.Score)
	}
	_ = w.Flush()
	fmt.Println()
	fmt.Println("Add a symbol_mappings entry to cairn.yaml to make one permanent.")
}

// suggestCalTopo is the reverse direction: closest CalTopo symbols for
// an onX icon, drawn from every symbol the built-in tables know about.
func suggestCalTopo(icon string, top int) {
	reg := icons.Default()
	if sym, src := reg.MapOnxIconToCalTopoSymbol(icon); src == icons.MappingDirect {
		fmt.Printf("%q already maps to %s\n", icon, sym)
		return
	}

	symbols := knownCalTopoSymbols(reg)
	matches, err := reg.OnxFuzzySuggestions(icon, symbols, top)
	if err != nil {
		log.Fatal().Err(err).Msg("CalTopo symbol vocabulary is unusable")
	}
	if len(matches) == 0 {
		fmt.Printf("No suggestions for %q\n", icon)
		return
	}

	fmt.Printf("Suggestions for %q:\n", icon)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, m := range matches {
		fmt.Fprintf(w, "  %s\t%.2f\n", m.Name, m.Score)
	}
	_ = w.Flush()
	fmt.Println()
	fmt.Println("Add an onx_to_caltopo icon_map entry to your mapping document to make one permanent.")
}

// knownCalTopoSymbols collects every CalTopo marker symbol the registry
// names, on either side of its tables.
func knownCalTopoSymbols(reg *icons.Registry) []string {
	seen := make(map[string]bool)
	for sym := range reg.SymbolMappings() {
		seen[sym] = true
	}
	for _, sym := range reg.OnxIconMappings() {
		seen[sym] = true
	}
	out := make([]string, 0, len(seen))
	for sym := range seen {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// validate checks either file kind: mapping documents carry the
// caltopo_to_onx / onx_to_caltopo sections, everything else is treated
// as a user configuration.
func validate(path string) {
	if err := icons.ValidateIconColors(); err != nil {
		log.Fatal().Err(err).Msg("Built-in icon color table is unsound")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read file")
	}

	var probe map[string]any
	if err := yaml.Unmarshal(data, &probe); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Invalid YAML")
	}

	_, c2o := probe["caltopo_to_onx"]
	_, o2c := probe["onx_to_caltopo"]
	if c2o || o2c {
		reg, err := icons.Parse(data)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("Invalid icon mapping document")
		}
		fmt.Printf("%s: valid icon mapping document\n", path)
		fmt.Printf("  symbol_map entries:  %d\n", len(reg.SymbolMappings()))
		fmt.Printf("  keyword_map entries: %d\n", len(reg.KeywordEntries()))
		fmt.Printf("  icon_map entries:    %d\n", len(reg.OnxIconMappings()))
		fmt.Printf("  generic symbols:     %d\n", len(reg.GenericSymbols()))
		fmt.Printf("  default icon:        %s\n", reg.DefaultIconName())
		fmt.Printf("  default color:       %s\n", reg.DefaultWaypointColor())
		fmt.Printf("  default symbol:      %s\n", reg.DefaultSymbolName())
		return
	}

	cfg, err := config.Parse(data)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Invalid configuration")
	}
	if err := icons.Default().ApplyOverrides(cfg.Overrides()); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Invalid configuration")
	}
	fmt.Printf("%s: valid configuration\n", path)
}

func writeTemplate(path string) {
	if err := config.WriteTemplate(path); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to write template")
	}
	fmt.Printf("Wrote starter configuration to %s\n", path)
	fmt.Println("Edit it and place it next to your exports as cairn.yaml.")
}
