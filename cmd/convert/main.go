package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"

	"github.com/moltude/cairn/internal/config"
	"github.com/moltude/cairn/internal/icons"
	"github.com/moltude/cairn/internal/logger"
	"github.com/moltude/cairn/internal/onx"
	"github.com/moltude/cairn/internal/processor"
	"github.com/moltude/cairn/internal/report"
	"github.com/moltude/cairn/internal/trace"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Output   string  `short:"o" long:"output"  env:"CAIRN_OUTPUT"  description:"Output directory for onX import files (default: ./onx_ready)"`
	Config   string  `short:"c" long:"config"  env:"CAIRN_CONFIG"  description:"Path to a cairn.yaml (default: auto-detect)"`
	Mapping  string  `long:"mapping" env:"CAIRN_MAPPING" description:"Replace the built-in icon mapping document"`
	DryRun   bool    `long:"dry-run"    description:"Preview the run without writing files"`
	NoSort   bool    `long:"no-sort"    description:"Keep document order instead of natural name order"`
	MaxGPXMB float64 `long:"max-gpx-mb" description:"Size budget per GPX file in MiB (default: 3.75)"`
	NoSplit  bool    `long:"no-split"   description:"Never split oversized GPX files into parts"`
	Prefix   string  `long:"prefix"     description:"Prefix for every output filename"`
	Trace    string  `long:"trace"      description:"Write a JSONL decision trace to this file"`

	Args struct {
		GeoJSON string `positional-arg-name:"geojson" description:"CalTopo GeoJSON export"`
	} `positional-args:"yes" required:"yes"`
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

	cfgPath := opts.Config
	if cfgPath == "" {
		cfgPath = config.Find()
	}
	cfg := &config.Config{}
	if cfgPath != "" {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfgPath).Msg("Failed to load configuration")
		}
		log.Debug().Str("path", cfgPath).Msg("Loaded configuration")
	}

	reg := icons.Default()
	if opts.Mapping != "" {
		var err error
		reg, err = icons.Load(opts.Mapping)
		if err != nil {
			log.Fatal().Err(err).Str("path", opts.Mapping).Msg("Failed to load icon mappings")
		}
	}
	if err := reg.ApplyOverrides(cfg.Overrides()); err != nil {
		log.Fatal().Err(err).Msg("Invalid icon overrides in configuration")
	}

	var tw *trace.Writer
	if opts.Trace != "" {
		var err error
		tw, err = trace.NewWriter(opts.Trace)
		if err != nil {
			log.Fatal().Err(err).Str("path", opts.Trace).Msg("Failed to open trace file")
		}
		defer func() { _ = tw.Close() }()
	}

	// Flags and env win over the cairn.yaml output block.
	outDir := opts.Output
	if outDir == "" {
		outDir = cfg.Output.Dir
	}
	if outDir == "" {
		outDir = "./onx_ready"
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = cfg.Output.Prefix
	}
	maxMB := opts.MaxGPXMB
	if maxMB <= 0 {
		maxMB = cfg.Output.MaxGPXMB
	}
	maxBytes := 0
	if maxMB > 0 {
		maxBytes = int(maxMB * 1024 * 1024)
	}

	conv := &processor.Converter{
		Registry: reg,
		Config:   cfg,
		Catalog:  icons.NewCatalog(icons.DefaultCatalogPath(), nil),
		Trace:    tw,
	}
	result, err := conv.Run(opts.Args.GeoJSON, processor.ConvertOptions{
		OutputDir:  outDir,
		ConfigPath: cfgPath,
		Prefix:     prefix,
		Sort:       !opts.NoSort && !cfg.Output.NoSort,
		Split:      !opts.NoSplit && !cfg.Output.NoSplit,
		MaxBytes:   maxBytes,
		DryRun:     opts.DryRun,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Conversion failed")
	}

	if result.Preview != nil {
		fmt.Print(result.Preview.Render())
		return
	}

	for _, u := range result.Unmapped {
		log.Warn().Str("symbol", u.Symbol).Int("count", u.Count).Msg("Marker symbol has no icon mapping")
	}
	if len(result.Unmapped) > 0 {
		log.Warn().Msg("Add symbol_mappings entries to cairn.yaml to map them")
	}

	if out := report.RenderNameChanges("waypoints", nameRows(result.Changes.Waypoints)); out != "" {
		fmt.Print(out)
		fmt.Println()
	}
	if out := report.RenderNameChanges("tracks", nameRows(result.Changes.Tracks)); out != "" {
		fmt.Print(out)
		fmt.Println()
	}
	fmt.Print(report.RenderManifest(result.Files))
	if result.IconReportPath != "" {
		fmt.Printf("\nIcon mapping report: %s\n", result.IconReportPath)
	}
}

func nameRows(changes []onx.NameChange) []report.NameChangeRow {
	rows := make([]report.NameChangeRow, len(changes))
	for i, c := range changes {
		rows[i] = report.NameChangeRow{Before: c.Before, After: c.After}
	}
	return rows
}
