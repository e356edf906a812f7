package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"

	"github.com/moltude/cairn/internal/caltopo"
	"github.com/moltude/cairn/internal/icons"
	"github.com/moltude/cairn/internal/logger"
	"github.com/moltude/cairn/internal/processor"
	"github.com/moltude/cairn/internal/trace"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	KML       string `long:"kml" env:"CAIRN_KML" description:"Matching onX KML export to merge (recovers polygons)"`
	OutputDir string `short:"o" long:"output-dir" env:"CAIRN_OUTPUT" description:"Output directory" default:"./caltopo_ready"`
	Name      string `long:"name" description:"Base name for output files (default: GPX filename)"`

	NoDedupeWaypoints bool `long:"no-dedupe-waypoints" description:"Keep duplicate waypoints"`
	NoDedupeShapes    bool `long:"no-dedupe-shapes"    description:"Keep duplicate tracks and polygons"`

	DescriptionMode string `long:"description-mode"     description:"Feature descriptions: notes-only or debug" default:"notes-only"`
	RouteColor      string `long:"route-color-strategy" description:"Color for uncolored routes: palette, default-blue or none" default:"palette"`
	Compact         bool   `long:"compact" description:"Minify the GeoJSON output"`
	Trace           string `long:"trace"   description:"Write a JSONL decision trace to this file"`

	Args struct {
		GPX string `positional-arg-name:"gpx" description:"onX GPX export"`
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

	descMode, err := descriptionMode(opts.DescriptionMode)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}
	routeColor, err := routeColorStrategy(opts.RouteColor)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	var tw *trace.Writer
	if opts.Trace != "" {
		tw, err = trace.NewWriter(opts.Trace)
		if err != nil {
			log.Fatal().Err(err).Str("path", opts.Trace).Msg("Failed to open trace file")
		}
		defer func() { _ = tw.Close() }()
	}

	mig := &processor.Migrator{
		Catalog: icons.NewCatalog(icons.DefaultCatalogPath(), nil),
		Trace:   tw,
	}
	result, err := mig.Run(opts.Args.GPX, processor.MigrateOptions{
		KMLPath:            opts.KML,
		OutputDir:          opts.OutputDir,
		BaseName:           opts.Name,
		DedupeWaypoints:    !opts.NoDedupeWaypoints,
		DedupeShapes:       !opts.NoDedupeShapes,
		DescriptionMode:    descMode,
		RouteColorStrategy: routeColor,
		Compact:            opts.Compact,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}

	if r := result.WaypointReport; r != nil && r.DroppedCount() > 0 {
		log.Info().
			Int("groups", r.GroupCount()).
			Int("dropped", r.DroppedCount()).
			Msg("Merged duplicate waypoints")
	}
	if r := result.ShapeReport; r != nil && r.DroppedCount() > 0 {
		log.Info().
			Int("groups", r.GroupCount()).
			Int("dropped", r.DroppedCount()).
			Msg("Merged duplicate tracks and polygons")
	}

	fmt.Printf("Migrated %d waypoints, %d tracks, %d shapes\n",
		result.Waypoints, result.Tracks, result.Shapes)
	fmt.Println()
	fmt.Printf("Primary:        %s\n", result.PrimaryPath)
	fmt.Printf("Dropped shapes: %s\n", result.DroppedPath)
	fmt.Printf("Summary:        %s\n", result.SummaryPath)
	if result.IconReportPath != "" {
		fmt.Printf("Icon report:    %s\n", result.IconReportPath)
	}
}

// descriptionMode folds flag spellings onto the writer constants.
func descriptionMode(v string) (string, error) {
	switch normalizeOption(v) {
	case "notes_only", "notes":
		return caltopo.DescriptionNotesOnly, nil
	case "debug":
		return caltopo.DescriptionDebug, nil
	}
	return "", fmt.Errorf("--description-mode must be one of: notes-only, debug")
}

func routeColorStrategy(v string) (string, error) {
	switch normalizeOption(v) {
	case "palette":
		return caltopo.RouteColorPalette, nil
	case "default_blue", "defaultblue":
		return caltopo.RouteColorDefaultBlue, nil
	case "none":
		return caltopo.RouteColorNone, nil
	}
	return "", fmt.Errorf("--route-color-strategy must be one of: palette, default-blue, none")
}

func normalizeOption(v string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(v)), "-", "_")
}
