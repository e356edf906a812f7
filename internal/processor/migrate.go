package processor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/moltude/cairn/internal/caltopo"
	"github.com/moltude/cairn/internal/dedupe"
	"github.com/moltude/cairn/internal/geo"
	"github.com/moltude/cairn/internal/icons"
	"github.com/moltude/cairn/internal/onx"
	"github.com/moltude/cairn/internal/report"
	"github.com/moltude/cairn/internal/trace"
)

// MigrateOptions control one onX to CalTopo migration run.
type MigrateOptions struct {
	KMLPath   string // optional onX KML export merged into the GPX
	OutputDir string
	BaseName  string // output filename stem; empty uses the GPX stem

	DedupeWaypoints bool
	DedupeShapes    bool

	DescriptionMode    string // caltopo.DescriptionNotesOnly or DescriptionDebug
	RouteColorStrategy string // caltopo.RouteColorPalette, DefaultBlue or None
	Compact            bool
}

// MigrateResult reports what a migration wrote and dropped.
type MigrateResult struct {
	PrimaryPath    string
	DroppedPath    string
	SummaryPath    string
	IconReportPath string

	Waypoints int
	Tracks    int
	Shapes    int

	WaypointReport *dedupe.WaypointReport // nil when waypoint dedup was off
	ShapeReport    *dedupe.ShapeReport    // nil when shape dedup was off
	Merge          *MergeReport           // nil without a KML input
}

// Migrator turns onX exports back into a CalTopo-importable GeoJSON
// document, deduplicating the copies onX accumulates along the way.
type Migrator struct {
	Registry *icons.Registry // nil uses the built-in tables
	Catalog  *icons.Catalog  // nil skips the catalog append
	Trace    *trace.Writer   // nil disables tracing
	Clock    clockwork.Clock // nil uses the wall clock
}

// Run migrates the GPX export at gpxPath. Every run writes the primary
// document, the dropped-shapes document and a summary; the icon report
// is best effort.
func (m *Migrator) Run(gpxPath string, opts MigrateOptions) (*MigrateResult, error) {
	tw := m.Trace
	tw.Emit(trace.Event{"event": "run.start", "command": "migrate.onx-to-caltopo"})
	defer tw.Emit(trace.Event{"event": "run.end"})

	doc, err := onx.ReadGPX(gpxPath, tw)
	if err != nil {
		return nil, err
	}

	result := &MigrateResult{}

	if opts.KMLPath != "" {
		overlay, err := onx.ReadKML(opts.KMLPath, tw)
		if err != nil {
			return nil, err
		}
		result.Merge = Merge(doc, overlay, tw)
		log.Info().
			Int("added", result.Merge.Added).
			Int("decisions", len(result.Merge.Decisions)).
			Msg("Merged KML export into GPX document")
	}

	warnDataQuality(tw, doc)
	emitInventory(tw, "inventory.before_dedup", doc)

	if opts.DedupeWaypoints {
		result.WaypointReport = dedupe.ApplyWaypoints(doc)
	}

	emitInventory(tw, "inventory.after_dedup", doc)
	if result.WaypointReport != nil {
		ev := trace.Event{"event": "dedup.report"}
		for k, v := range report.WaypointDedupInventory(result.WaypointReport) {
			ev[k] = v
		}
		tw.Emit(ev)
	}

	var droppedItems []geo.Item
	if opts.DedupeShapes {
		droppedItems, result.ShapeReport = dedupe.ApplyShapes(doc)
	}

	result.Waypoints = len(doc.Waypoints())
	result.Tracks = len(doc.Tracks())
	result.Shapes = len(doc.Shapes())

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	base := strings.TrimSpace(opts.BaseName)
	if base == "" {
		base = inputStem(gpxPath)
	}
	result.PrimaryPath = filepath.Join(opts.OutputDir, base+".json")
	result.DroppedPath = filepath.Join(opts.OutputDir, base+"_dropped_shapes.json")

	writer := &caltopo.Writer{
		Registry:           m.registry(),
		Trace:              tw,
		DescriptionMode:    opts.DescriptionMode,
		RouteColorStrategy: opts.RouteColorStrategy,
		Compact:            opts.Compact,
	}
	if err := writer.Write(doc, result.PrimaryPath); err != nil {
		return nil, err
	}
	log.Info().
		Str("path", result.PrimaryPath).
		Int("waypoints", result.Waypoints).
		Int("tracks", result.Tracks).
		Int("shapes", result.Shapes).
		Msg("Wrote CalTopo GeoJSON")

	// The dropped-shapes document is written even when empty so a
	// CalTopo import of it is always possible to audit a dedup run.
	droppedDoc := &geo.Document{
		Folders: append([]*geo.Folder(nil), doc.Folders...),
		Items:   droppedItems,
		Metadata: map[string]any{
			"source":  "cairn_shape_dedup_dropped",
			"primary": result.PrimaryPath,
		},
	}
	if err := writer.Write(droppedDoc, result.DroppedPath); err != nil {
		return nil, err
	}

	m.writeIconReport(doc, gpxPath, opts, base, result)

	summary := &report.ShapeDedupSummary{
		GPXPath:          gpxPath,
		KMLPath:          opts.KMLPath,
		PrimaryPath:      result.PrimaryPath,
		DroppedPath:      result.DroppedPath,
		WaypointsDropped: waypointsDropped(result.WaypointReport),
		Shapes:           result.ShapeReport,
	}
	result.SummaryPath = filepath.Join(opts.OutputDir, base+"_SUMMARY.md")
	if err := summary.Write(result.SummaryPath); err != nil {
		return nil, fmt.Errorf("write summary: %w", err)
	}

	return result, nil
}

// writeIconReport records how every onX icon in the document maps back
// to a CalTopo marker symbol. Report problems never fail the migration.
func (m *Migrator) writeIconReport(doc *geo.Document, gpxPath string, opts MigrateOptions, base string, result *MigrateResult) {
	reg := m.registry()
	inventory := reg.CollectOnxIconInventory(doc)
	notes := []string{"Input GPX: `" + filepath.Base(gpxPath) + "`"}
	if opts.KMLPath != "" {
		notes = append(notes, "Input KML: `"+filepath.Base(opts.KMLPath)+"`")
	}

	rep := &report.IconReport{
		Title:     "OnX → CalTopo icon mapping report",
		Notes:     notes,
		Inventory: inventory,
		Rows:      reg.CollectOnxIconMappingRows(doc),
		Generated: m.clock().Now(),
	}
	path := filepath.Join(opts.OutputDir, base+"_ICON_REPORT.md")
	if err := rep.Write(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Could not write icon report")
	} else {
		result.IconReportPath = path
	}

	if m.Catalog != nil {
		if err := m.Catalog.AppendOnxIconInventory(inventory); err != nil {
			log.Warn().Err(err).Str("path", m.Catalog.Path()).Msg("Could not update icon catalog")
		}
	}
}

func (m *Migrator) registry() *icons.Registry {
	if m.Registry != nil {
		return m.Registry
	}
	return icons.Default()
}

func (m *Migrator) clock() clockwork.Clock {
	if m.Clock != nil {
		return m.Clock
	}
	return clockwork.NewRealClock()
}

func emitInventory(tw *trace.Writer, event string, doc *geo.Document) {
	ev := trace.Event{"event": event}
	for k, v := range report.DocumentInventory(doc) {
		ev[k] = v
	}
	tw.Emit(ev)
}

// warnDataQuality surfaces input problems worth fixing at the source
// before importing the output anywhere. Warnings never stop a run.
func warnDataQuality(tw *trace.Writer, doc *geo.Document) {
	w := report.CheckDataQuality(doc)
	if w.Total() == 0 {
		return
	}
	log.Warn().
		Int("empty_names", len(w.EmptyNames)).
		Int("duplicate_names", len(w.DuplicateNames)).
		Int("suspicious_coords", len(w.SuspiciousCoords)).
		Int("empty_tracks", len(w.EmptyTracks)).
		Msg("Input data quality warnings")
	tw.Emit(trace.Event{"event": "quality.warnings", "total": w.Total(), "warnings": w})
}

func waypointsDropped(r *dedupe.WaypointReport) int {
	if r == nil {
		return 0
	}
	return r.DroppedCount()
}
