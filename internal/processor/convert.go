// Package processor wires the readers, icon resolution, dedup and
// writers into the two end-to-end pipelines behind the CLI commands.
package processor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/moltude/cairn/internal/caltopo"
	"github.com/moltude/cairn/internal/config"
	"github.com/moltude/cairn/internal/geo"
	"github.com/moltude/cairn/internal/icons"
	"github.com/moltude/cairn/internal/onx"
	"github.com/moltude/cairn/internal/report"
	"github.com/moltude/cairn/internal/text"
	"github.com/moltude/cairn/internal/trace"
)

// maxItemsPerImport is the largest item count onX accepts in a single
// import file. Bigger folders are written as numbered parts.
const maxItemsPerImport = 2500

// ConvertOptions control one CalTopo to onX conversion run.
type ConvertOptions struct {
	OutputDir  string
	ConfigPath string // shown in the icon report notes when set
	Prefix     string // optional output filename prefix
	Sort       bool   // natural-sort items by name before writing
	Split      bool   // split oversized GPX into byte-budget parts
	MaxBytes   int    // byte budget per GPX file; 0 means the onX default
	DryRun     bool   // plan only, write nothing
}

// ConvertResult reports what a conversion run produced.
type ConvertResult struct {
	Files          []report.ManifestEntry
	Changes        *onx.NameChanges
	Unmapped       []icons.UnmappedSymbol
	Preview        *report.DryRun // set only on dry runs
	IconReportPath string
}

// Converter turns a CalTopo GeoJSON export into per-folder onX import
// files plus an icon mapping report.
type Converter struct {
	Registry *icons.Registry // nil uses the built-in tables
	Config   *config.Config  // nil behaves like an empty config
	Catalog  *icons.Catalog  // nil skips the catalog append
	Trace    *trace.Writer   // nil disables tracing
	Clock    clockwork.Clock // nil uses the wall clock
}

// Run converts the GeoJSON export at inputPath. Dry runs return a
// preview and touch nothing on disk.
func (c *Converter) Run(inputPath string, opts ConvertOptions) (*ConvertResult, error) {
	tw := c.Trace
	tw.Emit(trace.Event{"event": "run.start", "command": "convert.caltopo-to-onx"})
	defer tw.Emit(trace.Event{"event": "run.end"})

	doc, err := caltopo.ReadGeoJSON(inputPath)
	if err != nil {
		return nil, err
	}

	reg := c.registry()
	cfg := c.cfg()
	result := &ConvertResult{Changes: &onx.NameChanges{}}

	if cfg.UnmappedDetection() {
		tracker := icons.NewUnmappedTracker(reg.Resolver())
		for _, wp := range doc.Waypoints() {
			tracker.Track(wp.Style.MarkerSymbol, wp.Name)
		}
		if tracker.HasUnmapped() {
			result.Unmapped = tracker.SortedSymbols()
		}
	}

	warnDataQuality(tw, doc)

	if opts.DryRun {
		result.Preview = c.preview(doc, reg, opts, result.Unmapped)
		return result, nil
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	c.writeIconReport(doc, reg, inputPath, opts, result)

	writer := &onx.GPXWriter{
		Registry:        reg,
		Changes:         result.Changes,
		PrefixIconNames: cfg.UseIconNamePrefix,
		Split:           opts.Split,
		MaxBytes:        opts.MaxBytes,
		Clock:           c.Clock,
	}
	shapes := &onx.KMLWriter{}

	for _, folder := range doc.Folders {
		ws, ts, ss := splitFolder(doc, folder.ID)
		if len(ws)+len(ts)+len(ss) == 0 {
			continue
		}
		if opts.Sort {
			sortItems(ws, ts, ss)
		}
		base := outputBase(folder.Name, opts.Prefix)

		log.Info().
			Str("folder", folder.Name).
			Int("waypoints", len(ws)).
			Int("tracks", len(ts)).
			Int("shapes", len(ss)).
			Msg("Converting folder")
		tw.Emit(trace.Event{
			"event": "convert.folder", "folder": folder.Name,
			"waypoints": len(ws), "tracks": len(ts), "shapes": len(ss),
		})

		for i, part := range chunk(ws, maxItemsPerImport) {
			path, display := partNames(opts.OutputDir, base, folder.Name, "Waypoints", ".gpx", i, len(ws))
			files, err := writer.WriteWaypoints(part, path, display)
			if err != nil {
				return nil, fmt.Errorf("write waypoints for folder %q: %w", folder.Name, err)
			}
			result.Files = appendManifest(result.Files, files, "GPX (Waypoints)")
		}
		for i, part := range chunk(ts, maxItemsPerImport) {
			path, display := partNames(opts.OutputDir, base, folder.Name, "Tracks", ".gpx", i, len(ts))
			files, err := writer.WriteTracks(part, path, display)
			if err != nil {
				return nil, fmt.Errorf("write tracks for folder %q: %w", folder.Name, err)
			}
			result.Files = appendManifest(result.Files, files, "GPX (Tracks)")
		}
		for i, part := range chunk(ss, maxItemsPerImport) {
			path, display := partNames(opts.OutputDir, base, folder.Name, "Shapes", ".kml", i, len(ss))
			file, err := shapes.WriteShapes(part, path, display)
			if err != nil {
				return nil, fmt.Errorf("write shapes for folder %q: %w", folder.Name, err)
			}
			result.Files = appendManifest(result.Files, []onx.OutputFile{file}, "KML (Shapes)")
		}
	}

	return result, nil
}

// preview plans the run without touching disk. Planned filenames ignore
// the per-file item cap, so a folder over the cap previews as one file
// but writes as numbered parts.
func (c *Converter) preview(doc *geo.Document, reg *icons.Registry, opts ConvertOptions, unmapped []icons.UnmappedSymbol) *report.DryRun {
	counts := make(map[string]int)
	for _, wp := range doc.Waypoints() {
		d := reg.Resolve(wp.Name, wp.Notes, wp.Style.MarkerSymbol)
		counts[d.Icon]++
	}

	pre := &report.DryRun{
		IconCounts:     report.SortIconCounts(counts),
		Unmapped:       unmapped,
		TotalWaypoints: len(doc.Waypoints()),
		TotalTracks:    len(doc.Tracks()),
		TotalShapes:    len(doc.Shapes()),
	}
	for _, folder := range doc.Folders {
		ws, ts, ss := splitFolder(doc, folder.ID)
		base := outputBase(folder.Name, opts.Prefix)
		if len(ws) > 0 {
			pre.Files = append(pre.Files, report.PlannedFile{Name: base + "_Waypoints.gpx", Type: "GPX (Waypoints)", Count: len(ws)})
		}
		if len(ts) > 0 {
			pre.Files = append(pre.Files, report.PlannedFile{Name: base + "_Tracks.gpx", Type: "GPX (Tracks)", Count: len(ts)})
		}
		if len(ss) > 0 {
			pre.Files = append(pre.Files, report.PlannedFile{Name: base + "_Shapes.kml", Type: "KML (Shapes)", Count: len(ss)})
		}
	}
	return pre
}

// writeIconReport records how every marker symbol in the document maps
// to an onX icon. Report problems never fail the conversion.
func (c *Converter) writeIconReport(doc *geo.Document, reg *icons.Registry, inputPath string, opts ConvertOptions, result *ConvertResult) {
	inventory := reg.CollectCalTopoSymbolInventory(doc)
	notes := []string{"Input GeoJSON: `" + filepath.Base(inputPath) + "`"}
	if opts.ConfigPath != "" {
		notes = append(notes, "Config: `"+opts.ConfigPath+"`")
	}

	rep := &report.IconReport{
		Title:     "CalTopo → OnX icon mapping report",
		Notes:     notes,
		Inventory: inventory,
		Rows:      reg.CollectCalTopoMappingRows(doc),
		Generated: c.clock().Now(),
	}
	path := filepath.Join(opts.OutputDir, inputStem(inputPath)+"_ICON_REPORT.md")
	if err := rep.Write(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Could not write icon report")
	} else {
		result.IconReportPath = path
	}

	if c.Catalog != nil {
		if err := c.Catalog.AppendSymbolInventory(inventory); err != nil {
			log.Warn().Err(err).Str("path", c.Catalog.Path()).Msg("Could not update icon catalog")
		}
	}
}

func (c *Converter) registry() *icons.Registry {
	if c.Registry != nil {
		return c.Registry
	}
	return icons.Default()
}

func (c *Converter) cfg() *config.Config {
	if c.Config != nil {
		return c.Config
	}
	return &config.Config{}
}

func (c *Converter) clock() clockwork.Clock {
	if c.Clock != nil {
		return c.Clock
	}
	return clockwork.NewRealClock()
}

// splitFolder collects the folder's items by kind, preserving document
// order within each kind.
func splitFolder(doc *geo.Document, folderID string) (ws []*geo.Waypoint, ts []*geo.Track, ss []*geo.Shape) {
	for _, item := range doc.Items {
		if item.GetFolderID() != folderID {
			continue
		}
		switch it := item.(type) {
		case *geo.Waypoint:
			ws = append(ws, it)
		case *geo.Track:
			ts = append(ts, it)
		case *geo.Shape:
			ss = append(ss, it)
		}
	}
	return ws, ts, ss
}

func sortItems(ws []*geo.Waypoint, ts []*geo.Track, ss []*geo.Shape) {
	sort.SliceStable(ws, func(i, j int) bool { return text.NaturalLess(ws[i].Name, ws[j].Name) })
	sort.SliceStable(ts, func(i, j int) bool { return text.NaturalLess(ts[i].Name, ts[j].Name) })
	sort.SliceStable(ss, func(i, j int) bool { return text.NaturalLess(ss[i].Name, ss[j].Name) })
}

// outputBase builds the filename stem for one folder's output files.
func outputBase(folderName, prefix string) string {
	base := text.SanitizeFilename(folderName)
	if prefix != "" {
		base = text.SanitizeFilename(prefix) + "_" + base
	}
	return base
}

// partNames returns the output path and the display name onX shows on
// import. total is the folder's full item count for the kind; folders
// over the per-file cap get numbered part files.
func partNames(dir, base, folderName, kind, ext string, i, total int) (path, display string) {
	if total > maxItemsPerImport {
		name := fmt.Sprintf("%s_%s_Part%d%s", base, kind, i+1, ext)
		return filepath.Join(dir, name), fmt.Sprintf("%s - Part %d", folderName, i+1)
	}
	return filepath.Join(dir, base+"_"+kind+ext), folderName
}

// chunk slices items into runs of at most size, preserving order.
func chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	var out [][]T
	for len(items) > size {
		out = append(out, items[:size])
		items = items[size:]
	}
	return append(out, items)
}

func appendManifest(entries []report.ManifestEntry, files []onx.OutputFile, kind string) []report.ManifestEntry {
	for _, f := range files {
		entries = append(entries, report.ManifestEntry{
			Name:  filepath.Base(f.Path),
			Type:  kind,
			Count: f.Count,
			Bytes: f.Bytes,
		})
	}
	return entries
}

// inputStem is the input filename without directory or extension.
func inputStem(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
