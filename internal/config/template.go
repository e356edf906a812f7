package config

import "os"

const template = `# =============================================================================
# Cairn icon mapping configuration
# =============================================================================
# Maps CalTopo symbols to onX Backcountry icons.
#
# Resolution order:
#   1. symbol_mappings (highest) - matches the CalTopo marker-symbol
#   2. keyword_mappings - searches waypoint title and notes for keywords
#   3. default_icon
# =============================================================================

# If true, output names get an icon prefix (e.g. "Hazard - Avalanche Zone").
use_icon_name_prefix: false

# Track symbols without a mapping and report them after conversion.
enable_unmapped_detection: true

# Icon used when nothing matches, and the waypoint color that goes with
# an unmapped icon. The color is snapped to the onX waypoint palette.
#default_icon: Location
#default_color: rgba(8,122,255,1)

# -----------------------------------------------------------------------------
# Symbol mappings: caltopo_symbol: onX Icon Name
# These match the "marker-symbol" field in CalTopo exports.
# -----------------------------------------------------------------------------
symbol_mappings:
  skull: Hazard
  danger: Hazard
  tent: Campsite
  campsite: Campsite
  water: Water Source
  creek: Water Source
  car: Parking
  trailhead: Trailhead
  summit: Summit
  peak: Summit
  camera: Photo
  binoculars: View
  cabin: Cabin
  # my-custom-symbol: Location

# -----------------------------------------------------------------------------
# Keyword mappings: "onX Icon Name": [list, of, keywords]
# Used when no symbol mapping matches. Earlier entries win ties.
# -----------------------------------------------------------------------------
keyword_mappings:
  Campsite:
    - tent
    - camp
    - overnight
  Water Source:
    - water
    - spring
    - creek
  Hazard:
    - danger
    - avalanche
    - caution
  Summit:
    - summit
    - peak

# -----------------------------------------------------------------------------
# Converter output preferences. Command-line flags override these.
# -----------------------------------------------------------------------------
#output:
#  dir: ./onx_ready
#  prefix: ""
#  max_gpx_mb: 3.75
#  no_split: false
#  no_sort: false
`

// WriteTemplate writes a commented starter configuration to path.
func WriteTemplate(path string) error {
	return os.WriteFile(path, []byte(template), 0o644)
}
