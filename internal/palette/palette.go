// Package palette quantizes arbitrary color strings onto the fixed color
// sets onX accepts, and converts between the vendors' color notations.
//
// onX uses two different color systems in GPX: tracks may use twelve
// palette colors while the waypoint picker offers only ten. Anything else
// in an import is silently ignored by onX, so colors are always snapped
// to the nearest supported value here.
package palette

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// Color is one palette entry.
type Color struct {
	Name string
	R    uint8
	G    uint8
	B    uint8
}

// RGBA renders the entry in onX GPX notation, alpha always 1.
func (c Color) RGBA() string {
	return fmt.Sprintf("rgba(%d,%d,%d,1)", c.R, c.G, c.B)
}

// Palette is an ordered color set. Order matters: distance ties resolve
// to the earliest entry so output stays reproducible.
type Palette []Color

// Waypoint is the ten-color set of the official onX waypoint picker.
var Waypoint = Palette{
	{"red-orange", 255, 51, 0},
	{"blue", 8, 122, 255},
	{"cyan", 0, 255, 255},
	{"lime", 132, 212, 0},
	{"black", 0, 0, 0},
	{"white", 255, 255, 255},
	{"purple", 128, 0, 128},
	{"yellow", 255, 255, 0},
	{"red", 255, 0, 0},
	{"brown", 139, 69, 19},
}

// Track extends the waypoint set with the two track-only colors.
var Track = Palette{
	{"red-orange", 255, 51, 0},
	{"blue", 8, 122, 255},
	{"cyan", 0, 255, 255},
	{"lime", 132, 212, 0},
	{"black", 0, 0, 0},
	{"white", 255, 255, 255},
	{"purple", 128, 0, 128},
	{"yellow", 255, 255, 0},
	{"red", 255, 0, 0},
	{"brown", 139, 69, 19},
	{"green", 52, 199, 89},
	{"fuchsia", 255, 0, 255},
}

// DefaultColor is onX blue, used whenever a color is missing or garbled.
const DefaultColor = "rgba(8,122,255,1)"

// ParseRGB extracts an RGB triple from "#RRGGBB", bare hex, "rgb(...)"
// or "rgba(...)" notation. Unparseable input yields onX blue.
func ParseRGB(s string) (r, g, b int) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 8, 122, 255
	}

	h := strings.TrimPrefix(s, "#")
	if len(h) == 6 && isHex(h) {
		rv, _ := strconv.ParseInt(h[0:2], 16, 32)
		gv, _ := strconv.ParseInt(h[2:4], 16, 32)
		bv, _ := strconv.ParseInt(h[4:6], 16, 32)
		return int(rv), int(gv), int(bv)
	}

	if strings.HasPrefix(s, "rgb") {
		if r, g, b, ok := parseRGBFunc(s); ok {
			return r, g, b
		}
	}

	return 8, 122, 255
}

// parseRGBFunc reads the first three integers of rgb()/rgba() notation.
func parseRGBFunc(s string) (r, g, b int, ok bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return 0, 0, 0, false
	}
	body := s[open+1:]
	if end := strings.IndexByte(body, ')'); end >= 0 {
		body = body[:end]
	}

	parts := strings.Split(body, ",")
	if len(parts) < 3 {
		return 0, 0, 0, false
	}

	var vals [3]int
	for i := range 3 {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || v < 0 {
			return 0, 0, 0, false
		}
		vals[i] = v
	}
	return vals[0], vals[1], vals[2], true
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// Nearest returns the palette member closest to the input color by
// squared Euclidean distance in RGB space. Ties keep the earliest entry.
func Nearest(s string, p Palette) Color {
	r, g, b := ParseRGB(s)

	best := p[0]
	bestDist := -1
	for _, c := range p {
		dr := r - int(c.R)
		dg := g - int(c.G)
		db := b - int(c.B)
		dist := dr*dr + dg*dg + db*db
		if bestDist < 0 || dist < bestDist {
			best = c
			bestDist = dist
		}
	}
	return best
}

// Quantize snaps a color string to the nearest palette member and renders
// it in onX notation. A value that already equals a member round-trips
// unchanged.
func Quantize(s string, p Palette) string {
	return Nearest(s, p).RGBA()
}

// Name returns the palette name for an onX color value, or "custom" when
// the value matches no palette member exactly.
func Name(rgba string) string {
	r, g, b := ParseRGB(rgba)
	for _, c := range Track {
		if r == int(c.R) && g == int(c.G) && b == int(c.B) {
			return c.Name
		}
	}
	return "custom"
}

// PatternToStyle maps a CalTopo line pattern onto an onX style value.
func PatternToStyle(pattern string) string {
	switch strings.ToLower(strings.TrimSpace(pattern)) {
	case "", "solid":
		return "solid"
	case "dash", "dashed":
		return "dash"
	case "dot", "dotted":
		return "dot"
	default:
		return "solid"
	}
}

// StrokeWidthToWeight maps a CalTopo stroke width onto the two weights
// onX renders. Widths above 4 become thick lines.
func StrokeWidthToWeight(width float64) string {
	if width > 4 {
		return "6.0"
	}
	return "4.0"
}

// RGBAToCalTopoHex converts an onX rgba value to CalTopo "#RRGGBB".
// Empty input stays empty so callers can distinguish "no color".
func RGBAToCalTopoHex(rgba string) string {
	if strings.TrimSpace(rgba) == "" {
		return ""
	}
	r, g, b := ParseRGB(rgba)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// CalTopoHexToKML converts "#RRGGBB" to the KML aabbggrr byte order with
// full opacity. Invalid input becomes opaque white.
func CalTopoHexToKML(hexColor string) string {
	h := strings.TrimPrefix(strings.TrimSpace(hexColor), "#")
	if len(h) != 6 || !isHex(h) {
		return "ffffffff"
	}
	return strings.ToLower("ff" + h[4:6] + h[2:4] + h[0:2])
}

// routeColors is a small high-contrast set for lines that arrive with no
// color of their own. Chosen to read well on topo and satellite bases.
var routeColors = []string{
	"#FFAA00", // orange
	"#4CB36E", // green
	"#EF00FF", // magenta
	"#00CD00", // bright green
	"#C659A9", // purple
	"#B9AC91", // tan
	"#FF0000", // red
	"#000000", // black
	"#00A3FF", // azure
	"#8B4513", // brown
}

// RouteColorForName deterministically picks a route color by name so
// repeated conversions of the same document assign the same colors.
func RouteColorForName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return routeColors[0]
	}
	sum := md5.Sum([]byte(n))
	idx := binary.BigEndian.Uint32(sum[:4]) % uint32(len(routeColors))
	return routeColors[idx]
}
