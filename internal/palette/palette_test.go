package palette

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRGB(t *testing.T) {
	t.Run("hash hex", func(t *testing.T) {
		r, g, b := ParseRGB("#FF0000")
		assert.Equal(t, []int{255, 0, 0}, []int{r, g, b})
	})

	t.Run("bare hex", func(t *testing.T) {
		r, g, b := ParseRGB("087aff")
		assert.Equal(t, []int{8, 122, 255}, []int{r, g, b})
	})

	t.Run("rgb with spaces", func(t *testing.T) {
		r, g, b := ParseRGB("rgb(0, 122, 255)")
		assert.Equal(t, []int{0, 122, 255}, []int{r, g, b})
	})

	t.Run("rgba", func(t *testing.T) {
		r, g, b := ParseRGB("rgba(255,51,0,1)")
		assert.Equal(t, []int{255, 51, 0}, []int{r, g, b})
	})

	t.Run("empty and garbage fall back to blue", func(t *testing.T) {
		for _, in := range []string{"", "chartreuse", "#12", "rgb()"} {
			r, g, b := ParseRGB(in)
			assert.Equal(t, []int{8, 122, 255}, []int{r, g, b}, "input %q", in)
		}
	})
}

func TestQuantize(t *testing.T) {
	t.Run("pure green picks track green over lime", func(t *testing.T) {
		assert.Equal(t, "rgba(52,199,89,1)", Quantize("#00FF00", Track))
	})

	t.Run("pure green on waypoint palette picks lime", func(t *testing.T) {
		assert.Equal(t, "rgba(132,212,0,1)", Quantize("#00FF00", Waypoint))
	})

	t.Run("exact member round-trips", func(t *testing.T) {
		assert.Equal(t, "rgba(8,122,255,1)", Quantize("rgba(8,122,255,1)", Waypoint))
	})

	t.Run("idempotent", func(t *testing.T) {
		once := Quantize("#3A7D2C", Track)
		assert.Equal(t, once, Quantize(once, Track))
	})

	t.Run("fuchsia is track-only", func(t *testing.T) {
		assert.Equal(t, "rgba(255,0,255,1)", Quantize("#FF00FF", Track))
		assert.Equal(t, "rgba(128,0,128,1)", Quantize("#FF00FF", Waypoint))
	})

	t.Run("unparseable input quantizes to blue", func(t *testing.T) {
		assert.Equal(t, "rgba(8,122,255,1)", Quantize("", Waypoint))
		assert.Equal(t, "rgba(8,122,255,1)", Quantize("not-a-color", Track))
	})
}

func TestPalettesAreDistinctTriples(t *testing.T) {
	for _, p := range []Palette{Waypoint, Track} {
		seen := make(map[[3]uint8]string)
		for _, c := range p {
			key := [3]uint8{c.R, c.G, c.B}
			assert.NotContains(t, seen, key, "duplicate rgb for %s", c.Name)
			seen[key] = c.Name
		}
	}
}

func TestName(t *testing.T) {
	assert.Equal(t, "blue", Name("rgba(8,122,255,1)"))
	assert.Equal(t, "green", Name("rgba(52,199,89,1)"))
	assert.Equal(t, "fuchsia", Name("rgba(255,0,255,1)"))
	assert.Equal(t, "custom", Name("rgba(1,2,3,1)"))
}

func TestPatternToStyle(t *testing.T) {
	assert.Equal(t, "solid", PatternToStyle(""))
	assert.Equal(t, "dash", PatternToStyle("dashed"))
	assert.Equal(t, "dash", PatternToStyle("Dash"))
	assert.Equal(t, "dot", PatternToStyle("dotted"))
	assert.Equal(t, "solid", PatternToStyle("zigzag"))
}

func TestStrokeWidthToWeight(t *testing.T) {
	assert.Equal(t, "4.0", StrokeWidthToWeight(0))
	assert.Equal(t, "4.0", StrokeWidthToWeight(4))
	assert.Equal(t, "6.0", StrokeWidthToWeight(6))
}

func TestRGBAToCalTopoHex(t *testing.T) {
	assert.Equal(t, "#087AFF", RGBAToCalTopoHex("rgba(8,122,255,1)"))
	assert.Equal(t, "", RGBAToCalTopoHex(""))
}

func TestCalTopoHexToKML(t *testing.T) {
	assert.Equal(t, "ff0000ff", CalTopoHexToKML("#FF0000"))
	assert.Equal(t, "ffff7a08", CalTopoHexToKML("#087AFF"))
	assert.Equal(t, "ffffffff", CalTopoHexToKML("teal"))
	assert.Equal(t, "ffffffff", CalTopoHexToKML(""))
}

func TestRouteColorForName(t *testing.T) {
	a := RouteColorForName("Ridge Route")
	assert.Equal(t, a, RouteColorForName("ridge route"))
	assert.Contains(t, routeColors, a)
	assert.Equal(t, "#FFAA00", RouteColorForName(""))
}
