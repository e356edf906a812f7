// Package text provides name normalization, HTML stripping and sorting
// helpers shared by both conversion directions.
package text

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	wsRE             = regexp.MustCompile(`\s+`)
	filenameUnsafeRE = regexp.MustCompile(`[<>:"/\\|?*]`)
	underscoreRunRE  = regexp.MustCompile(`_+`)
)

// NormalizeEntities decodes XML/HTML entities, collapsing double-escaped
// sequences like "&amp;apos;" seen in real CalTopo exports.
func NormalizeEntities(s string) string {
	for range 2 {
		decoded := html.UnescapeString(s)
		if decoded == s {
			break
		}
		s = decoded
	}
	return s
}

// NormalizeName normalizes a display name, preserving inner whitespace.
func NormalizeName(s string) string {
	return strings.TrimSpace(NormalizeEntities(s))
}

// NormalizeKey normalizes a string for comparisons: entities decoded,
// lowercased, whitespace collapsed.
func NormalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(NormalizeEntities(s)))
	return wsRE.ReplaceAllString(s, " ")
}

// StripHTML extracts the plain text of an HTML fragment and collapses
// whitespace. Input without markup passes through with entities decoded.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "<") {
		return collapse(NormalizeEntities(s))
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapse(NormalizeEntities(s))
	}

	return collapse(NormalizeEntities(doc.Text()))
}

func collapse(s string) string {
	return strings.TrimSpace(wsRE.ReplaceAllString(s, " "))
}

// NaturalLess reports whether a sorts before b in natural order, comparing
// digit runs numerically so "Camp 2" comes before "Camp 10".
func NaturalLess(a, b string) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]
		if isDigit(ca) && isDigit(cb) {
			ia, jb := i, j
			for i < len(a) && isDigit(a[i]) {
				i++
			}
			for j < len(b) && isDigit(b[j]) {
				j++
			}
			if c := compareDigitRuns(a[ia:i], b[jb:j]); c != 0 {
				return c < 0
			}
			continue
		}
		if la, lb := lowerASCII(ca), lowerASCII(cb); la != lb {
			return la < lb
		}
		i++
		j++
	}
	return len(a)-i < len(b)-j
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func lowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

// compareDigitRuns compares two digit strings by numeric value without
// overflowing on long runs.
func compareDigitRuns(x, y string) int {
	x = strings.TrimLeft(x, "0")
	y = strings.TrimLeft(y, "0")
	if len(x) != len(y) {
		return len(x) - len(y)
	}
	return strings.Compare(x, y)
}

// onX drops items whose names contain these characters, which breaks
// alphabetical ordering on import.
const onxUnsafeChars = "!@#$%^*&"

// SanitizeName removes characters onX rejects in item names and collapses
// the whitespace left behind. The second result reports whether the name
// was modified.
func SanitizeName(name string) (string, bool) {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r < 128 && strings.ContainsRune(onxUnsafeChars, r) {
			continue
		}
		b.WriteRune(r)
	}
	clean := collapse(b.String())
	return clean, clean != name
}

// SanitizeFilename converts a title into a filesystem-safe name.
func SanitizeFilename(name string) string {
	if name == "" {
		return "Untitled"
	}
	s := filenameUnsafeRE.ReplaceAllString(name, "_")
	s = strings.ReplaceAll(s, " ", "_")
	s = underscoreRunRE.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 200 {
		s = s[:200]
	}
	if s == "" {
		return "Untitled"
	}
	return s
}

// FormatFileSize renders a byte count for logs and manifests.
func FormatFileSize(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
}
