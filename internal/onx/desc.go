// Package onx reads and writes onX Backcountry's interchange formats:
// GPX carrying the onx: vendor extensions, and KML for area shapes.
package onx

import (
	"regexp"
	"strings"
)

// descKeys are the fields onX encodes as key=value lines inside <desc>.
var descKeys = map[string]bool{
	"name":   true,
	"notes":  true,
	"id":     true,
	"color":  true,
	"icon":   true,
	"style":  true,
	"weight": true,
	"type":   true,
}

var descLineRE = regexp.MustCompile(`^([a-zA-Z0-9_-]+)=(.*)$`)

// ParseDescKV decodes the key=value block onX writes into <desc>. A line
// starting with a known key opens a new field; every other line, including
// unknown key=value pairs, continues the previous field so multiline notes
// survive. Text before the first known key reads as notes. The second
// return value is the notes field for convenience.
func ParseDescKV(desc string) (map[string]string, string) {
	desc = strings.ReplaceAll(desc, "\r\n", "\n")
	desc = strings.ReplaceAll(desc, "\r", "\n")
	desc = strings.Trim(desc, "\n")

	kv := map[string]string{}
	if desc == "" {
		return kv, ""
	}

	var key string
	var lines []string
	flush := func() {
		if key == "" {
			return
		}
		kv[key] = strings.Trim(strings.Join(lines, "\n"), "\n")
		key, lines = "", nil
	}

	for _, line := range strings.Split(desc, "\n") {
		if m := descLineRE.FindStringSubmatch(line); m != nil && descKeys[strings.ToLower(m[1])] {
			flush()
			key = strings.ToLower(m[1])
			lines = []string{m[2]}
			continue
		}
		if key == "" {
			key = "notes"
		}
		lines = append(lines, line)
	}
	flush()

	return kv, kv["notes"]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
