package onx

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultMaxGPXBytes keeps written GPX under onX's 4 MB import cap with
// a safety margin (3.75 MiB).
const DefaultMaxGPXBytes = 3932160

// OutputFile describes one written file for the export manifest.
type OutputFile struct {
	Path  string
	Bytes int64
	Count int
}

// joinedSize returns the byte size of strings.Join(lines, "\n").
func joinedSize(lines []string) int {
	if len(lines) == 0 {
		return 0
	}
	n := len(lines) - 1
	for _, s := range lines {
		n += len(s)
	}
	return n
}

type filePart struct {
	lines []string
	count int
}

// packBlocks distributes item blocks over files of at most maxBytes,
// never reordering and never splitting a block. Every part carries the
// full header and footer. A block that alone exceeds the budget still
// becomes its own part rather than being dropped.
func packBlocks(header []string, blocks [][]string, footer string, maxBytes int) []filePart {
	headerSize := joinedSize(header)
	footerSize := len(footer)

	var parts []filePart
	cur := filePart{lines: append([]string(nil), header...)}
	curSize := headerSize

	finalize := func() {
		cur.lines = append(cur.lines, footer)
		parts = append(parts, cur)
		cur = filePart{lines: append([]string(nil), header...)}
		curSize = headerSize
	}

	for _, block := range blocks {
		if len(block) == 0 {
			continue
		}
		blockSize := joinedSize(block)
		if curSize+1+blockSize+1+footerSize > maxBytes {
			if cur.count > 0 {
				finalize()
			}
			if curSize+1+blockSize+1+footerSize > maxBytes {
				log.Warn().
					Int("bytes", blockSize).
					Int("max_bytes", maxBytes).
					Msg("single gpx item exceeds the size budget, writing it anyway")
			}
		}
		cur.lines = append(cur.lines, block...)
		cur.count++
		curSize += 1 + blockSize
	}

	if cur.count > 0 || len(parts) == 0 {
		finalize()
	}
	return parts
}

// writeBlocks writes header+blocks+footer to path, splitting into
// numbered part files when the payload exceeds maxBytes and splitting is
// on. An empty input still produces one file so the manifest always has
// a row per folder.
func writeBlocks(header []string, blocks [][]string, footer, path string, split bool, maxBytes int) ([]OutputFile, error) {
	whole := append([]string(nil), header...)
	count := 0
	for _, b := range blocks {
		if len(b) == 0 {
			continue
		}
		whole = append(whole, b...)
		count++
	}
	whole = append(whole, footer)

	size := joinedSize(whole)
	if !split || size <= maxBytes {
		if !split && size > maxBytes {
			log.Warn().
				Str("path", path).
				Int("bytes", size).
				Int("max_bytes", maxBytes).
				Msg("gpx exceeds the size budget with splitting disabled")
		}
		if err := writeLines(path, whole); err != nil {
			return nil, err
		}
		return []OutputFile{{Path: path, Bytes: int64(size), Count: count}}, nil
	}

	parts := packBlocks(header, blocks, footer, maxBytes)
	out := make([]OutputFile, 0, len(parts))
	for i, p := range parts {
		partPath := path
		if len(parts) > 1 {
			partPath = numberedPart(path, i+1)
		}
		if err := writeLines(partPath, p.lines); err != nil {
			return nil, err
		}
		out = append(out, OutputFile{Path: partPath, Bytes: int64(joinedSize(p.lines)), Count: p.count})
	}
	return out, nil
}

func writeLines(path string, lines []string) error {
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644)
}

// numberedPart turns "dir/Elk_Waypoints.gpx" into "dir/Elk_Waypoints_2.gpx".
func numberedPart(path string, i int) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_" + strconv.Itoa(i) + ext
}
