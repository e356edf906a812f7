// Package trace writes the optional JSONL event stream conversions emit
// for replay and diffing. One JSON object per line, never meant to be
// pretty.
package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
)

// Event is one trace record.
type Event map[string]any

// Writer appends events to a JSONL file. Every event is flushed
// immediately so a crash loses at most the line in flight.
type Writer struct {
	path  string
	file  *os.File
	buf   *bufio.Writer
	clock clockwork.Clock
}

// NewWriter creates or truncates the trace file at path.
func NewWriter(path string) (*Writer, error) {
	return NewWriterWithClock(path, clockwork.NewRealClock())
}

// NewWriterWithClock is NewWriter with an injected clock for tests.
func NewWriterWithClock(path string, clock clockwork.Clock) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create trace file: %w", err)
	}
	return &Writer{path: path, file: file, buf: bufio.NewWriter(file), clock: clock}, nil
}

// Path returns the trace file location.
func (w *Writer) Path() string {
	if w == nil {
		return ""
	}
	return w.path
}

// Emit writes one event, adding an RFC3339 UTC "ts" field when the caller
// did not. A nil writer discards events, so call sites never need an
// enabled check.
func (w *Writer) Emit(event Event) error {
	if w == nil {
		return nil
	}

	if _, ok := event["ts"]; !ok {
		withTS := make(Event, len(event)+1)
		for k, v := range event {
			withTS[k] = v
		}
		withTS["ts"] = w.clock.Now().UTC().Format(time.RFC3339)
		event = withTS
	}

	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode trace event: %w", err)
	}
	if _, err := w.buf.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write trace event: %w", err)
	}
	return w.buf.Flush()
}

// Close flushes and closes the trace file.
func (w *Writer) Close() error {
	if w == nil {
		return nil
	}
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// Read loads every event from a trace file, skipping blank lines.
func Read(path string) ([]Event, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	defer file.Close()

	var events []Event
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, fmt.Errorf("decode trace line: %w", err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read trace file: %w", err)
	}
	return events, nil
}
