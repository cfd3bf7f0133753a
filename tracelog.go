package organizer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// WriteTraceJSONL writes trace entries to path as JSON lines, one entry per
// line, overwriting any previous file. Parent directories are created.
func WriteTraceJSONL(path string, traces []TraceEvent) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create trace dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trace file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, tr := range traces {
		if err := enc.Encode(tr); err != nil {
			return fmt.Errorf("encode trace entry: %w", err)
		}
	}
	return nil
}

// WriteEventsJSONL writes unified events to path as JSON lines,
// overwriting any previous file.
func WriteEventsJSONL(path string, events []Event) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create events dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create events file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, ev := range events {
		if err := enc.Encode(ev); err != nil {
			return fmt.Errorf("encode event: %w", err)
		}
	}
	return nil
}

// HistoryLogger appends user-facing messages to a per-session text file.
// The file is named history_<timestamp>.txt inside the given directory and
// is opened and closed on every append so partial sessions survive crashes.
type HistoryLogger struct {
	path string
}

// NewHistoryLogger creates the session file path under dir.
func NewHistoryLogger(dir string) (*HistoryLogger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	name := fmt.Sprintf("history_%s.txt", time.Now().Format("20060102_150405"))
	return &HistoryLogger{path: filepath.Join(dir, name)}, nil
}

// Path returns the session file path.
func (h *HistoryLogger) Path() string { return h.path }

// Append writes one message as "[YYYY-MM-DD HH:MM:SS] [sender] content".
func (h *HistoryLogger) Append(msg Message) error {
	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] [%s] %s\n",
		time.Now().Format("2006-01-02 15:04:05"), msg.Sender, msg.Content)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("append history line: %w", err)
	}
	return nil
}
