package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
)

// NopLogger returns a logger that discards all output.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// LogRecorder collects JSON log lines so tests can assert on what was logged
type LogRecorder struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements io.Writer
func (r *LogRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Write(p)
}

// Entries decodes every recorded line. Lines that fail to decode are skipped.
func (r *LogRecorder) Entries() []map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()

	var entries []map[string]any
	for _, line := range bytes.Split(r.buf.Bytes(), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal(line, &entry); err == nil {
			entries = append(entries, entry)
		}
	}
	return entries
}

// Messages returns the msg field of every entry at the given level
func (r *LogRecorder) Messages(level slog.Level) []string {
	var msgs []string
	for _, e := range r.Entries() {
		if e[slog.LevelKey] == level.String() {
			msg, _ := e[slog.MessageKey].(string)
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

// RecordingLogger returns a debug-level JSON logger writing to a LogRecorder
func RecordingLogger() (*slog.Logger, *LogRecorder) {
	rec := &LogRecorder{}
	logger := slog.New(slog.NewJSONHandler(rec, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, rec
}
