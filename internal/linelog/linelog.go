// Package linelog writes best-effort, append-only text side files.
package linelog

import (
	"log/slog"
	"os"
	"sync"
	"time"
)

// Appender records a single line. Implementations never fail the caller.
type Appender interface {
	Append(message string)
}

// File appends timestamped lines to a file on disk.
type File struct {
	path string
	now  func() time.Time

	mu sync.Mutex
}

// NewFile returns an appender writing "<RFC3339 timestamp> <message>\n" to path.
func NewFile(path string) *File {
	return &File{
		path: path,
		now:  time.Now,
	}
}

func (f *File) Append(message string) {
	line := f.now().Format(time.RFC3339) + " " + message + "\n"

	f.mu.Lock()
	defer f.mu.Unlock()

	fh, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		slog.Debug("side log open failed", "path", f.path, "err", err)
		return
	}
	defer fh.Close()

	if _, err := fh.WriteString(line); err != nil {
		slog.Debug("side log write failed", "path", f.path, "err", err)
	}
}

// Nop discards every line.
type Nop struct{}

func (Nop) Append(string) {}

// Memory keeps lines in memory, without timestamps.
type Memory struct {
	mu    sync.Mutex
	lines []string
}

func (m *Memory) Append(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, message)
}

// Lines returns a copy of everything appended so far.
func (m *Memory) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.lines))
	copy(out, m.lines)
	return out
}

// Open returns a File appender when enabled, otherwise Nop.
func Open(enabled bool, path string) Appender {
	if !enabled || path == "" {
		return Nop{}
	}
	return NewFile(path)
}
