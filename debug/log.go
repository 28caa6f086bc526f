package debug

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var (
	file    io.WriteCloser
	logger  *slog.Logger
	mu      sync.Mutex
	enabled bool
)

// Path returns the default log location, ~/.config/video-instrument/debug.log
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "video-instrument", "debug.log"), nil
}

// Enable starts debug logging to the default path
func Enable() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return EnableFile(path)
}

// EnableFile starts debug logging to path, truncating it
func EnableFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	EnableWriter(f)
	return nil
}

// EnableWriter routes debug records to w. If w is an io.Closer it is closed
// by Disable.
func EnableWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	if c, ok := w.(io.WriteCloser); ok {
		file = c
	}
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	enabled = true
	counters = make(map[string]int)

	logger.Info("debug logging started", "cat", "debug")
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	logger = nil
	enabled = false
}

// Enabled reports whether records are being written
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Log writes a debug record under category
func Log(category, format string, args ...any) {
	write(slog.LevelDebug, category, format, args...)
}

// Error writes an error-level record. Used for failures that end a component
// (presenter lost, port open failed).
func Error(category, format string, args ...any) {
	write(slog.LevelError, category, format, args...)
}

func write(level slog.Level, category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled || logger == nil {
		return
	}
	logger.Log(context.Background(), level, fmt.Sprintf(format, args...), "cat", category)
}

// LogEvery logs only every N calls (use for per-frame paths)
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	if !enabled {
		mu.Unlock()
		return
	}
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if n <= 1 || count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
