// Package logging writes structured logs to a file next to the usage
// store. Both the hook and the renderer run unattended, so nothing may
// ever reach stdout/stderr (SwiftBar would display it) and logging
// failures are swallowed.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Logger is the shared logger. Defaults to discard until Initialize runs.
var Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))

// Initialize points the logger at the dashboard log file. debug enables
// it; CLAUDE_BAR_DEBUG=1 overrides.
func Initialize(debug bool, logPath string) error {
	if os.Getenv("CLAUDE_BAR_DEBUG") == "1" {
		debug = true
	}
	if !debug {
		Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	Logger = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return nil
}

// DefaultPath returns the log location inside the dashboard directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "claude-bar.log"
	}
	return filepath.Join(home, ".claude", "dashboard", "claude-bar.log")
}
