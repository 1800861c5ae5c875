package parser

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anomredux/claude-bar/internal/domain"
)

// ScanResult holds the outcome of a full transcript scan.
type ScanResult struct {
	Events []domain.UsageEvent
	// Offsets maps session ID to the byte size of its transcript at scan
	// time, so the recorder can continue incrementally from there.
	Offsets map[string]int64
	// Sizes mirrors Offsets; kept separately because estimation fallback
	// compares against raw file sizes, not parse positions.
	Sizes map[string]int64
}

// ScanSince walks the projects directory, parses every session
// transcript and returns deduplicated events at or after cutoff, sorted
// by timestamp. A zero cutoff keeps everything.
func ScanSince(dataDir string, cutoff time.Time) ScanResult {
	result := ScanResult{
		Offsets: make(map[string]int64),
		Sizes:   make(map[string]int64),
	}

	var paths []string
	_ = filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".jsonl" {
			return nil
		}
		paths = append(paths, path)
		return nil
	})

	for _, path := range paths {
		sessionID := strings.TrimSuffix(filepath.Base(path), ".jsonl")

		f, err := os.Open(path)
		if err != nil {
			continue
		}
		parsed := ParseReader(f, sessionID)
		f.Close()

		if info, err := os.Stat(path); err == nil {
			result.Offsets[sessionID] = info.Size()
			result.Sizes[sessionID] = info.Size()
		}

		for _, e := range parsed.Events {
			if !cutoff.IsZero() && e.Timestamp.Before(cutoff) {
				continue
			}
			result.Events = append(result.Events, e)
		}
	}

	result.Events = Dedup(result.Events)
	return result
}

// FindSessionFile searches the projects directory for the transcript of
// the given session. Returns "" when not found.
func FindSessionFile(dataDir, sessionID string) string {
	if sessionID == "" {
		return ""
	}
	dirs, err := os.ReadDir(dataDir)
	if err != nil {
		return ""
	}
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		candidate := filepath.Join(dataDir, d.Name(), sessionID+".jsonl")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
