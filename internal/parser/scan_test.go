package parser

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTranscript(t *testing.T, dir, session string, lines ...string) string {
	t.Helper()
	projDir := filepath.Join(dir, "project-a")
	if err := os.MkdirAll(projDir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(projDir, session+".jsonl")
	var content string
	for _, l := range lines {
		content += l + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestScanSince(t *testing.T) {
	dir := t.TempDir()
	writeTranscript(t, dir, "sess_1",
		`{"type":"assistant","timestamp":"2026-08-29T10:00:00.000Z","requestId":"r1","message":{"id":"m1","model":"claude-opus-4-6","usage":{"input_tokens":100,"output_tokens":50,"cache_creation_input_tokens":0,"cache_read_input_tokens":0}}}`,
		`{"type":"assistant","timestamp":"2026-08-29T01:00:00.000Z","requestId":"r2","message":{"id":"m2","model":"claude-opus-4-6","usage":{"input_tokens":10,"output_tokens":5,"cache_creation_input_tokens":0,"cache_read_input_tokens":0}}}`,
	)

	cutoff := time.Date(2026, 8, 29, 7, 0, 0, 0, time.UTC)
	result := ScanSince(dir, cutoff)

	if len(result.Events) != 1 {
		t.Fatalf("got %d events, want 1 (one before cutoff)", len(result.Events))
	}
	if result.Events[0].RequestID != "r1" {
		t.Errorf("RequestID = %q, want r1", result.Events[0].RequestID)
	}
	if off, ok := result.Offsets["sess_1"]; !ok || off <= 0 {
		t.Errorf("Offsets[sess_1] = %d, want > 0", off)
	}
}

func TestScanSince_ZeroCutoffKeepsAll(t *testing.T) {
	dir := t.TempDir()
	writeTranscript(t, dir, "sess_1",
		`{"type":"assistant","timestamp":"2020-01-01T00:00:00.000Z","requestId":"r1","message":{"id":"m1","model":"claude-opus-4-6","usage":{"input_tokens":1,"output_tokens":1,"cache_creation_input_tokens":0,"cache_read_input_tokens":0}}}`,
	)

	result := ScanSince(dir, time.Time{})
	if len(result.Events) != 1 {
		t.Errorf("got %d events, want 1", len(result.Events))
	}
}

func TestScanSince_EmptyDir(t *testing.T) {
	result := ScanSince(t.TempDir(), time.Time{})
	if len(result.Events) != 0 {
		t.Errorf("got %d events, want 0", len(result.Events))
	}
}

func TestScanSince_NonExistentDir(t *testing.T) {
	result := ScanSince("/nonexistent/path/that/does/not/exist", time.Time{})
	if len(result.Events) != 0 {
		t.Errorf("got %d events, want 0", len(result.Events))
	}
}

func TestScanSince_IgnoresNonJSONL(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not jsonl"), 0644); err != nil {
		t.Fatal(err)
	}
	result := ScanSince(dir, time.Time{})
	if len(result.Events) != 0 {
		t.Errorf("got %d events, want 0", len(result.Events))
	}
}

func TestFindSessionFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTranscript(t, dir, "sess_abc",
		`{"type":"progress"}`,
	)

	if got := FindSessionFile(dir, "sess_abc"); got != path {
		t.Errorf("FindSessionFile = %q, want %q", got, path)
	}
	if got := FindSessionFile(dir, "missing"); got != "" {
		t.Errorf("FindSessionFile = %q, want empty", got)
	}
	if got := FindSessionFile(dir, ""); got != "" {
		t.Errorf("FindSessionFile with empty id = %q, want empty", got)
	}
}
