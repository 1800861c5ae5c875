package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/anomredux/claude-bar/internal/domain"
	"github.com/anomredux/claude-bar/internal/store"
)

func testCLI(t *testing.T) *CLI {
	t.Helper()
	dir := t.TempDir()
	return &CLI{
		Store:   filepath.Join(dir, "usage.json"),
		Config:  filepath.Join(dir, "config.json"),
		DataDir: filepath.Join(dir, "projects"),
	}
}

// captureStdout runs fn with os.Stdout redirected to a pipe.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	runErr := fn()
	w.Close()
	os.Stdout = old
	out, _ := io.ReadAll(r)
	return string(out), runErr
}

func seedEvent(t *testing.T, st *store.Store) {
	t.Helper()
	err := st.Append(domain.UsageEvent{
		Timestamp:   time.Now().Add(-time.Minute),
		InputTokens: 1200,
		Model:       "claude-sonnet-4-6",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestRenderToleratesCorruptStore(t *testing.T) {
	cli := testCLI(t)
	os.MkdirAll(filepath.Dir(cli.Store), 0755)
	os.WriteFile(cli.Store, []byte("{{{not json"), 0644)

	cmd := &RenderCmd{}
	out, err := captureStdout(t, func() error { return cmd.Run(cli) })
	if err != nil {
		t.Fatalf("render must not fail on a corrupt store: %v", err)
	}
	if !strings.Contains(out, "| size=13") {
		t.Errorf("output missing status line formatting:\n%s", out)
	}
	if !strings.Contains(out, "0/") {
		t.Errorf("corrupt store should render as empty window:\n%s", out)
	}
}

func TestScanSeedsStore(t *testing.T) {
	cli := testCLI(t)

	projDir := filepath.Join(cli.DataDir, "-Users-dev-project")
	os.MkdirAll(projDir, 0755)
	ts := time.Now().Add(-30 * time.Minute).UTC().Format(time.RFC3339)
	line := fmt.Sprintf(`{"type":"assistant","timestamp":%q,"requestId":"req_1","message":{"id":"msg_1","model":"claude-sonnet-4-6","usage":{"input_tokens":1000,"output_tokens":500}}}`, ts)
	os.WriteFile(filepath.Join(projDir, "abc123.jsonl"), []byte(line+"\n"), 0644)

	cmd := &ScanCmd{}
	out, err := captureStdout(t, func() error { return cmd.Run(cli) })
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !strings.Contains(out, "scanned 1 events") {
		t.Errorf("scan summary = %q", out)
	}

	doc, err := store.New(cli.Store).Load()
	if err != nil {
		t.Fatalf("load after scan: %v", err)
	}
	if len(doc.Events) != 1 {
		t.Fatalf("store has %d events, want 1", len(doc.Events))
	}
	if doc.Events[0].CostUSD == 0 {
		t.Error("scanned event should be priced from the embedded table")
	}
	if doc.SessionOffsets["abc123"] == 0 {
		t.Error("scan should record the transcript offset for incremental reads")
	}
}

func TestScanIsIdempotent(t *testing.T) {
	cli := testCLI(t)

	projDir := filepath.Join(cli.DataDir, "proj")
	os.MkdirAll(projDir, 0755)
	ts := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	line := fmt.Sprintf(`{"type":"assistant","timestamp":%q,"requestId":"req_1","message":{"id":"msg_1","model":"claude-opus-4-6","usage":{"input_tokens":10,"output_tokens":20}}}`, ts)
	os.WriteFile(filepath.Join(projDir, "s1.jsonl"), []byte(line+"\n"), 0644)

	cmd := &ScanCmd{}
	for i := 0; i < 2; i++ {
		if _, err := captureStdout(t, func() error { return cmd.Run(cli) }); err != nil {
			t.Fatalf("scan %d: %v", i, err)
		}
	}

	doc, _ := store.New(cli.Store).Load()
	if len(doc.Events) != 1 {
		t.Errorf("double scan kept %d events, want 1", len(doc.Events))
	}
}

func TestResetClearsStore(t *testing.T) {
	cli := testCLI(t)
	st := store.New(cli.Store)
	seedEvent(t, st)

	cmd := &ResetCmd{}
	if _, err := captureStdout(t, func() error { return cmd.Run(cli) }); err != nil {
		t.Fatalf("reset: %v", err)
	}

	doc, err := st.Load()
	if err != nil {
		t.Fatalf("load after reset: %v", err)
	}
	if len(doc.Events) != 0 {
		t.Errorf("reset left %d events", len(doc.Events))
	}
}

func TestRecordGarbageStdinExitsClean(t *testing.T) {
	cli := testCLI(t)

	oldStdin := os.Stdin
	r, w, _ := os.Pipe()
	os.Stdin = r
	defer func() { os.Stdin = oldStdin }()
	w.WriteString("definitely not a hook payload")
	w.Close()

	cmd := &RecordCmd{}
	if err := cmd.Run(cli); err != nil {
		t.Fatalf("record must swallow garbage payloads: %v", err)
	}
}

func TestDefaultPathsUsedWhenUnset(t *testing.T) {
	cli := &CLI{}
	if cli.storePath() == "" {
		t.Error("store path should default")
	}
	if cli.configPath() == "" {
		t.Error("config path should default")
	}
	if !strings.HasSuffix(cli.dataDir(), filepath.Join(".claude", "projects")) {
		t.Errorf("data dir = %q", cli.dataDir())
	}
}
