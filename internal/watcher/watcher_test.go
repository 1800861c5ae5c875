package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestPollDetectsRewrite(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "usage.json")
	os.WriteFile(target, []byte(`{"events":[]}`), 0644)

	var mu sync.Mutex
	var changed []string

	w := New([]string{target}, 50*time.Millisecond, func(paths []string) {
		mu.Lock()
		changed = append(changed, paths...)
		mu.Unlock()
	})

	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	// Atomic-rename style rewrite
	tmp := filepath.Join(dir, "usage.json.tmp")
	os.WriteFile(tmp, []byte(`{"events":[{"timestamp":"2026-01-01T00:00:00Z"}]}`), 0644)
	os.Rename(tmp, target)

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := len(changed)
		mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("no change detected after rewrite")
		case <-time.After(20 * time.Millisecond):
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if changed[0] != target {
		t.Errorf("changed path = %q, want %q", changed[0], target)
	}
}

func TestPollDetectsCreation(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.json")

	var mu sync.Mutex
	var got int

	w := New([]string{target}, 50*time.Millisecond, func(paths []string) {
		mu.Lock()
		got += len(paths)
		mu.Unlock()
	})

	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	os.WriteFile(target, []byte(`{"plan":"max_5x"}`), 0644)

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := got
		mu.Unlock()
		if n > 0 {
			return
		}
		select {
		case <-deadline:
			t.Fatal("file creation not detected")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestIgnoresUnwatchedFiles(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "usage.json")
	os.WriteFile(target, []byte(`{}`), 0644)

	var mu sync.Mutex
	var changed []string

	w := New([]string{target}, 10*time.Millisecond, func(paths []string) {
		mu.Lock()
		changed = append(changed, paths...)
		mu.Unlock()
	})

	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0644)
	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for _, p := range changed {
		if p != target {
			t.Errorf("unexpected change for %q", p)
		}
	}
}
