// Package store owns the persisted usage document. Two independent
// processes touch it: the record hook (read-modify-write) and the
// renderer (read only). Writers serialize through an exclusive flock on
// a sidecar lock file and publish via temp-file + atomic rename; readers
// never lock and instead tolerate a document caught mid-rewrite.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/anomredux/claude-bar/internal/domain"
)

// ErrLocked is returned when the lock could not be acquired within the
// retry budget. Callers on the hook path drop the event rather than
// block the caller.
var ErrLocked = errors.New("usage store is locked")

const (
	lockAttempts = 5
	lockBackoff  = 20 * time.Millisecond

	// Readers hitting a partially written document wait this long for
	// the writer's rename to land before giving up.
	corruptRetryDelay = 50 * time.Millisecond
)

// Document is the persisted usage history.
type Document struct {
	Events []domain.UsageEvent `json:"events"`
	// SessionOffsets maps session ID to the transcript byte position the
	// recorder has parsed up to.
	SessionOffsets map[string]int64 `json:"sessionOffsets,omitempty"`
	// SessionSizes maps session ID to the last seen transcript size,
	// used only for estimating usage when exact counts are unavailable.
	SessionSizes map[string]int64 `json:"sessionSizes,omitempty"`
}

func emptyDocument() Document {
	return Document{
		SessionOffsets: make(map[string]int64),
		SessionSizes:   make(map[string]int64),
	}
}

// rawDocument additionally understands the documents older trackers
// wrote: a tokenLog of {timestamp, tokens} pairs, or a single
// currentWindow counter.
type rawDocument struct {
	Document
	TokenLog []struct {
		Timestamp string `json:"timestamp"`
		Tokens    int    `json:"tokens"`
	} `json:"tokenLog"`
	CurrentWindow *struct {
		StartTime        string `json:"startTime"`
		TokensUsed       int    `json:"tokensUsed"`
		InteractionCount int    `json:"interactionCount"`
	} `json:"currentWindow"`
}

type Store struct {
	path string
	// retention prunes events older than this on every write; zero
	// disables pruning.
	retention time.Duration
}

func New(path string) *Store {
	return &Store{path: path}
}

// SetRetention bounds store growth: events older than d are dropped on
// the next write. Callers pass twice the configured window.
func (s *Store) SetRetention(d time.Duration) {
	s.retention = d
}

func (s *Store) Path() string { return s.path }

// DefaultPath returns the well-known usage document location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".claude", "dashboard", "usage.json")
	}
	return filepath.Join(home, ".claude", "dashboard", "usage.json")
}

// Load reads the document without locking. A missing file yields the
// empty document. A document that fails to decode is re-read once after
// a short delay (the writer may be mid-rename); if it is still bad the
// empty document is returned with the decode error for logging.
func (s *Store) Load() (Document, error) {
	doc, err := s.read()
	if err == nil || os.IsNotExist(err) {
		return doc, nil
	}

	time.Sleep(corruptRetryDelay)
	doc, err2 := s.read()
	if err2 == nil {
		return doc, nil
	}
	return emptyDocument(), fmt.Errorf("load usage store: %w", err)
}

func (s *Store) read() (Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return emptyDocument(), err
	}

	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return emptyDocument(), err
	}
	return normalize(raw), nil
}

// normalize folds legacy fields into the event list and restores the
// in-order invariant.
func normalize(raw rawDocument) Document {
	doc := raw.Document
	if doc.SessionOffsets == nil {
		doc.SessionOffsets = make(map[string]int64)
	}
	if doc.SessionSizes == nil {
		doc.SessionSizes = make(map[string]int64)
	}

	for _, le := range raw.TokenLog {
		ts, ok := parseLegacyTime(le.Timestamp)
		if !ok {
			continue
		}
		doc.Events = append(doc.Events, domain.UsageEvent{
			Timestamp:   ts,
			InputTokens: le.Tokens,
			Estimated:   true,
		})
	}
	if raw.CurrentWindow != nil && raw.CurrentWindow.TokensUsed > 0 {
		if ts, ok := parseLegacyTime(raw.CurrentWindow.StartTime); ok {
			doc.Events = append(doc.Events, domain.UsageEvent{
				Timestamp:   ts,
				InputTokens: raw.CurrentWindow.TokensUsed,
				Estimated:   true,
			})
		}
	}

	sortEvents(doc.Events)
	return doc
}

// parseLegacyTime accepts both RFC 3339 and the zone-less isoformat
// stamps older trackers wrote.
func parseLegacyTime(s string) (time.Time, bool) {
	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999",
		"2006-01-02T15:04:05",
	} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func sortEvents(events []domain.UsageEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
}

// Update runs fn on the current document under an exclusive lock and
// persists the result. The read happens inside the lock so concurrent
// updates never lose each other's changes.
func (s *Store) Update(fn func(doc *Document) error) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	doc, err := s.read()
	if err != nil && !os.IsNotExist(err) {
		// Corrupt document under lock: start over from empty rather
		// than fail the hook path forever.
		doc = emptyDocument()
	}

	if err := fn(&doc); err != nil {
		return err
	}

	sortEvents(doc.Events)
	if s.retention > 0 {
		doc.Events = pruneOlderThan(doc.Events, time.Now().Add(-s.retention))
	}

	return s.write(doc)
}

// Append records events, keeping timestamp order and retention bounds.
func (s *Store) Append(events ...domain.UsageEvent) error {
	if len(events) == 0 {
		return nil
	}
	return s.Update(func(doc *Document) error {
		doc.Events = append(doc.Events, events...)
		return nil
	})
}

// Replace swaps the whole document, e.g. after a historical scan.
func (s *Store) Replace(next Document) error {
	return s.Update(func(doc *Document) error {
		*doc = next
		return nil
	})
}

// Reset truncates the store to the empty document.
func (s *Store) Reset() error {
	return s.Update(func(doc *Document) error {
		*doc = emptyDocument()
		return nil
	})
}

func pruneOlderThan(events []domain.UsageEvent, cutoff time.Time) []domain.UsageEvent {
	kept := events[:0]
	for _, e := range events {
		if e.Timestamp.Before(cutoff) {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

// write publishes the document atomically: temp file in the same
// directory, then rename over the target.
func (s *Store) write(doc Document) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal usage store: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".usage-*.json")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp store: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish usage store: %w", err)
	}
	return nil
}
