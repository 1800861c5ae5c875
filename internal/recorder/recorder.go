// Package recorder handles the Claude Code Stop hook. It must never
// fail the caller: every error path degrades to "record nothing" with a
// log line.
package recorder

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/anomredux/claude-bar/internal/domain"
	"github.com/anomredux/claude-bar/internal/parser"
	"github.com/anomredux/claude-bar/internal/pricing"
	"github.com/anomredux/claude-bar/internal/store"
)

// Payload is the hook input Claude Code writes to stdin.
type Payload struct {
	SessionID      string `json:"session_id"`
	TranscriptPath string `json:"transcript_path"`
	HookEventName  string `json:"hook_event_name"`
	CWD            string `json:"cwd"`
}

const (
	// bytesPerToken is the estimation heuristic for sessions that expose
	// no usage rows: JSON structure overhead pushes the effective
	// bytes-per-token ratio up to roughly six.
	bytesPerToken = 6
	minEstimated  = 100
)

type Recorder struct {
	Store   *store.Store
	Prices  pricing.PriceTable
	DataDir string // ~/.claude/projects
	Log     *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

func New(s *store.Store, prices pricing.PriceTable, dataDir string, log *slog.Logger) *Recorder {
	return &Recorder{
		Store:   s,
		Prices:  prices,
		DataDir: dataDir,
		Log:     log,
		now:     time.Now,
	}
}

// Record processes one hook payload. The returned error is for logging
// only; callers on the hook path must exit zero regardless.
func (r *Recorder) Record(payload io.Reader) error {
	var p Payload
	if err := json.NewDecoder(payload).Decode(&p); err != nil {
		r.Log.Warn("unreadable hook payload, skipping", "error", err)
		return nil
	}

	transcript := p.TranscriptPath
	if transcript != "" {
		if _, err := os.Stat(transcript); err != nil {
			transcript = ""
		}
	}
	if transcript == "" {
		transcript = parser.FindSessionFile(r.DataDir, p.SessionID)
	}
	if transcript == "" {
		r.Log.Info("no transcript for session, skipping", "session", p.SessionID)
		return nil
	}

	err := r.Store.Update(func(doc *store.Document) error {
		offset := doc.SessionOffsets[p.SessionID]
		result, size, err := parser.ParseFileFrom(transcript, offset, p.SessionID)
		if err != nil {
			return err
		}

		events := result.Events
		r.Prices.Apply(events)

		if len(events) == 0 {
			// The transcript grew but exposed no usage rows: estimate
			// from the byte delta so the window does not undercount.
			prev := doc.SessionSizes[p.SessionID]
			if delta := size - prev; delta > 0 {
				tokens := int(delta / bytesPerToken)
				if tokens < minEstimated {
					tokens = minEstimated
				}
				events = append(events, domain.UsageEvent{
					Timestamp:   r.now().UTC(),
					InputTokens: tokens,
					SessionID:   p.SessionID,
					Estimated:   true,
				})
			}
		}

		doc.Events = append(doc.Events, events...)
		doc.SessionOffsets[p.SessionID] = size
		doc.SessionSizes[p.SessionID] = size
		return nil
	})

	switch {
	case errors.Is(err, store.ErrLocked):
		// The store already gave up after its retry budget; the event
		// is dropped rather than blocking the caller. Surfaced so the
		// CLI can log it, still never a non-zero exit.
		r.Log.Warn("usage store busy, dropping record", "session", p.SessionID)
		return err
	case err != nil:
		r.Log.Error("record usage", "session", p.SessionID, "error", err)
		return err
	}

	r.Log.Debug("usage recorded", "session", p.SessionID)
	return nil
}
