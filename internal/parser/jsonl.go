package parser

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/anomredux/claude-bar/internal/domain"
)

// rawRecord maps the transcript JSONL structure we care about.
type rawRecord struct {
	Type      string   `json:"type"`
	Timestamp string   `json:"timestamp"`
	SessionID string   `json:"sessionId"`
	RequestID string   `json:"requestId"`
	CostUSD   *float64 `json:"costUSD"`
	Message   *struct {
		ID    string `json:"id"`
		Model string `json:"model"`
		Usage *struct {
			InputTokens              int `json:"input_tokens"`
			OutputTokens             int `json:"output_tokens"`
			CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
			CacheReadInputTokens     int `json:"cache_read_input_tokens"`
		} `json:"usage"`
	} `json:"message"`
}

// ParseResult holds parsed events and error stats.
type ParseResult struct {
	Events     []domain.UsageEvent
	SkipCount  int
	ErrorCount int
}

// ParseReader reads transcript JSONL from an io.Reader, streaming line
// by line. sessionID is stamped on events whose own record omits it.
func ParseReader(r io.Reader, sessionID string) ParseResult {
	var result ParseResult
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024) // 10MB max line

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec rawRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			result.ErrorCount++
			continue
		}

		// Only assistant records carry usage data
		if rec.Type != "assistant" {
			result.SkipCount++
			continue
		}
		if rec.Message == nil || rec.Message.Usage == nil {
			result.SkipCount++
			continue
		}

		ts, err := time.Parse(time.RFC3339Nano, rec.Timestamp)
		if err != nil {
			ts, err = time.Parse("2006-01-02T15:04:05.000Z", rec.Timestamp)
			if err != nil {
				result.ErrorCount++
				continue
			}
		}

		event := domain.UsageEvent{
			Timestamp:           ts.UTC(),
			InputTokens:         rec.Message.Usage.InputTokens,
			OutputTokens:        rec.Message.Usage.OutputTokens,
			CacheCreationTokens: rec.Message.Usage.CacheCreationInputTokens,
			CacheReadTokens:     rec.Message.Usage.CacheReadInputTokens,
			Model:               rec.Message.Model,
			MessageID:           rec.Message.ID,
			RequestID:           rec.RequestID,
			SessionID:           rec.SessionID,
		}
		if event.SessionID == "" {
			event.SessionID = sessionID
		}
		if rec.CostUSD != nil {
			event.CostUSD = *rec.CostUSD
		}

		result.Events = append(result.Events, event)
	}

	if err := scanner.Err(); err != nil {
		result.ErrorCount++
	}

	return result
}

// ParseFileFrom parses a transcript starting at the given byte offset and
// returns the result plus the file size after the read. Offsets past the
// current size (truncated or rotated file) restart from zero.
func ParseFileFrom(path string, offset int64, sessionID string) (ParseResult, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return ParseResult{}, offset, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return ParseResult{}, offset, err
	}
	if offset > info.Size() {
		offset = 0
	}
	if offset > 0 {
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			return ParseResult{}, offset, err
		}
	}

	result := ParseReader(f, sessionID)
	return result, info.Size(), nil
}
