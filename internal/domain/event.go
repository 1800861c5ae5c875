package domain

import "time"

type UsageEvent struct {
	Timestamp           time.Time `json:"timestamp"`
	InputTokens         int       `json:"inputTokens"`
	OutputTokens        int       `json:"outputTokens"`
	CacheCreationTokens int       `json:"cacheCreationTokens"`
	CacheReadTokens     int       `json:"cacheReadTokens"`
	Model               string    `json:"model,omitempty"`
	CostUSD             float64   `json:"costUSD"`
	SessionID           string    `json:"sessionId,omitempty"`
	MessageID           string    `json:"messageId,omitempty"`
	RequestID           string    `json:"requestId,omitempty"`
	// Estimated marks events synthesized from transcript byte growth
	// when the session exposed no exact usage counts.
	Estimated bool `json:"estimated,omitempty"`
}

// TotalTokens returns input + output + cache tokens for limit comparison.
func (e UsageEvent) TotalTokens() int {
	return e.InputTokens + e.OutputTokens + e.CacheCreationTokens + e.CacheReadTokens
}

// DedupKey returns the unique key for deduplication.
func (e UsageEvent) DedupKey() string {
	return e.MessageID + ":" + e.RequestID
}
