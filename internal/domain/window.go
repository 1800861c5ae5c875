package domain

import (
	"sort"
	"time"
)

// DefaultWindow is the rolling window all built-in plans use.
const DefaultWindow = 5 * time.Hour

type ModelUsage struct {
	Model   string
	Tokens  int
	CostUSD float64
}

// WindowAggregate is derived from the store on every read and never persisted.
type WindowAggregate struct {
	WindowStart  time.Time
	TokensUsed   int
	CostUsed     float64
	MessageCount int
	Models       map[string]ModelUsage

	// NextExpiry is the instant the oldest in-window event drops out of
	// the window; zero when no events are in-window.
	NextExpiry time.Time
	// FullClear is the instant the newest in-window event drops out,
	// i.e. when the window is fully recharged.
	FullClear time.Time
}

// Aggregate filters events to the trailing window ending at now and sums
// tokens, cost and message count, grouped per model. Events with future
// timestamps (clock skew) count as in-window.
func Aggregate(events []UsageEvent, window time.Duration, now time.Time) WindowAggregate {
	agg := WindowAggregate{
		WindowStart: now.Add(-window),
		Models:      make(map[string]ModelUsage),
	}

	var oldest, newest time.Time
	for _, e := range events {
		if e.Timestamp.Before(agg.WindowStart) {
			continue
		}

		agg.TokensUsed += e.TotalTokens()
		agg.CostUsed += e.CostUSD
		agg.MessageCount++

		mu := agg.Models[e.Model]
		mu.Model = e.Model
		mu.Tokens += e.TotalTokens()
		mu.CostUSD += e.CostUSD
		agg.Models[e.Model] = mu

		if oldest.IsZero() || e.Timestamp.Before(oldest) {
			oldest = e.Timestamp
		}
		if e.Timestamp.After(newest) {
			newest = e.Timestamp
		}
	}

	if !oldest.IsZero() {
		agg.NextExpiry = oldest.Add(window)
		agg.FullClear = newest.Add(window)
	}
	return agg
}

// TimeToExpiry returns the duration until the oldest in-window event
// expires, clamped at zero. Zero also when the window is empty.
func (a WindowAggregate) TimeToExpiry(now time.Time) time.Duration {
	if a.NextExpiry.IsZero() {
		return 0
	}
	d := a.NextExpiry.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// TimeToFullClear returns the duration until every in-window event has
// expired, clamped at zero.
func (a WindowAggregate) TimeToFullClear(now time.Time) time.Duration {
	if a.FullClear.IsZero() {
		return 0
	}
	d := a.FullClear.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// ModelsByCost returns the per-model breakdown sorted by descending cost,
// ties broken by token count then name for stable output.
func (a WindowAggregate) ModelsByCost() []ModelUsage {
	models := make([]ModelUsage, 0, len(a.Models))
	for _, mu := range a.Models {
		models = append(models, mu)
	}
	sort.Slice(models, func(i, j int) bool {
		if models[i].CostUSD != models[j].CostUSD {
			return models[i].CostUSD > models[j].CostUSD
		}
		if models[i].Tokens != models[j].Tokens {
			return models[i].Tokens > models[j].Tokens
		}
		return models[i].Model < models[j].Model
	})
	return models
}
