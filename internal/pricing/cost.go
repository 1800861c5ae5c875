package pricing

import "github.com/anomredux/claude-bar/internal/domain"

// CostFor returns the cost in USD for a single event. A cost already
// recorded in the transcript wins; otherwise the cost is computed from
// the token counts and the per-model rates. Unknown models cost zero.
func (pt PriceTable) CostFor(e *domain.UsageEvent) float64 {
	if e.CostUSD > 0 {
		return e.CostUSD
	}
	return pt.costFromTokens(e)
}

func (pt PriceTable) costFromTokens(e *domain.UsageEvent) float64 {
	p, ok := pt.Lookup(e.Model)
	if !ok {
		return 0
	}
	cost := float64(e.InputTokens) * p.Input / 1_000_000
	cost += float64(e.OutputTokens) * p.Output / 1_000_000
	cost += float64(e.CacheCreationTokens) * p.CacheCreation / 1_000_000
	cost += float64(e.CacheReadTokens) * p.CacheRead / 1_000_000
	return cost
}

// Apply calculates and sets CostUSD on all events.
func (pt PriceTable) Apply(events []domain.UsageEvent) {
	for i := range events {
		events[i].CostUSD = pt.CostFor(&events[i])
	}
}
