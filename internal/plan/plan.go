// Package plan maps subscription tiers to usage ceilings.
package plan

import (
	"strings"
	"time"

	"github.com/anomredux/claude-bar/internal/domain"
)

type ID string

const (
	Pro   ID = "pro"
	Max5  ID = "max5"
	Max20 ID = "max20"
)

type preset struct {
	Name         string
	CostLimitUSD float64
	MessageLimit int
	// FallbackTokenLimit applies when the window has no priced usage to
	// derive an effective cost per token from.
	FallbackTokenLimit int
	Window             time.Duration
}

// Ceilings per tier. Cost and message ceilings are fixed; the token
// ceiling is derived per render from the model mix actually in use.
var presets = map[ID]preset{
	Pro:   {Name: "Pro", CostLimitUSD: 18.0, MessageLimit: 250, FallbackTokenLimit: 200_000, Window: domain.DefaultWindow},
	Max5:  {Name: "Max 5x", CostLimitUSD: 35.0, MessageLimit: 1000, FallbackTokenLimit: 1_000_000, Window: domain.DefaultWindow},
	Max20: {Name: "Max 20x", CostLimitUSD: 140.0, MessageLimit: 2000, FallbackTokenLimit: 4_000_000, Window: domain.DefaultWindow},
}

// Parse normalizes a plan identifier, accepting the aliases older
// configs used (max_5x, max-20x). Unknown identifiers fall back to Pro.
func Parse(s string) ID {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "_", "")
	norm = strings.ReplaceAll(norm, "-", "")
	switch norm {
	case "max5", "max5x":
		return Max5
	case "max20", "max20x":
		return Max20
	default:
		return Pro
	}
}

// Limits are the resolved ceilings for one render.
type Limits struct {
	PlanName     string
	TokenLimit   int
	CostLimitUSD float64
	MessageLimit int
	Window       time.Duration
}

// Overrides are explicit config values that replace derived ones.
type Overrides struct {
	TokenLimit   *int
	CostLimitUSD *float64
	MessageLimit *int
	Window       *time.Duration
}

// Resolve derives the ceilings for a plan given the current window
// aggregate. The token ceiling is dynamic: costLimit divided by the
// effective cost per token of the models in use. Explicit overrides win
// over everything derived.
func Resolve(id ID, ov Overrides, agg domain.WindowAggregate) Limits {
	p, ok := presets[id]
	if !ok {
		p = presets[Pro]
	}

	lim := Limits{
		PlanName:     p.Name,
		CostLimitUSD: p.CostLimitUSD,
		MessageLimit: p.MessageLimit,
		Window:       p.Window,
	}

	if ov.CostLimitUSD != nil {
		lim.CostLimitUSD = *ov.CostLimitUSD
	}
	if ov.MessageLimit != nil {
		lim.MessageLimit = *ov.MessageLimit
	}
	if ov.Window != nil {
		lim.Window = *ov.Window
	}

	switch {
	case ov.TokenLimit != nil:
		lim.TokenLimit = *ov.TokenLimit
	case agg.TokensUsed > 0 && agg.CostUsed > 0:
		perToken := agg.CostUsed / float64(agg.TokensUsed)
		lim.TokenLimit = int(lim.CostLimitUSD / perToken)
	default:
		lim.TokenLimit = p.FallbackTokenLimit
	}

	return lim
}

// PercentUsed returns usage against the governing metric: tokens when a
// token ceiling resolved, cost otherwise. May exceed 1.0; never
// negative.
func (l Limits) PercentUsed(agg domain.WindowAggregate) float64 {
	var pct float64
	if l.TokenLimit > 0 {
		pct = float64(agg.TokensUsed) / float64(l.TokenLimit)
	} else if l.CostLimitUSD > 0 {
		pct = agg.CostUsed / l.CostLimitUSD
	}
	if pct < 0 {
		return 0
	}
	return pct
}
