package render

// Tier classifies utilization against the display thresholds.
type Tier int

const (
	TierOK Tier = iota
	TierWarning
	TierError
)

const (
	warningThreshold = 0.7
	errorThreshold   = 0.9
)

func ThresholdTier(pct float64) Tier {
	switch {
	case pct >= errorThreshold:
		return TierError
	case pct >= warningThreshold:
		return TierWarning
	default:
		return TierOK
	}
}

// Glyph returns the warning glyph for the tier; empty below the warning
// threshold.
func (t Tier) Glyph() string {
	switch t {
	case TierError:
		return "⚠️"
	case TierWarning:
		return "⚡"
	default:
		return ""
	}
}

// Color returns the xbar hex color for the tier.
func (t Tier) Color() string {
	switch t {
	case TierError:
		return "#FF4444"
	case TierWarning:
		return "#FFAA00"
	default:
		return "#44FF44"
	}
}
