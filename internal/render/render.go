// Package render turns a window aggregate into SwiftBar/xbar plugin
// text: one status line, a separator, then the dropdown. Everything is
// a pure function of its inputs so repeated renders with unchanged
// input produce identical output.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/anomredux/claude-bar/internal/config"
	"github.com/anomredux/claude-bar/internal/domain"
	"github.com/anomredux/claude-bar/internal/plan"
)

// Input carries everything one render needs. Now is a parameter so the
// renderer itself never consults the wall clock.
type Input struct {
	Agg      domain.WindowAggregate
	Limits   plan.Limits
	Settings config.Settings
	Now      time.Time

	// ExePath and ConfigPath feed the dropdown's action lines; empty
	// values omit the corresponding action.
	ExePath    string
	ConfigPath string
}

// StatusLine renders the single menu-bar line.
func StatusLine(in Input) string {
	pct := in.Limits.PercentUsed(in.Agg)
	tier := ThresholdTier(pct)

	icon := "⚡"
	if g := tier.Glyph(); g != "" {
		icon = g
	}

	status := fmt.Sprintf("%s %s/%s", icon,
		FormatCompact(in.Agg.TokensUsed),
		FormatCompact(in.Limits.TokenLimit))

	if d := in.Agg.TimeToExpiry(in.Now); d > 0 {
		status += fmt.Sprintf(" · ⏱ %s", FormatCountdownShort(d))
	}
	return status + " | size=13"
}

// Render produces the full plugin output: status line plus dropdown.
// It must print something sensible for any input, including the
// zero-state of a missing or corrupt store.
func Render(in Input) string {
	pct := in.Limits.PercentUsed(in.Agg)
	tier := ThresholdTier(pct)
	width := in.Settings.Display.BarWidth

	var b strings.Builder
	line := func(format string, args ...interface{}) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("%s", StatusLine(in))
	line("---")
	line("Claude Code Token Monitor · %s | size=13 color=#888888", in.Limits.PlanName)
	line("---")
	line("%s %.1f%% | font=Menlo size=11", ProgressBar(pct, width), pct*100)
	line("---")

	remaining := in.Limits.TokenLimit - in.Agg.TokensUsed
	if remaining < 0 {
		remaining = 0
	}
	line("Used:        %12s tokens | font=Menlo size=12", FormatNumber(in.Agg.TokensUsed))
	line("Remaining:   %12s tokens | font=Menlo size=12 color=%s", FormatNumber(remaining), tier.Color())
	line("Limit:       %12s tokens | font=Menlo size=12", FormatNumber(in.Limits.TokenLimit))
	line("Cost:        %12s of %s | font=Menlo size=12", FormatUSD(in.Agg.CostUsed), FormatUSD(in.Limits.CostLimitUSD))
	line("Messages:    %12s of %s | font=Menlo size=12", FormatNumber(in.Agg.MessageCount), FormatNumber(in.Limits.MessageLimit))
	line("---")

	if models := in.Agg.ModelsByCost(); len(models) > 0 {
		max := in.Settings.Display.MaxModels
		for i, mu := range models {
			if max > 0 && i >= max {
				break
			}
			name := mu.Model
			if name == "" {
				name = "estimated"
			}
			line("%s  %s · %s | font=Menlo size=11 color=#AAAAAA", name, FormatCompact(mu.Tokens), FormatUSD(mu.CostUSD))
		}
		line("---")
	}

	if d := in.Agg.TimeToExpiry(in.Now); d > 0 {
		line("⏱  Next recharge in %s | color=#66CCFF", FormatCountdown(d))
	} else {
		line("✅  No active usage, fully recharged | color=#44FF44")
	}
	if d := in.Agg.TimeToFullClear(in.Now); d > 0 {
		line("🔄  Full recharge in %s | color=#888888 size=11", FormatCountdown(d))
	}
	line("---")
	line("Rolling window: %s | size=11 color=#888888", windowLabel(in.Limits.Window))
	line("---")

	if in.ExePath != "" {
		line("🗑  Reset Counter | bash=%s param1=reset terminal=false refresh=true", in.ExePath)
	}
	if in.ConfigPath != "" {
		line("⚙️  Edit Config | bash=/usr/bin/open param1=%s terminal=false", in.ConfigPath)
	}
	line("🔃 Refresh | refresh=true")

	return b.String()
}

func windowLabel(w time.Duration) string {
	if w == w.Truncate(time.Hour) {
		return fmt.Sprintf("%dh", int(w.Hours()))
	}
	return fmt.Sprintf("%.1fh", w.Hours())
}
