package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/anomredux/claude-bar/internal/plan"
)

// Dashboard is the JSON document shared with the hook and the menu-bar
// host at ~/.claude/dashboard/config.json. Optional fields override the
// plan-derived ceilings. Loaded fresh on every render; never cached.
type Dashboard struct {
	Plan         string   `json:"plan"`
	TokenLimit   *int     `json:"tokenLimit,omitempty"`
	CostLimit    *float64 `json:"costLimit,omitempty"`
	MessageLimit *int     `json:"messageLimit,omitempty"`
	WindowHours  *float64 `json:"windowHours,omitempty"`
}

func DefaultDashboard() Dashboard {
	return Dashboard{Plan: "pro"}
}

// DashboardPath returns the well-known dashboard config location.
func DashboardPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".claude", "dashboard", "config.json")
	}
	return filepath.Join(home, ".claude", "dashboard", "config.json")
}

// LoadDashboard reads the shared config. Missing or malformed documents
// yield the built-in defaults; this path must never be fatal.
func LoadDashboard(path string) Dashboard {
	cfg := DefaultDashboard()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultDashboard()
	}
	if cfg.Plan == "" {
		cfg.Plan = "pro"
	}
	return cfg
}

// Window returns the configured window, falling back to the resolved
// plan's default.
func (d Dashboard) Window() time.Duration {
	if d.WindowHours != nil && *d.WindowHours > 0 {
		return time.Duration(*d.WindowHours * float64(time.Hour))
	}
	return 5 * time.Hour
}

// PlanID parses the configured plan identifier.
func (d Dashboard) PlanID() plan.ID {
	return plan.Parse(d.Plan)
}

// Overrides translates the optional fields for the plan resolver.
func (d Dashboard) Overrides() plan.Overrides {
	ov := plan.Overrides{
		TokenLimit:   d.TokenLimit,
		CostLimitUSD: d.CostLimit,
		MessageLimit: d.MessageLimit,
	}
	if d.WindowHours != nil && *d.WindowHours > 0 {
		w := time.Duration(*d.WindowHours * float64(time.Hour))
		ov.Window = &w
	}
	return ov
}
