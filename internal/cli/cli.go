// Package cli wires the subcommands behind the claude-bar binary.
// Hook-facing commands (render, record) must exit zero no matter what
// goes wrong: a broken monitor must never break the menu bar or the
// agent session that triggered the hook.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/anomredux/claude-bar/internal/config"
	"github.com/anomredux/claude-bar/internal/domain"
	"github.com/anomredux/claude-bar/internal/logging"
	"github.com/anomredux/claude-bar/internal/parser"
	"github.com/anomredux/claude-bar/internal/plan"
	"github.com/anomredux/claude-bar/internal/pricing"
	"github.com/anomredux/claude-bar/internal/recorder"
	"github.com/anomredux/claude-bar/internal/render"
	"github.com/anomredux/claude-bar/internal/store"
	"github.com/anomredux/claude-bar/internal/ui"
	"github.com/anomredux/claude-bar/internal/watcher"
)

type CLI struct {
	Version kong.VersionFlag `help:"Show version information"`
	Debug   bool             `help:"Enable debug logging to file" short:"d"`
	LogFile string           `help:"Custom path for the debug log file"`
	Store   string           `help:"Path to the usage store" placeholder:"FILE"`
	Config  string           `help:"Path to the dashboard config" placeholder:"FILE"`
	DataDir string           `help:"Claude projects directory holding session transcripts" placeholder:"DIR"`

	Render RenderCmd `cmd:"" help:"Print the menu bar plugin output (default)" default:"1"`
	Record RecordCmd `cmd:"" help:"Record usage from a Stop hook payload on stdin"`
	Scan   ScanCmd   `cmd:"" help:"Rebuild the usage store from session transcripts"`
	Reset  ResetCmd  `cmd:"" help:"Clear all recorded usage"`
	Watch  WatchCmd  `cmd:"" help:"Live terminal dashboard"`
}

// AfterApply initializes logging after kong parsing.
func (c *CLI) AfterApply() error {
	logPath := c.LogFile
	if logPath == "" {
		logPath = logging.DefaultPath()
	}
	return logging.Initialize(c.Debug, logPath)
}

func (c *CLI) storePath() string {
	if c.Store != "" {
		return c.Store
	}
	return store.DefaultPath()
}

func (c *CLI) configPath() string {
	if c.Config != "" {
		return c.Config
	}
	return config.DashboardPath()
}

func (c *CLI) dataDir() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".claude", "projects")
}

// openStore builds the store with retention derived from the configured
// window so pruning keeps pace with custom window lengths.
func (c *CLI) openStore(dash config.Dashboard) *store.Store {
	st := store.New(c.storePath())
	st.SetRetention(2 * dash.Window())
	return st
}

// RenderCmd prints the SwiftBar/xbar plugin text. It never fails: a
// missing or corrupt store renders as an empty window.
type RenderCmd struct {
	StatusOnly bool `help:"Print only the menu bar line"`
}

func (r *RenderCmd) Run(cli *CLI) error {
	dash := config.LoadDashboard(cli.configPath())
	settings, _ := config.LoadSettings(config.SettingsPath())
	st := cli.openStore(dash)

	doc, err := st.Load()
	if err != nil {
		logging.Logger.Warn("store unreadable, rendering empty window", "error", err)
	}

	now := time.Now()
	agg := domain.Aggregate(doc.Events, dash.Window(), now)
	limits := plan.Resolve(dash.PlanID(), dash.Overrides(), agg)

	exe, _ := os.Executable()
	in := render.Input{
		Agg:        agg,
		Limits:     limits,
		Settings:   settings,
		Now:        now,
		ExePath:    exe,
		ConfigPath: cli.configPath(),
	}
	if r.StatusOnly {
		fmt.Println(render.StatusLine(in))
		return nil
	}
	fmt.Println(render.Render(in))
	return nil
}

// RecordCmd consumes a Stop hook payload from stdin and appends the
// session's new usage to the store. Exits zero even when the payload is
// garbage or the store is busy.
type RecordCmd struct {
	Payload string `help:"Read the hook payload from a file instead of stdin" placeholder:"FILE"`
}

func (r *RecordCmd) Run(cli *CLI) error {
	dash := config.LoadDashboard(cli.configPath())
	st := cli.openStore(dash)

	var in io.Reader = os.Stdin
	if r.Payload != "" {
		f, err := os.Open(r.Payload)
		if err != nil {
			logging.Logger.Warn("payload file unreadable", "path", r.Payload, "error", err)
			return nil
		}
		defer f.Close()
		in = f
	}

	prices, err := pricing.LoadDefault()
	if err != nil {
		logging.Logger.Warn("embedded price table unavailable", "error", err)
		prices = make(pricing.PriceTable)
	}

	rec := recorder.New(st, prices, cli.dataDir(), logging.Logger)
	if err := rec.Record(in); err != nil {
		// Logged inside the recorder; the hook contract is exit 0.
		logging.Logger.Debug("record finished with error", "error", err)
	}
	return nil
}

// ScanCmd rebuilds the store from the transcripts on disk. Useful to
// seed a fresh install or to recover after a reset.
type ScanCmd struct {
	Hours          float64 `help:"How far back to scan, in hours (0 = twice the window)"`
	RefreshPricing bool    `help:"Fetch current model prices from LiteLLM before costing"`
}

func (s *ScanCmd) Run(cli *CLI) error {
	dash := config.LoadDashboard(cli.configPath())
	st := cli.openStore(dash)

	lookback := 2 * dash.Window()
	if s.Hours > 0 {
		lookback = time.Duration(s.Hours * float64(time.Hour))
	}

	prices, err := pricing.LoadDefault()
	if err != nil {
		logging.Logger.Warn("embedded price table unavailable", "error", err)
		prices = make(pricing.PriceTable)
	}
	if s.RefreshPricing {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		fetched, err := pricing.FetchLiteLLM(ctx)
		if err != nil {
			logging.Logger.Warn("pricing refresh failed, using embedded table", "error", err)
		} else {
			prices.Merge(fetched)
		}
	}

	result := parser.ScanSince(cli.dataDir(), time.Now().Add(-lookback))
	prices.Apply(result.Events)

	err = st.Update(func(doc *store.Document) error {
		doc.Events = parser.Dedup(append(doc.Events, result.Events...))
		for id, off := range result.Offsets {
			doc.SessionOffsets[id] = off
		}
		for id, size := range result.Sizes {
			doc.SessionSizes[id] = size
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("updating store: %w", err)
	}

	fmt.Printf("scanned %d events from %s\n", len(result.Events), cli.dataDir())
	return nil
}

// ResetCmd clears the store. The next hook or scan starts a fresh
// window.
type ResetCmd struct{}

func (r *ResetCmd) Run(cli *CLI) error {
	dash := config.LoadDashboard(cli.configPath())
	st := cli.openStore(dash)
	if err := st.Reset(); err != nil {
		return fmt.Errorf("resetting store: %w", err)
	}
	fmt.Println("usage counter reset")
	return nil
}

// WatchCmd runs the live dashboard, refreshing on a timer and whenever
// the store or config files change on disk.
type WatchCmd struct{}

func (w *WatchCmd) Run(cli *CLI) error {
	dash := config.LoadDashboard(cli.configPath())
	settings, _ := config.LoadSettings(config.SettingsPath())
	st := cli.openStore(dash)

	model := ui.NewModel(st, settings, cli.configPath())
	p := tea.NewProgram(model, tea.WithAltScreen())

	fw := watcher.New(
		[]string{st.Path(), cli.configPath(), config.SettingsPath()},
		time.Duration(settings.General.Interval)*time.Second,
		func([]string) { p.Send(ui.FileChangedMsg{}) },
	)
	if err := fw.Start(); err != nil {
		logging.Logger.Warn("file watcher unavailable, relying on ticks", "error", err)
	} else {
		defer fw.Stop()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}
