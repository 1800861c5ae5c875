package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/anomredux/claude-bar/internal/config"
	"github.com/anomredux/claude-bar/internal/domain"
	"github.com/anomredux/claude-bar/internal/plan"
	"github.com/anomredux/claude-bar/internal/render"
	"github.com/anomredux/claude-bar/internal/store"
)

// TickMsg triggers periodic data refresh.
type TickMsg time.Time

// FileChangedMsg is sent by the file watcher when a tracked document
// is rewritten, forcing a refresh ahead of the next tick.
type FileChangedMsg struct{}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#DDDDDD"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(render.TierOK.Color()))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(render.TierWarning.Color()))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(render.TierError.Color()))
	borderStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
	loadErrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(render.TierError.Color())).Italic(true)
)

func tierStyle(t render.Tier) lipgloss.Style {
	switch t {
	case render.TierError:
		return errStyle
	case render.TierWarning:
		return warnStyle
	default:
		return okStyle
	}
}

// Model is the live dashboard shown by watch mode. Every refresh
// re-reads the usage store and dashboard config from disk so that
// edits and hook writes show up without restarting.
type Model struct {
	Store         *store.Store
	Settings      config.Settings
	DashboardPath string

	agg     domain.WindowAggregate
	limits  plan.Limits
	planID  plan.ID
	now     time.Time
	loadErr error

	width  int
	height int
	ready  bool
}

func NewModel(st *store.Store, settings config.Settings, dashboardPath string) Model {
	return Model{Store: st, Settings: settings, DashboardPath: dashboardPath}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("claude-bar"),
		func() tea.Msg { return TickMsg(time.Now()) },
	)
}

func doTick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			m = m.refresh(time.Now())
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case FileChangedMsg:
		m = m.refresh(time.Now())
		return m, nil

	case TickMsg:
		m = m.refresh(time.Time(msg))
		return m, doTick(time.Duration(m.Settings.General.Interval) * time.Second)
	}

	return m, nil
}

func (m Model) refresh(now time.Time) Model {
	m.now = now
	m.ready = true

	dash := config.LoadDashboard(m.DashboardPath)
	m.planID = dash.PlanID()

	doc, err := m.Store.Load()
	m.loadErr = err

	m.agg = domain.Aggregate(doc.Events, dash.Window(), now)
	m.limits = plan.Resolve(m.planID, dash.Overrides(), m.agg)
	return m
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	pct := m.limits.PercentUsed(m.agg)
	tier := render.ThresholdTier(pct)
	barWidth := m.Settings.Display.BarWidth

	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Claude Usage · %s plan", m.limits.PlanName)))
	b.WriteString("\n\n")

	bar := tierStyle(tier).Render(render.ProgressBar(pct, barWidth))
	b.WriteString(fmt.Sprintf("%s %s\n\n", bar, tierStyle(tier).Render(fmt.Sprintf("%.1f%%", pct*100))))

	rows := [][2]string{
		{"Tokens", fmt.Sprintf("%s / %s", render.FormatNumber(m.agg.TokensUsed), render.FormatNumber(m.limits.TokenLimit))},
		{"Cost", fmt.Sprintf("%s / %s", render.FormatUSD(m.agg.CostUsed), render.FormatUSD(m.limits.CostLimitUSD))},
		{"Messages", fmt.Sprintf("%s / %s", render.FormatNumber(m.agg.MessageCount), render.FormatNumber(m.limits.MessageLimit))},
	}
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("%s  %s\n", labelStyle.Render(fmt.Sprintf("%-10s", row[0])), valueStyle.Render(row[1])))
	}

	if models := m.agg.ModelsByCost(); len(models) > 0 {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("By model"))
		b.WriteString("\n")
		max := m.Settings.Display.MaxModels
		for i, mu := range models {
			if max > 0 && i >= max {
				break
			}
			name := mu.Model
			if name == "" {
				name = "estimated"
			}
			b.WriteString(valueStyle.Render(fmt.Sprintf("  %-28s %10s  %s",
				name, render.FormatNumber(mu.Tokens), render.FormatUSD(mu.CostUSD))))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.agg.TokensUsed > 0 {
		b.WriteString(fmt.Sprintf("%s  %s\n",
			labelStyle.Render("Next drop "),
			valueStyle.Render(render.FormatCountdown(m.agg.TimeToExpiry(m.now)))))
		b.WriteString(fmt.Sprintf("%s  %s\n",
			labelStyle.Render("Full clear"),
			valueStyle.Render(render.FormatCountdown(m.agg.TimeToFullClear(m.now)))))
	} else {
		b.WriteString(okStyle.Render("window clear"))
		b.WriteString("\n")
	}

	if m.loadErr != nil {
		b.WriteString("\n")
		b.WriteString(loadErrStyle.Render("store unreadable, showing empty window"))
		b.WriteString("\n")
	}

	panel := borderStyle.Render(strings.TrimRight(b.String(), "\n"))
	footer := footerStyle.Render("r refresh · q quit")
	return panel + "\n" + footer + "\n"
}
