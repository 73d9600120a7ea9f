package view

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/paperbridge/internal/processing"
)

type DashboardModel struct {
	CommonModel
	svc *processing.Service

	loading bool
	stats   processing.Statistics
	health  processing.Health
}

func NewDashboardModel(svc *processing.Service) DashboardModel {
	return DashboardModel{svc: svc, loading: true}
}

func (m DashboardModel) Title() string     { return "Dashboard" }
func (m DashboardModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardMsg:
		m.loading = false
		m.stats = msg.stats
		m.health = msg.health

		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m DashboardModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Checking services...")
	}

	s := m.stats

	var b strings.Builder

	fmt.Fprintf(&b, "Documents:     %d\n", s.Total)
	fmt.Fprintf(&b, "  completed    %d\n", s.Completed)
	fmt.Fprintf(&b, "  failed       %d\n", s.Failed)
	fmt.Fprintf(&b, "  pending      %d\n", s.Pending)
	fmt.Fprintf(&b, "  processing   %d\n", s.Processing)
	fmt.Fprintf(&b, "  skipped      %d\n", s.Skipped)
	fmt.Fprintf(&b, "Open errors:   %d\n", s.UnresolvedErrors)
	fmt.Fprintf(&b, "Success rate:  %s\n", activeStyle(fmt.Sprintf("%.2f%%", s.SuccessRate)))

	if s.Error != "" {
		b.WriteString(errorStyle("Statistics unavailable: "+s.Error) + "\n")
	}

	b.WriteString("\nServices\n")

	for _, name := range slices.Sorted(maps.Keys(m.health.Components)) {
		c := m.health.Components[name]

		state := lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render("ok")
		if !c.Healthy {
			state = errorStyle("down: " + c.Error)
		}

		fmt.Fprintf(&b, "  %-12s %s\n", name, state)
	}

	title := lipgloss.NewStyle().Bold(true).Render("Paperbridge")

	return lipgloss.NewStyle().Padding(1, 2).Render(title + "\n\n" + b.String())
}

type dashboardMsg struct {
	stats  processing.Statistics
	health processing.Health
}

func (m DashboardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return dashboardMsg{stats: m.svc.Statistics(ctx), health: m.svc.Health(ctx)}
	}
}
