package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/paperbridge/internal/processing"
)

// CommonModel is embedded by all views.
type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func describeOutcome(out processing.Outcome) string {
	switch out.Status {
	case processing.StatusCompleted:
		target := ""
		if out.TargetID != nil {
			target = " as " + *out.TargetID
		}

		return fmt.Sprintf("Document %d synced%s", out.SourceID, target)
	case processing.StatusSkipped:
		return fmt.Sprintf("Document %d skipped: %s", out.SourceID, out.Message)
	default:
		return fmt.Sprintf("Document %d %s: %s", out.SourceID, out.Status, out.Message)
	}
}
