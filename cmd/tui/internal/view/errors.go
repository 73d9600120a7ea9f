package view

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/paperbridge/internal/processing"
)

type ErrorsModel struct {
	CommonModel
	svc *processing.Service

	table  table.Model
	errs   []*processing.ProcessingError
	busy   bool
	all    bool
	status string

	loading bool
	err     error
}

func NewErrorsModel(svc *processing.Service) ErrorsModel {
	columns := []table.Column{
		{Title: "Document", Width: 9},
		{Title: "Kind", Width: 17},
		{Title: "Message", Width: 48},
		{Title: "Occurred", Width: 16},
		{Title: "Retries", Width: 7},
		{Title: "Resolved", Width: 8},
	}

	return ErrorsModel{svc: svc, table: newTable(columns), loading: true}
}

func (m ErrorsModel) Title() string { return "Processing Errors" }
func (m ErrorsModel) ShortHelp() string {
	return "Esc: back | Enter: retry | a: toggle resolved | r: refresh"
}

func (m ErrorsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ErrorsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadErrorsMsg:
		m.loading = false
		m.err = msg.err
		m.errs = msg.errs
		m.refreshTable()

		return m, nil

	case retryMsg:
		m.busy = false
		m.status = msg.text

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}

		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "a":
			m.all = !m.all
			m.loading = true

			return m, m.loadCmd()
		case "enter":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.errs) || m.errs[idx].Resolved {
				return m, nil
			}

			pe := m.errs[idx]
			m.busy = true
			m.status = fmt.Sprintf("Retrying document %d...", pe.SourceID)

			return m, m.retryCmd(pe)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ErrorsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading errors...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	scope := "Unresolved"
	if m.all {
		scope = "All"
	}

	header := fmt.Sprintf("Showing: [a] %s | %d errors", activeStyle(scope), len(m.errs))

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View()),
	)

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *ErrorsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.errs))

	for _, pe := range m.errs {
		resolved := "no"
		if pe.Resolved {
			resolved = "yes"
		}

		rows = append(rows, table.Row{
			strconv.FormatInt(pe.SourceID, 10),
			string(pe.Kind),
			truncate(pe.Message, 48),
			FormatTime(&pe.OccurredAt),
			strconv.Itoa(pe.RetryCount),
			resolved,
		})
	}

	m.table.SetRows(rows)
}

type loadErrorsMsg struct {
	errs []*processing.ProcessingError
	err  error
}

func (m ErrorsModel) loadCmd() tea.Cmd {
	filter := processing.ErrorFilter{Limit: documentsPageSize}
	if !m.all {
		filter.Resolved = new(false)
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		errs, err := m.svc.ListErrors(ctx, filter)

		return loadErrorsMsg{errs: errs, err: err}
	}
}

type retryMsg struct {
	text string
}

func (m ErrorsModel) retryCmd(pe *processing.ProcessingError) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := SyncCtx()
		defer cancel()

		out, err := m.svc.RetryError(ctx, pe.ID)
		if err != nil {
			return retryMsg{text: fmt.Sprintf("Retry failed: %v", err)}
		}

		return retryMsg{text: describeOutcome(out)}
	}
}
