package view

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/paperbridge/internal/processing"
)

const documentsPageSize = 200

type documentsState int

const (
	documentsStateBrowse documentsState = iota
	documentsStateSkip
	documentsStateBusy
)

var statusFilters = []processing.Status{
	"",
	processing.StatusPending,
	processing.StatusProcessing,
	processing.StatusCompleted,
	processing.StatusFailed,
	processing.StatusSkipped,
}

type DocumentsModel struct {
	CommonModel
	svc *processing.Service

	state documentsState
	table table.Model
	docs  []*processing.ProcessedDocument
	form  *huh.Form

	statusFilterIdx int

	loading bool
	err     error
	status  string

	// Form bindings live on the heap so copies of the model share them.
	skipReason *string
}

func NewDocumentsModel(svc *processing.Service) DocumentsModel {
	columns := []table.Column{
		{Title: "ID", Width: 8},
		{Title: "Status", Width: 11},
		{Title: "Title", Width: 36},
		{Title: "Amount", Width: 14},
		{Title: "Target", Width: 12},
		{Title: "Retries", Width: 7},
		{Title: "Processed", Width: 16},
	}

	return DocumentsModel{
		svc:        svc,
		table:      newTable(columns),
		loading:    true,
		skipReason: new(string),
	}
}

func (m DocumentsModel) Title() string { return "Documents" }
func (m DocumentsModel) ShortHelp() string {
	if m.state == documentsStateSkip {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | p: process | f: force | k: skip | s: status filter | r: refresh"
}

func (m DocumentsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DocumentsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDocumentsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.docs = msg.docs
		m.refreshTable()

		return m, nil

	case documentActionMsg:
		m.status = msg.text
		m.state = documentsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case documentsStateBrowse:
		return m.updateBrowse(msg)
	case documentsStateSkip:
		return m.updateSkip(msg)
	}

	return m, nil
}

func (m DocumentsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % len(statusFilters)
			m.loading = true

			return m, m.loadCmd()
		case "p", "f":
			doc := m.selected()
			if doc == nil {
				return m, nil
			}

			m.state = documentsStateBusy
			m.status = fmt.Sprintf("Processing document %d...", doc.SourceID)

			return m, m.processCmd(doc.SourceID, keyMsg.String() == "f")
		case "k":
			return m.enterSkipMode()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m DocumentsModel) enterSkipMode() (tea.Model, tea.Cmd) {
	if m.selected() == nil {
		return m, nil
	}

	*m.skipReason = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("reason").
				Title("Reason").
				Placeholder("not an expense").
				Value(m.skipReason),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = documentsStateSkip
	m.table.Blur()

	return m, m.form.Init()
}

func (m DocumentsModel) updateSkip(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = documentsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	doc := m.selected()
	if doc == nil {
		return m, nil
	}

	m.state = documentsStateBusy

	return m, m.skipCmd(doc.SourceID, *m.skipReason)
}

func (m DocumentsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading documents...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	label := "All"
	if s := statusFilters[m.statusFilterIdx]; s != "" {
		label = string(s)
	}

	header := fmt.Sprintf("Filter: [s] Status: %s | %d documents", activeStyle(label), len(m.docs))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == documentsStateSkip && m.form != nil {
		doc := m.selected()

		title := ""
		if doc != nil {
			title = doc.Title()
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("Skip Document\n\n%s\n\n%s", title, m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if doc := m.selected(); doc != nil && doc.ErrorMessage != nil && m.state == documentsStateBrowse {
		content += "\n" + errorStyle(truncate(*doc.ErrorMessage, 120))
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m DocumentsModel) selected() *processing.ProcessedDocument {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.docs) {
		return nil
	}

	return m.docs[idx]
}

func (m *DocumentsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.docs))

	for _, doc := range m.docs {
		target := "-"
		if doc.TargetID != nil {
			target = *doc.TargetID
		}

		rows = append(rows, table.Row{
			strconv.FormatInt(doc.SourceID, 10),
			string(doc.Status),
			truncate(doc.Title(), 36),
			FormatAmount(doc.Metadata),
			target,
			strconv.Itoa(doc.RetryCount),
			FormatTime(doc.ProcessedAt),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadDocumentsMsg struct {
	docs []*processing.ProcessedDocument
	err  error
}

func (m DocumentsModel) loadCmd() tea.Cmd {
	filter := processing.ListFilter{Limit: documentsPageSize}
	if s := statusFilters[m.statusFilterIdx]; s != "" {
		filter.Status = &s
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		docs, err := m.svc.ListDocuments(ctx, filter)

		return loadDocumentsMsg{docs: docs, err: err}
	}
}

type documentActionMsg struct {
	text string
}

func (m DocumentsModel) processCmd(id int64, force bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := SyncCtx()
		defer cancel()

		out, err := m.svc.ProcessDocument(ctx, id, force)
		if err != nil {
			return documentActionMsg{text: fmt.Sprintf("Document %d: %v", id, err)}
		}

		return documentActionMsg{text: describeOutcome(out)}
	}
}

func (m DocumentsModel) skipCmd(id int64, reason string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := m.svc.Skip(ctx, id, reason); err != nil {
			return documentActionMsg{text: fmt.Sprintf("Error skipping %d: %v", id, err)}
		}

		return documentActionMsg{text: fmt.Sprintf("Document %d skipped", id)}
	}
}
