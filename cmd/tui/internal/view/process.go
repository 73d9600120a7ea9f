package view

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/paperbridge/internal/processing"
)

type processState int

const (
	processStateForm processState = iota
	processStateRunning
	processStateResult
)

type processInput struct {
	ids   string
	limit string
	force bool
}

// ProcessModel runs the pipeline for explicit document ids, or for pending
// documents when no ids are given.
type ProcessModel struct {
	CommonModel
	svc       *processing.Service
	batchSize int

	state   processState
	form    *huh.Form
	input   *processInput
	spinner spinner.Model

	outcomes []processing.Outcome
	err      error
}

func NewProcessModel(svc *processing.Service, batchSize int) ProcessModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := ProcessModel{
		svc:       svc,
		batchSize: batchSize,
		input:     &processInput{limit: "50"},
		spinner:   s,
	}
	m.form = m.buildForm()

	return m
}

func (m ProcessModel) Title() string { return "Process Documents" }

func (m ProcessModel) ShortHelp() string {
	switch m.state {
	case processStateRunning:
		return "Processing..."
	case processStateResult:
		return "Esc: back to menu"
	}

	return "Esc: back | Enter: confirm"
}

func (m ProcessModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ProcessModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case processStateForm:
		return m.updateForm(msg)
	case processStateRunning:
		return m.updateRunning(msg)
	case processStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	return m, nil
}

func (m ProcessModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = processStateRunning
	m.err = nil

	return m, tea.Batch(m.spinner.Tick, m.runCmd(*m.input))
}

func (m ProcessModel) updateRunning(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(processResultMsg); ok {
		m.state = processStateResult
		m.outcomes = result.outcomes
		m.err = result.err

		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func (m ProcessModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("ids").
				Title("Document IDs").
				Description("Comma separated. Leave empty to process pending documents").
				Placeholder("123, 124").
				Value(&m.input.ids).
				Validate(func(s string) error {
					_, err := parseIDs(s)
					return err
				}),

			huh.NewInput().
				Key("limit").
				Title("Pending limit").
				Value(&m.input.limit).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n <= 0 {
						return fmt.Errorf("limit must be a positive number")
					}
					return nil
				}),

			huh.NewConfirm().
				Key("force").
				Title("Reprocess completed documents?").
				Value(&m.input.force),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ProcessModel) View() string {
	switch m.state {
	case processStateForm:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	case processStateRunning:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("%s Syncing documents to BigCapital...", m.spinner.View()),
		)
	case processStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ProcessModel) viewResult() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	if len(m.outcomes) == 0 {
		return lipgloss.NewStyle().Padding(1).Render("Nothing to process.")
	}

	counts := make(map[processing.Status]int)
	lines := make([]string, 0, len(m.outcomes))

	for _, out := range m.outcomes {
		counts[out.Status]++
		lines = append(lines, fmt.Sprintf("  %s  %s", statusStyle(out.Status), describeOutcome(out)))
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("46")).
		Render("Run Complete!")

	summary := fmt.Sprintf("Completed: %d | Failed: %d | Skipped: %d",
		counts[processing.StatusCompleted], counts[processing.StatusFailed], counts[processing.StatusSkipped])

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", summary, "", strings.Join(lines, "\n")),
	)
}

func parseIDs(s string) ([]int64, error) {
	var ids []int64

	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid document id %q", part)
		}

		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}

	return ids, nil
}

type processResultMsg struct {
	outcomes []processing.Outcome
	err      error
}

func (m ProcessModel) runCmd(in processInput) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := SyncCtx()
		defer cancel()

		ids, err := parseIDs(in.ids)
		if err != nil {
			return processResultMsg{err: err}
		}

		switch {
		case len(ids) == 1:
			out, err := m.svc.ProcessDocument(ctx, ids[0], in.force)
			if err != nil {
				return processResultMsg{err: err}
			}

			return processResultMsg{outcomes: []processing.Outcome{out}}
		case len(ids) > 1:
			return processResultMsg{outcomes: m.svc.BatchProcess(ctx, ids, m.batchSize)}
		}

		limit, _ := strconv.Atoi(strings.TrimSpace(in.limit))

		outcomes, err := m.svc.ProcessPending(ctx, limit, m.batchSize)

		return processResultMsg{outcomes: outcomes, err: err}
	}
}
