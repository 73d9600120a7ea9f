package view

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/paperbridge/internal/processing"
	"github.com/MrJamesThe3rd/paperbridge/internal/report"
)

type reportState int

const (
	reportStatePath reportState = iota
	reportStateWriting
	reportStateResult
)

type ReportModel struct {
	CommonModel
	svc *report.Service

	state   reportState
	form    *huh.Form
	dir     *string
	spinner spinner.Model

	written string
	err     error
}

func NewReportModel(svc *report.Service) ReportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	dir := "./reports"

	m := ReportModel{svc: svc, dir: &dir, spinner: s}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("path").
				Title("Output Path").
				Description("Directory will be created if it doesn't exist").
				Placeholder("./reports").
				Value(m.dir),
		),
	).WithWidth(50).WithShowHelp(false)

	return m
}

func (m ReportModel) Title() string { return "Export Report" }

func (m ReportModel) ShortHelp() string {
	switch m.state {
	case reportStateWriting:
		return "Exporting..."
	case reportStateResult:
		return "Esc: back to menu"
	}

	return "Esc: back | Enter: confirm"
}

func (m ReportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case reportStatePath:
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

		m.state = reportStateWriting

		return m, tea.Batch(m.spinner.Tick, m.writeCmd(*m.dir))

	case reportStateWriting:
		if result, ok := msg.(reportResultMsg); ok {
			m.state = reportStateResult
			m.written = result.path
			m.err = result.err

			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case reportStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	return m, nil
}

func (m ReportModel) View() string {
	switch m.state {
	case reportStatePath:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	case reportStateWriting:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("%s Writing spreadsheet...", m.spinner.View()),
		)
	case reportStateResult:
		if m.err != nil {
			return lipgloss.NewStyle().Padding(1).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
		}

		header := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")).
			Render("Export Complete!")

		return lipgloss.NewStyle().Padding(1).Render(
			lipgloss.JoinVertical(lipgloss.Left, header, "", "Saved to "+activeStyle(m.written)),
		)
	}

	return ""
}

type reportResultMsg struct {
	path string
	err  error
}

func (m ReportModel) writeCmd(dir string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := SyncCtx()
		defer cancel()

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return reportResultMsg{err: fmt.Errorf("creating directory: %w", err)}
		}

		path := filepath.Join(dir, m.svc.Filename())

		f, err := os.Create(path)
		if err != nil {
			return reportResultMsg{err: fmt.Errorf("creating file: %w", err)}
		}
		defer f.Close()

		w := bufio.NewWriter(f)

		if err := m.svc.Write(ctx, w, processing.ListFilter{}); err != nil {
			return reportResultMsg{err: err}
		}

		if err := w.Flush(); err != nil {
			return reportResultMsg{err: fmt.Errorf("writing file: %w", err)}
		}

		return reportResultMsg{path: path}
	}
}
