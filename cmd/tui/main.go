package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/paperbridge/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/paperbridge/internal/app"
	"github.com/MrJamesThe3rd/paperbridge/internal/config"
	"github.com/MrJamesThe3rd/paperbridge/internal/logging"
)

type model struct {
	app       *app.App
	batchSize int

	currentView View

	dashboardView view.DashboardModel
	documentsView view.DocumentsModel
	errorsView    view.ErrorsModel
	processView   view.ProcessModel
	reportView    view.ReportModel
}

type View int

const (
	ViewMenu      View = 0
	ViewDashboard View = 1
	ViewDocuments View = 2
	ViewErrors    View = 3
	ViewProcess   View = 4
	ViewReport    View = 5
)

func initialModel(a *app.App, batchSize int) model {
	return model{
		app:           a,
		batchSize:     batchSize,
		currentView:   ViewMenu,
		dashboardView: view.NewDashboardModel(a.Processing),
		documentsView: view.NewDocumentsModel(a.Processing),
		errorsView:    view.NewErrorsModel(a.Processing),
		processView:   view.NewProcessModel(a.Processing, batchSize),
		reportView:    view.NewReportModel(a.Reports),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewDashboard
				m.dashboardView = view.NewDashboardModel(m.app.Processing)

				return m, m.dashboardView.Init()
			case "2":
				m.currentView = ViewDocuments
				m.documentsView = view.NewDocumentsModel(m.app.Processing)

				return m, m.documentsView.Init()
			case "3":
				m.currentView = ViewErrors
				m.errorsView = view.NewErrorsModel(m.app.Processing)

				return m, m.errorsView.Init()
			case "4":
				m.currentView = ViewProcess
				m.processView = view.NewProcessModel(m.app.Processing, m.batchSize)

				return m, m.processView.Init()
			case "5":
				m.currentView = ViewReport
				m.reportView = view.NewReportModel(m.app.Reports)

				return m, m.reportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewDocuments:
		var newModel tea.Model
		newModel, cmd = m.documentsView.Update(msg)
		m.documentsView = newModel.(view.DocumentsModel)
	case ViewErrors:
		var newModel tea.Model
		newModel, cmd = m.errorsView.Update(msg)
		m.errorsView = newModel.(view.ErrorsModel)
	case ViewProcess:
		var newModel tea.Model
		newModel, cmd = m.processView.Update(msg)
		m.processView = newModel.(view.ProcessModel)
	case ViewReport:
		var newModel tea.Model
		newModel, cmd = m.reportView.Update(msg)
		m.reportView = newModel.(view.ReportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Paperbridge\n\n" +
				"1. Dashboard\n" +
				"2. Documents\n" +
				"3. Processing Errors\n" +
				"4. Process Documents\n" +
				"5. Export Report\n\n" +
				"q. Quit",
		)
	case ViewDashboard:
		return withHelp(m.dashboardView)
	case ViewDocuments:
		return withHelp(m.documentsView)
	case ViewErrors:
		return withHelp(m.errorsView)
	case ViewProcess:
		return withHelp(m.processView)
	case ViewReport:
		return withHelp(m.reportView)
	}

	return "Unknown View"
}

func withHelp(v view.View) string {
	title := lipgloss.NewStyle().Bold(true).PaddingLeft(1).Render(v.Title())
	help := lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(v.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, title, v.View(), help)
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI; logs go to a file when one is configured.
	var logOut io.Writer = io.Discard

	if cfg.App.TUILogFile != "" {
		f, err := tea.LogToFile(cfg.App.TUILogFile, "paperbridge")
		if err != nil {
			slog.Error("failed to open log file", "error", err)
			os.Exit(1)
		}
		defer f.Close()

		logOut = f
	}

	logging.Init(logOut, cfg.App.LogLevel, cfg.App.LogFormat)

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	p := tea.NewProgram(initialModel(a, cfg.Processing.BatchSize))
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		a.Close()
		os.Exit(1)
	}
}
