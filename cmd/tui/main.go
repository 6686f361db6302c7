package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/nfseaudit/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/nfseaudit/internal/audit"
	"github.com/MrJamesThe3rd/nfseaudit/internal/config"
	"github.com/MrJamesThe3rd/nfseaudit/internal/export"
	"github.com/MrJamesThe3rd/nfseaudit/internal/logging"
)

type model struct {
	auditService  *audit.Service
	exportService *export.Service
	cfg           *config.Config

	currentView View
	result      *audit.Result
	status      string

	runView     view.RunModel
	recordsView view.RecordsModel
	issuesView  view.IssuesModel
	summaryView view.SummaryModel
	exportView  view.ExportModel
}

type View int

const (
	ViewMenu    View = 0
	ViewRun     View = 1
	ViewRecords View = 2
	ViewIssues  View = 3
	ViewSummary View = 4
	ViewExport  View = 5
)

func initialModel(cfg *config.Config) model {
	auditSvc := audit.NewService(cfg.Audit.Workers).WithGapLimit(cfg.Audit.GapLimit)
	expSvc := export.NewService()

	return model{
		auditService:  auditSvc,
		exportService: expSvc,
		cfg:           cfg,
		currentView:   ViewMenu,
		runView:       view.NewRunModel(auditSvc, cfg.RateTableNamed, cfg.Audit.RateTable),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			return m.updateMenu(msg)
		}
	case view.AuditDoneMsg:
		m.result = msg.Result
		m.status = ""
		m.recordsView = view.NewRecordsModel(msg.Result.Records)
		m.issuesView = view.NewIssuesModel(msg.Result.Issues)
		m.summaryView = view.NewSummaryModel(msg.Result.Periods, msg.Result.Table.Name)

		return m, nil
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewRun:
		var newModel tea.Model
		newModel, cmd = m.runView.Update(msg)
		m.runView = newModel.(view.RunModel)
	case ViewRecords:
		var newModel tea.Model
		newModel, cmd = m.recordsView.Update(msg)
		m.recordsView = newModel.(view.RecordsModel)
	case ViewIssues:
		var newModel tea.Model
		newModel, cmd = m.issuesView.Update(msg)
		m.issuesView = newModel.(view.IssuesModel)
	case ViewSummary:
		var newModel tea.Model
		newModel, cmd = m.summaryView.Update(msg)
		m.summaryView = newModel.(view.SummaryModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "1":
		m.currentView = ViewRun
		m.runView = view.NewRunModel(m.auditService, m.cfg.RateTableNamed, m.cfg.Audit.RateTable)

		return m, m.runView.Init()
	case "2", "3", "4", "5":
		if m.result == nil {
			m.status = "Audit a folder first."
			return m, nil
		}
	}

	switch msg.String() {
	case "2":
		m.currentView = ViewRecords
		return m, m.recordsView.Init()
	case "3":
		m.currentView = ViewIssues
		return m, m.issuesView.Init()
	case "4":
		m.currentView = ViewSummary
		return m, m.summaryView.Init()
	case "5":
		m.currentView = ViewExport
		m.exportView = view.NewExportModel(m.exportService, m.result)

		return m, m.exportView.Init()
	}

	return m, nil
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return m.viewMenu()
	case ViewRun:
		return m.runView.View()
	case ViewRecords:
		return m.recordsView.View()
	case ViewIssues:
		return m.issuesView.View()
	case ViewSummary:
		return m.summaryView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func (m model) viewMenu() string {
	loaded := "No audit loaded"
	if m.result != nil {
		loaded = fmt.Sprintf("Loaded: %d records, %d issues (%s)",
			len(m.result.Records), len(m.result.Issues), m.result.Table.Name)
	}

	menu := m.cfg.App.Name + "\n\n" +
		loaded + "\n\n" +
		"1. Audit Folder\n" +
		"2. Reconciled Records\n" +
		"3. Sequence Issues\n" +
		"4. Period Summary\n" +
		"5. Export Report\n\n" +
		"q. Quit"

	if m.status != "" {
		menu += "\n\n" + lipgloss.NewStyle().Faint(true).Render(m.status)
	}

	return lipgloss.NewStyle().Padding(2).Render(menu)
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logFile, err := tea.LogToFile("nfseaudit.log", "")
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	logging.Setup(logFile, cfg.App.LogLevel, cfg.App.LogFormat)

	p := tea.NewProgram(initialModel(cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
