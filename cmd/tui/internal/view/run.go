package view

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/nfseaudit/internal/audit"
	"github.com/MrJamesThe3rd/nfseaudit/internal/reconcile"
)

const runTimeout = 5 * time.Minute

// TableResolver maps a rate table name to the table used for a run.
type TableResolver func(name string) (reconcile.RateTable, error)

type runState int

const (
	runStateTableSelect runState = iota
	runStateFolderPick
	runStateRunning
	runStateResult
)

type RunModel struct {
	CommonModel
	auditService *audit.Service
	tables       TableResolver

	state      runState
	form       *huh.Form
	tableName  string
	filePicker filepicker.Model
	spinner    spinner.Model
	folder     string

	result *audit.Result
	status string
	err    error
}

func NewRunModel(svc *audit.Service, tables TableResolver, defaultTable string) RunModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.ShowHidden = false
	fp.DirAllowed = true
	fp.FileAllowed = false
	fp.SetHeight(15)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := RunModel{
		auditService: svc,
		tables:       tables,
		tableName:    defaultTable,
		filePicker:   fp,
		spinner:      s,
	}
	m.form = m.buildTableForm()

	return m
}

func (m RunModel) Title() string { return "Audit Folder" }

func (m RunModel) ShortHelp() string {
	switch m.state {
	case runStateFolderPick:
		return "Enter: open/select folder | c: use current folder | Esc: back"
	case runStateRunning:
		return "Auditing..."
	}

	return "Esc: back | Enter: select"
}

func (m RunModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m RunModel) buildTableForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("table").
				Title("Rate table").
				Description("Expected withholdings and estimated taxes follow this table").
				Options(
					huh.NewOption("Lucro Presumido (standard)", string(reconcile.TableStandard)),
					huh.NewOption("Equiparação Hospitalar", string(reconcile.TableHospital)),
				).
				Value(&m.tableName),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m RunModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

	case runResultMsg:
		m.state = runStateResult
		m.result = msg.result
		m.err = msg.err

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("Audited %d files: %d records, %d sequence issues.",
			len(msg.result.Files), len(msg.result.Records), len(msg.result.Issues))

		result := msg.result

		return m, func() tea.Msg { return AuditDoneMsg{Result: result} }
	}

	switch m.state {
	case runStateTableSelect:
		return m.updateTableSelect(msg)
	case runStateFolderPick:
		return m.updateFolderPick(msg)
	case runStateRunning:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m RunModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case runStateFolderPick, runStateResult:
		m.state = runStateTableSelect
		m.err = nil
		m.status = ""
		m.form = m.buildTableForm()

		return m, m.form.Init()
	case runStateRunning:
		return m, nil
	}

	return m, Back
}

func (m RunModel) updateTableSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.tableName = m.form.GetString("table")
	m.state = runStateFolderPick

	return m, m.filePicker.Init()
}

func (m RunModel) updateFolderPick(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "c" {
		return m.startRun(m.filePicker.CurrentDirectory)
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		return m.startRun(path)
	}

	return m, cmd
}

func (m RunModel) startRun(folder string) (tea.Model, tea.Cmd) {
	m.folder = folder
	m.state = runStateRunning
	m.status = fmt.Sprintf("Auditing %s...", folder)

	return m, tea.Batch(m.spinner.Tick, m.runCmd(folder, m.tableName))
}

func (m RunModel) View() string {
	switch m.state {
	case runStateTableSelect:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	case runStateFolderPick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select folder with NFSe XML files (%s):\n\n%s", m.tableName, m.filePicker.View()),
		)
	case runStateRunning:
		return lipgloss.NewStyle().Padding(2).Render(m.spinner.View() + " " + m.status)
	case runStateResult:
		return m.viewResult()
	}

	return ""
}

func (m RunModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)

	lines := []string{}
	if m.err != nil {
		lines = append(lines, errorStyle(m.status))
	} else {
		lines = append(lines, okStyle(m.status))
	}

	if m.result != nil {
		if warnings := m.result.Warnings(); len(warnings) > 0 {
			lines = append(lines, "", fmt.Sprintf("%d files skipped:", len(warnings)))

			for _, w := range warnings {
				lines = append(lines, lipgloss.NewStyle().Faint(true).Render("  "+w.Error()))
			}
		}
	}

	lines = append(lines, "", "(Esc to audit another folder)")

	return style.Render(strings.Join(lines, "\n"))
}

// Messages

type runResultMsg struct {
	result *audit.Result
	err    error
}

func (m RunModel) runCmd(folder, tableName string) tea.Cmd {
	return func() tea.Msg {
		table, err := m.tables(tableName)
		if err != nil {
			return runResultMsg{err: err}
		}

		docs, err := ReadFolder(folder)
		if err != nil {
			return runResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		res, err := m.auditService.Run(ctx, docs, table)
		if err != nil {
			return runResultMsg{result: res, err: err}
		}

		return runResultMsg{result: res}
	}
}

var errNoXML = errors.New("no xml files found")

// ReadFolder loads every .xml file directly inside dir, in name order.
func ReadFolder(dir string) ([]audit.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading folder: %w", err)
	}

	var docs []audit.Document

	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".xml") {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}

		docs = append(docs, audit.Document{Name: e.Name(), Content: content})
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w in %s", errNoXML, dir)
	}

	return docs, nil
}
