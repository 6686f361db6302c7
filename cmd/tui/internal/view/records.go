package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/nfseaudit/internal/reconcile"
)

type recordFilter int

const (
	recordFilterAll recordFilter = iota
	recordFilterInconsistent
	recordFilterOK
	recordFilterCancelled
)

var recordFilterLabels = []string{"All", "Inconsistent", "OK", "Cancelled"}

type RecordsModel struct {
	CommonModel

	table   table.Model
	all     []reconcile.Result
	visible []reconcile.Result
	filter  recordFilter
}

func NewRecordsModel(results []reconcile.Result) RecordsModel {
	columns := []table.Column{
		{Title: "Número", Width: 8},
		{Title: "Emissão", Width: 10},
		{Title: "Prestador", Width: 24},
		{Title: "Tomador", Width: 24},
		{Title: "Valor", Width: 12},
		{Title: "Status", Width: 34},
	}

	m := RecordsModel{
		table: newTable(columns),
		all:   results,
	}
	m.refreshTable()

	return m
}

func (m RecordsModel) Title() string { return "Reconciled Records" }

func (m RecordsModel) ShortHelp() string {
	return "Esc: back | f: filter | ↑/↓: move"
}

func (m RecordsModel) Init() tea.Cmd {
	return nil
}

func (m RecordsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 16)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "f":
			m.filter = (m.filter + 1) % recordFilter(len(recordFilterLabels))
			m.refreshTable()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m RecordsModel) View() string {
	header := fmt.Sprintf("Filter: [f] %s | %d of %d records",
		activeStyle(recordFilterLabels[m.filter]), len(m.visible), len(m.all))

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		bordered(m.table.View()),
	)

	if idx := m.table.Cursor(); idx >= 0 && idx < len(m.visible) {
		content = lipgloss.JoinVertical(lipgloss.Left, content, m.viewChecks(m.visible[idx]))
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m RecordsModel) viewChecks(res reconcile.Result) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "NFSe %s | Competência %s | %s\n\n", res.Record.Number, res.Record.Period(), res.Overall)
	fmt.Fprintf(&sb, "%-7s %14s %14s  %s\n", "Tributo", "Declarado", "Esperado", "Status")

	for _, tax := range reconcile.Taxes {
		c := res.Check(tax)

		status := string(c.Status)
		if c.Status.Inconsistent() {
			status = errorStyle(status)
		}

		fmt.Fprintf(&sb, "%-7s %14s %14s  %s\n", tax, FormatAmount(c.Declared), FormatAmount(c.Expected), status)
	}

	return lipgloss.NewStyle().
		Padding(0, 1).
		MarginTop(1).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Render(strings.TrimRight(sb.String(), "\n"))
}

func (m *RecordsModel) refreshTable() {
	m.visible = make([]reconcile.Result, 0, len(m.all))

	for _, res := range m.all {
		if m.keep(res) {
			m.visible = append(m.visible, res)
		}
	}

	rows := make([]table.Row, 0, len(m.visible))
	for _, res := range m.visible {
		rec := res.Record
		rows = append(rows, table.Row{
			rec.Number,
			FormatDate(rec.IssueDate),
			truncate(rec.Issuer.LegalName, 24),
			truncate(rec.Payer.LegalName, 24),
			FormatAmount(rec.ServiceValue),
			string(res.Overall),
		})
	}

	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

func (m RecordsModel) keep(res reconcile.Result) bool {
	switch m.filter {
	case recordFilterInconsistent:
		return !res.Record.Cancelled && res.Inconsistent()
	case recordFilterOK:
		return !res.Record.Cancelled && !res.Inconsistent()
	case recordFilterCancelled:
		return res.Record.Cancelled
	default:
		return true
	}
}
