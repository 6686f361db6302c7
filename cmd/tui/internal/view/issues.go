package view

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/nfseaudit/internal/sequence"
)

type IssuesModel struct {
	CommonModel

	table  table.Model
	issues []sequence.Issue
}

func NewIssuesModel(issues []sequence.Issue) IssuesModel {
	columns := []table.Column{
		{Title: "Tipo", Width: 20},
		{Title: "Competência", Width: 11},
		{Title: "Número", Width: 8},
		{Title: "Prestador", Width: 24},
		{Title: "Detalhe", Width: 60},
	}

	t := newTable(columns)

	rows := make([]table.Row, 0, len(issues))
	for _, is := range issues {
		rows = append(rows, table.Row{
			string(is.Type),
			is.Period,
			strconv.Itoa(is.Number),
			truncate(is.IssuerLegalName, 24),
			is.Detail,
		})
	}

	t.SetRows(rows)

	return IssuesModel{table: t, issues: issues}
}

func (m IssuesModel) Title() string { return "Sequence Issues" }

func (m IssuesModel) ShortHelp() string { return "Esc: back | ↑/↓: move" }

func (m IssuesModel) Init() tea.Cmd {
	return nil
}

func (m IssuesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m IssuesModel) View() string {
	if len(m.issues) == 0 {
		return lipgloss.NewStyle().Padding(2).Render(
			okStyle("No gaps or duplicates in the invoice sequence.") + "\n\n(Esc to go back)",
		)
	}

	header := fmt.Sprintf("%s sequence issues", activeStyle(strconv.Itoa(len(m.issues))))

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().PaddingBottom(1).Render(header),
			bordered(m.table.View()),
		),
	)
}
