package view

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/nfseaudit/internal/reconcile"
	"github.com/MrJamesThe3rd/nfseaudit/internal/summary"
)

type SummaryModel struct {
	CommonModel

	periods []summary.Period
	table   reconcile.TableName
	cursor  int
}

func NewSummaryModel(periods []summary.Period, table reconcile.TableName) SummaryModel {
	return SummaryModel{periods: periods, table: table}
}

func (m SummaryModel) Title() string { return "Period Summary" }

func (m SummaryModel) ShortHelp() string { return "Esc: back | ←/→: period" }

func (m SummaryModel) Init() tea.Cmd {
	return nil
}

func (m SummaryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "left", "h":
		if m.cursor > 0 {
			m.cursor--
		}
	case "right", "l":
		if m.cursor < len(m.periods)-1 {
			m.cursor++
		}
	}

	return m, nil
}

func (m SummaryModel) View() string {
	if len(m.periods) == 0 {
		return lipgloss.NewStyle().Padding(2).Render("No periods to show.\n\n(Esc to go back)")
	}

	p := m.periods[m.cursor]

	name := p.Period
	if name == "" {
		name = "sem data"
	}

	header := fmt.Sprintf("Competência %s (%d/%d) | tabela %s",
		activeStyle(name), m.cursor+1, len(m.periods), m.table)

	counts := fmt.Sprintf("Notas: %d | Ativas: %d | Canceladas: %d | Inconsistentes: %d",
		p.Total, p.Active, p.Cancelled, p.Inconsistent)

	var issuers []string
	for _, is := range p.Issuers {
		issuers = append(issuers, fmt.Sprintf("%s (%s)", is.LegalName, is.TaxID))
	}

	if p.MultipleIssuers {
		issuers = append(issuers, errorStyle("mais de um prestador nesta competência"))
	}

	left := panel("Retenções", [][2]string{
		{"Valor serviços", FormatAmount(p.Totals.ServiceValue)},
		{"Base cálculo", FormatAmount(p.Totals.CalculationBase)},
		{"IR", FormatAmount(p.Totals.IR)},
		{"CSLL", FormatAmount(p.Totals.CSLL)},
		{"PIS", FormatAmount(p.Totals.PIS)},
		{"COFINS", FormatAmount(p.Totals.COFINS)},
		{"ISS", FormatAmount(p.Totals.ISSWithheld)},
	})

	right := panel("Impostos a pagar (estimativa)", [][2]string{
		{"IRPJ", FormatAmount(p.Due.IRPJ)},
		{"CSLL", FormatAmount(p.Due.CSLL)},
		{"PIS", FormatAmount(p.Due.PIS)},
		{"COFINS", FormatAmount(p.Due.COFINS)},
		{"ISS", FormatAmount(p.Due.ISS)},
		{"Total", FormatAmount(p.Due.Total())},
	})

	parts := []string{
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		counts,
		strings.Join(issuers, "\n"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, left, right),
	}

	if len(p.Breakdown) > 0 {
		var lines []string
		for _, key := range slices.Sorted(maps.Keys(p.Breakdown)) {
			lines = append(lines, fmt.Sprintf("%-40s %d", key, p.Breakdown[key]))
		}

		parts = append(parts, "", "Inconsistências:", strings.Join(lines, "\n"))
	}

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func panel(title string, rows [][2]string) string {
	var sb strings.Builder

	sb.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
	sb.WriteString("\n\n")

	for _, r := range rows {
		fmt.Fprintf(&sb, "%-16s %14s\n", r[0], r[1])
	}

	return lipgloss.NewStyle().
		Padding(0, 1).
		MarginRight(2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Render(strings.TrimRight(sb.String(), "\n"))
}
