package export

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/nfseaudit/internal/audit"
	"github.com/MrJamesThe3rd/nfseaudit/internal/reconcile"
	"github.com/MrJamesThe3rd/nfseaudit/internal/sequence"
	"github.com/MrJamesThe3rd/nfseaudit/internal/summary"
)

// cell is either text or an amount. Amounts keep their type until the
// writer decides how to render them.
type cell struct {
	text   string
	amount *decimal.Decimal
}

func text(s string) cell { return cell{text: s} }

func amount(d decimal.Decimal) cell { return cell{amount: &d} }

type table struct {
	header []string
	rows   [][]cell
}

func recordsTable(results []reconcile.Result) table {
	t := table{
		header: []string{
			"Número", "Data Emissão", "Competência",
			"CNPJ Prestador", "Prestador", "CNPJ/CPF Tomador", "Tomador",
			"Valor Serviços", "Base Cálculo", "Alíquota ISS", "Valor Líquido",
		},
	}

	for _, tax := range reconcile.Taxes {
		name := string(tax)
		t.header = append(t.header, name+" Declarado", name+" Esperado", "Status "+name)
	}

	t.header = append(t.header, "Status Geral", "Cancelada")

	for _, res := range results {
		rec := res.Record

		issued := ""
		if rec.IssueDate != nil {
			issued = rec.IssueDate.Format("02/01/2006")
		}

		row := []cell{
			text(rec.Number), text(issued), text(rec.Period()),
			text(rec.Issuer.TaxID), text(rec.Issuer.LegalName), text(rec.Payer.TaxID), text(rec.Payer.LegalName),
			amount(rec.ServiceValue), amount(rec.CalculationBase), amount(rec.ISSRate), amount(rec.NetValue),
		}

		for _, tax := range reconcile.Taxes {
			c := res.Check(tax)
			row = append(row, amount(c.Declared), amount(c.Expected), text(string(c.Status)))
		}

		row = append(row, text(string(res.Overall)), text(yesNo(rec.Cancelled)))
		t.rows = append(t.rows, row)
	}

	return t
}

func issuesTable(issues []sequence.Issue) table {
	t := table{
		header: []string{"Tipo", "CNPJ Prestador", "Prestador", "Competência", "Número", "Detalhe", "Registro Relacionado"},
	}

	for _, is := range issues {
		t.rows = append(t.rows, []cell{
			text(string(is.Type)),
			text(is.IssuerTaxID),
			text(is.IssuerLegalName),
			text(is.Period),
			text(strconv.Itoa(is.Number)),
			text(is.Detail),
			text(is.RelatedRecordID),
		})
	}

	return t
}

func summaryTable(periods []summary.Period) table {
	t := table{
		header: []string{
			"Competência", "Notas", "Ativas", "Canceladas", "Inconsistentes",
			"Valor Serviços", "IR Retido", "CSLL Retida", "PIS Retido", "COFINS Retido", "ISS Retido",
			"IRPJ a Pagar", "CSLL a Pagar", "PIS a Pagar", "COFINS a Pagar", "ISS a Pagar", "Total a Pagar",
		},
	}

	for _, p := range periods {
		t.rows = append(t.rows, []cell{
			text(p.Period),
			text(strconv.Itoa(p.Total)),
			text(strconv.Itoa(p.Active)),
			text(strconv.Itoa(p.Cancelled)),
			text(strconv.Itoa(p.Inconsistent)),
			amount(p.Totals.ServiceValue),
			amount(p.Totals.IR),
			amount(p.Totals.CSLL),
			amount(p.Totals.PIS),
			amount(p.Totals.COFINS),
			amount(p.Totals.ISSWithheld),
			amount(p.Due.IRPJ),
			amount(p.Due.CSLL),
			amount(p.Due.PIS),
			amount(p.Due.COFINS),
			amount(p.Due.ISS),
			amount(p.Due.Total()),
		})
	}

	return t
}

func tableFor(sheet Sheet, res *audit.Result) (table, error) {
	switch sheet {
	case SheetRecords:
		return recordsTable(res.Records), nil
	case SheetIssues:
		return issuesTable(res.Issues), nil
	case SheetSummary:
		return summaryTable(res.Periods), nil
	default:
		return table{}, ErrUnknownSheet
	}
}

func yesNo(b bool) string {
	if b {
		return "Sim"
	}

	return "Não"
}
