// Package summary aggregates reconciled records per accounting period.
package summary

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/nfseaudit/internal/reconcile"
)

type Issuer struct {
	TaxID     string
	LegalName string
}

// Totals sums active records. Withheld amounts are the declared ones.
type Totals struct {
	ServiceValue    decimal.Decimal
	IR              decimal.Decimal
	CSLL            decimal.Decimal
	PIS             decimal.Decimal
	COFINS          decimal.Decimal
	ISSWithheld     decimal.Decimal
	CalculationBase decimal.Decimal
	NetValue        decimal.Decimal
}

// Due is the estimated tax still to pay after withholding, never negative.
type Due struct {
	IRPJ   decimal.Decimal
	CSLL   decimal.Decimal
	PIS    decimal.Decimal
	COFINS decimal.Decimal
	ISS    decimal.Decimal
}

func (d Due) Total() decimal.Decimal {
	return decimal.Sum(d.IRPJ, d.CSLL, d.PIS, d.COFINS, d.ISS)
}

type Period struct {
	// Period is YYYY-MM, or "" for undated records.
	Period          string
	Issuers         []Issuer
	MultipleIssuers bool

	Total        int
	Active       int
	Cancelled    int
	Inconsistent int
	Attention    int

	Totals Totals
	Due    Due
	// Breakdown counts active records per "TAX - status" for every status
	// that is a problem.
	Breakdown map[string]int
}

// Build groups results by period, in ascending period order.
func Build(results []reconcile.Result, table reconcile.RateTable) []Period {
	byPeriod := make(map[string]*Period)

	for _, res := range results {
		key := res.Record.Period()

		p, ok := byPeriod[key]
		if !ok {
			p = &Period{Period: key, Breakdown: make(map[string]int)}
			byPeriod[key] = p
		}

		add(p, res)
	}

	periods := make([]Period, 0, len(byPeriod))

	for _, p := range byPeriod {
		p.MultipleIssuers = len(p.Issuers) > 1
		p.Due = estimate(p.Totals, table.Estimate)
		periods = append(periods, *p)
	}

	slices.SortFunc(periods, func(a, b Period) int {
		return cmp.Compare(a.Period, b.Period)
	})

	return periods
}

func add(p *Period, res reconcile.Result) {
	p.Total++

	if res.Record.Cancelled {
		p.Cancelled++
		return
	}

	p.Active++

	switch res.Overall {
	case reconcile.OverallInconsistent, reconcile.OverallImproperWithholding:
		p.Inconsistent++
	case reconcile.OverallAttention:
		p.Attention++
	}

	for _, tax := range reconcile.Taxes {
		if status := res.Check(tax).Status; status.Inconsistent() {
			p.Breakdown[BreakdownKey(tax, status)]++
		}
	}

	issuer := Issuer{TaxID: res.Record.Issuer.TaxID, LegalName: res.Record.Issuer.LegalName}
	if !slices.Contains(p.Issuers, issuer) {
		p.Issuers = append(p.Issuers, issuer)
	}

	rec := res.Record
	t := &p.Totals
	t.ServiceValue = t.ServiceValue.Add(rec.ServiceValue)
	t.IR = t.IR.Add(rec.IR)
	t.CSLL = t.CSLL.Add(rec.CSLL)
	t.PIS = t.PIS.Add(rec.PIS)
	t.COFINS = t.COFINS.Add(rec.COFINS)
	t.ISSWithheld = t.ISSWithheld.Add(rec.ISSWithheld)
	t.CalculationBase = t.CalculationBase.Add(rec.CalculationBase)
	t.NetValue = t.NetValue.Add(rec.NetValue)
}

func BreakdownKey(tax reconcile.Tax, status reconcile.Status) string {
	return fmt.Sprintf("%s - %s", tax, status)
}

func estimate(t Totals, rates reconcile.Estimate) Due {
	issBase := t.CalculationBase
	if rates.ISSOnRevenue {
		issBase = t.ServiceValue
	}

	return Due{
		IRPJ:   floor(t.ServiceValue.Mul(rates.IRPJ).Sub(t.IR)),
		CSLL:   floor(t.ServiceValue.Mul(rates.CSLL).Sub(t.CSLL)),
		PIS:    floor(t.ServiceValue.Mul(rates.PIS).Sub(t.PIS)),
		COFINS: floor(t.ServiceValue.Mul(rates.COFINS).Sub(t.COFINS)),
		ISS:    floor(issBase.Mul(rates.ISS).Sub(t.ISSWithheld)),
	}
}

func floor(d decimal.Decimal) decimal.Decimal {
	return decimal.Max(d, decimal.Zero)
}
