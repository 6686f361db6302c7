// Package reconcile checks the withholdings declared on each NFSe against
// what the issuer's regime and the run's rate table predict.
package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/nfseaudit/internal/nfse"
)

// Status is the outcome of checking one tax on one record.
type Status string

const (
	StatusOK                  Status = "OK"
	StatusDivergent           Status = "Divergent"
	StatusImproperWithholding Status = "ImproperWithholding"
	StatusCancelled           Status = "Cancelled"
	StatusNotApplicable       Status = "NotApplicable"
	StatusConfirmRate         Status = "OK (ConfirmRate)"
	StatusDivergentISS        Status = "Divergent (ISS)"
	StatusImproperISS         Status = "ImproperWithholding (ISS)"
	StatusNotWithheld         Status = "NotWithheld (OK)"
)

// Inconsistent reports whether the status counts as a problem. Confirm-rate
// and not-withheld are both acceptable outcomes.
func (s Status) Inconsistent() bool {
	switch s {
	case StatusOK, StatusCancelled, StatusNotApplicable, StatusConfirmRate, StatusNotWithheld:
		return false
	default:
		return true
	}
}

// Overall summarises the five tax statuses of a record.
type Overall string

const (
	OverallOK                  Overall = "OK"
	OverallInconsistent        Overall = "Inconsistent"
	OverallImproperWithholding Overall = "Inconsistent (ImproperWithholding)"
	OverallCancelled           Overall = "Cancelled"
	OverallNotApplicable       Overall = "NotApplicable"
	// OverallAttention is reserved for reporting filters. No rule assigns it.
	OverallAttention Overall = "Attention"
)

// Tax names a withheld tax.
type Tax string

const (
	TaxIR     Tax = "IR"
	TaxCSLL   Tax = "CSLL"
	TaxPIS    Tax = "PIS"
	TaxCOFINS Tax = "COFINS"
	TaxISS    Tax = "ISS"
)

// Taxes lists every checked tax in report order.
var Taxes = []Tax{TaxIR, TaxCSLL, TaxPIS, TaxCOFINS, TaxISS}

// Tolerance is the absolute difference accepted between a declared and an
// expected amount, inclusive.
var Tolerance = decimal.RequireFromString("0.01")

var hundred = decimal.NewFromInt(100)

// Check is the result for one tax.
type Check struct {
	Declared decimal.Decimal
	Expected decimal.Decimal
	Status   Status
}

// Result is a record together with its reconciliation fields.
type Result struct {
	Record  nfse.Record
	Checks  map[Tax]Check
	Overall Overall
}

// Check returns the check for tax.
func (r Result) Check(tax Tax) Check {
	return r.Checks[tax]
}

// Inconsistent reports whether any tax check is a problem.
func (r Result) Inconsistent() bool {
	for _, c := range r.Checks {
		if c.Status.Inconsistent() {
			return true
		}
	}

	return false
}

func declared(rec nfse.Record) map[Tax]decimal.Decimal {
	return map[Tax]decimal.Decimal{
		TaxIR:     rec.IR,
		TaxCSLL:   rec.CSLL,
		TaxPIS:    rec.PIS,
		TaxCOFINS: rec.COFINS,
		TaxISS:    rec.ISSWithheld,
	}
}

func newResult(rec nfse.Record, status Status, overall Overall) Result {
	res := Result{Record: rec, Checks: make(map[Tax]Check, len(Taxes)), Overall: overall}

	for tax, amount := range declared(rec) {
		res.Checks[tax] = Check{Declared: amount, Status: status}
	}

	return res
}

// Reconcile evaluates one record. It has no side effects and only depends on
// rec and table.
func Reconcile(rec nfse.Record, table RateTable) Result {
	switch {
	case rec.Cancelled:
		return newResult(rec, StatusCancelled, OverallCancelled)
	case rec.IssuerRegime() == nfse.RegimeSimplesNacional || rec.PayerType() == nfse.PayerIndividual:
		return exempt(rec)
	case rec.IssuerRegime() == nfse.RegimeLucroPresumido && rec.PayerType() == nfse.PayerOrganization:
		return required(rec, table)
	default:
		return newResult(rec, StatusNotApplicable, OverallNotApplicable)
	}
}

func ReconcileAll(records []nfse.Record, table RateTable) []Result {
	results := make([]Result, 0, len(records))

	for _, rec := range records {
		results = append(results, Reconcile(rec, table))
	}

	return results
}

// exempt handles issuers and payers that must not have anything withheld.
func exempt(rec nfse.Record) Result {
	res := newResult(rec, StatusOK, OverallOK)

	for tax, c := range res.Checks {
		if c.Declared.GreaterThan(Tolerance) {
			c.Status = StatusImproperWithholding
			res.Overall = OverallImproperWithholding
		}

		res.Checks[tax] = c
	}

	return res
}

func required(rec nfse.Record, table RateTable) Result {
	res := newResult(rec, StatusOK, OverallOK)

	expected := map[Tax]decimal.Decimal{
		TaxIR:     decimal.Zero,
		TaxCSLL:   decimal.Zero,
		TaxPIS:    decimal.Zero,
		TaxCOFINS: decimal.Zero,
	}

	if rec.ServiceValue.GreaterThanOrEqual(table.IRThreshold) {
		expected[TaxIR] = rec.ServiceValue.Mul(table.IR)
	}

	if rec.ServiceValue.GreaterThanOrEqual(table.CombinedThreshold) {
		expected[TaxCSLL] = rec.ServiceValue.Mul(table.CSLL)
		expected[TaxPIS] = rec.ServiceValue.Mul(table.PIS)
		expected[TaxCOFINS] = rec.ServiceValue.Mul(table.COFINS)
	}

	for tax, want := range expected {
		c := res.Checks[tax]
		c.Expected = want
		c.Status = StatusOK

		if !within(c.Declared, want) {
			c.Status = StatusDivergent
		}

		res.Checks[tax] = c
	}

	res.Checks[TaxISS] = checkISS(rec, table)

	for _, c := range res.Checks {
		switch c.Status {
		case StatusDivergent, StatusDivergentISS, StatusImproperISS:
			res.Overall = OverallInconsistent
		}
	}

	return res
}

func checkISS(rec nfse.Record, table RateTable) Check {
	c := Check{Declared: rec.ISSWithheld}

	switch {
	case rec.ISSWithheldFlag() == nfse.WithheldYes:
		c.Expected = ExpectedISS(rec, table)
		c.Status = StatusConfirmRate

		if !within(c.Declared, c.Expected) {
			c.Status = StatusDivergentISS
		}
	case rec.ISSWithheldFlag() == nfse.WithheldNo && c.Declared.GreaterThan(Tolerance):
		c.Status = StatusImproperISS
	default:
		c.Status = StatusNotWithheld
	}

	return c
}

// ExpectedISS is the ISS that should have been withheld: the document's own
// rate (a percentage) when present, the table's reference rate otherwise.
func ExpectedISS(rec nfse.Record, table RateTable) decimal.Decimal {
	base := rec.CalculationBase
	if table.ISSOnServiceValue {
		base = rec.ServiceValue
	}

	if rec.ISSRate.IsPositive() {
		return base.Mul(rec.ISSRate.Div(hundred))
	}

	return base.Mul(table.ISSReference)
}

func within(declared, expected decimal.Decimal) bool {
	return declared.Sub(expected).Abs().LessThanOrEqual(Tolerance)
}
