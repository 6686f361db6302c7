package audit

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/nfseaudit/internal/audit"
	"github.com/MrJamesThe3rd/nfseaudit/internal/extractor"
	"github.com/MrJamesThe3rd/nfseaudit/internal/reconcile"
	"github.com/MrJamesThe3rd/nfseaudit/internal/sequence"
	"github.com/MrJamesThe3rd/nfseaudit/internal/summary"
)

// Response is the JSON body of an audit run. It is shared with the stored
// documents endpoint.
type Response struct {
	RateTable reconcile.TableName `json:"rate_table"`
	Files     []fileResponse      `json:"files"`
	Records   []recordResponse    `json:"records"`
	Issues    []issueResponse     `json:"issues"`
	Periods   []periodResponse    `json:"periods"`
	Warnings  []string            `json:"warnings,omitempty"`
}

type fileResponse struct {
	Name    string            `json:"name"`
	Dialect extractor.Dialect `json:"dialect"`
	Warning string            `json:"warning,omitempty"`
}

type partyResponse struct {
	TaxID     string `json:"tax_id"`
	LegalName string `json:"legal_name"`
}

type checkResponse struct {
	Declared decimal.Decimal  `json:"declared"`
	Expected decimal.Decimal  `json:"expected"`
	Status   reconcile.Status `json:"status"`
}

type recordResponse struct {
	ID              string                          `json:"id"`
	Number          string                          `json:"number"`
	IssueDate       *time.Time                      `json:"issue_date,omitempty"`
	Period          string                          `json:"period"`
	Cancelled       bool                            `json:"cancelled"`
	Issuer          partyResponse                   `json:"issuer"`
	Payer           partyResponse                   `json:"payer"`
	ServiceValue    decimal.Decimal                 `json:"service_value"`
	CalculationBase decimal.Decimal                 `json:"calculation_base"`
	ISSRate         decimal.Decimal                 `json:"iss_rate"`
	NetValue        decimal.Decimal                 `json:"net_value"`
	Checks          map[reconcile.Tax]checkResponse `json:"checks"`
	Overall         reconcile.Overall               `json:"overall"`
}

type issueResponse struct {
	Type            sequence.IssueType `json:"type"`
	IssuerTaxID     string             `json:"issuer_tax_id"`
	IssuerLegalName string             `json:"issuer_legal_name"`
	Period          string             `json:"period"`
	Number          int                `json:"number"`
	Detail          string             `json:"detail"`
	RelatedRecordID string             `json:"related_record_id,omitempty"`
}

type dueResponse struct {
	IRPJ   decimal.Decimal `json:"irpj"`
	CSLL   decimal.Decimal `json:"csll"`
	PIS    decimal.Decimal `json:"pis"`
	COFINS decimal.Decimal `json:"cofins"`
	ISS    decimal.Decimal `json:"iss"`
	Total  decimal.Decimal `json:"total"`
}

type withheldResponse struct {
	IR     decimal.Decimal `json:"ir"`
	CSLL   decimal.Decimal `json:"csll"`
	PIS    decimal.Decimal `json:"pis"`
	COFINS decimal.Decimal `json:"cofins"`
	ISS    decimal.Decimal `json:"iss"`
}

type periodResponse struct {
	Period          string           `json:"period"`
	Issuers         []partyResponse  `json:"issuers"`
	MultipleIssuers bool             `json:"multiple_issuers"`
	Total           int              `json:"total"`
	Active          int              `json:"active"`
	Cancelled       int              `json:"cancelled"`
	Inconsistent    int              `json:"inconsistent"`
	ServiceValue    decimal.Decimal  `json:"service_value"`
	Withheld        withheldResponse `json:"withheld"`
	Due             dueResponse      `json:"due"`
	Breakdown       map[string]int   `json:"breakdown"`
}

// NewResponse converts an audit result. res may be partial, as returned with
// audit.ErrNothingToProcess.
func NewResponse(res *audit.Result) Response {
	resp := Response{
		RateTable: res.Table.Name,
		Files:     make([]fileResponse, 0, len(res.Files)),
		Records:   make([]recordResponse, 0, len(res.Records)),
		Issues:    make([]issueResponse, 0, len(res.Issues)),
		Periods:   make([]periodResponse, 0, len(res.Periods)),
	}

	for _, f := range res.Files {
		fr := fileResponse{Name: f.Name, Dialect: f.Dialect}
		if f.Warning != nil {
			fr.Warning = f.Warning.Error()
		}

		resp.Files = append(resp.Files, fr)
	}

	for _, w := range res.Warnings() {
		resp.Warnings = append(resp.Warnings, w.Error())
	}

	for _, r := range res.Records {
		resp.Records = append(resp.Records, toRecordResponse(r))
	}

	for _, is := range res.Issues {
		resp.Issues = append(resp.Issues, toIssueResponse(is))
	}

	for _, p := range res.Periods {
		resp.Periods = append(resp.Periods, toPeriodResponse(p))
	}

	return resp
}

func toRecordResponse(r reconcile.Result) recordResponse {
	rec := r.Record

	resp := recordResponse{
		ID:              rec.ID,
		Number:          rec.Number,
		IssueDate:       rec.IssueDate,
		Period:          rec.Period(),
		Cancelled:       rec.Cancelled,
		Issuer:          partyResponse{TaxID: rec.Issuer.TaxID, LegalName: rec.Issuer.LegalName},
		Payer:           partyResponse{TaxID: rec.Payer.TaxID, LegalName: rec.Payer.LegalName},
		ServiceValue:    rec.ServiceValue,
		CalculationBase: rec.CalculationBase,
		ISSRate:         rec.ISSRate,
		NetValue:        rec.NetValue,
		Checks:          make(map[reconcile.Tax]checkResponse, len(r.Checks)),
		Overall:         r.Overall,
	}

	for tax, c := range r.Checks {
		resp.Checks[tax] = checkResponse{Declared: c.Declared, Expected: c.Expected, Status: c.Status}
	}

	return resp
}

func toIssueResponse(is sequence.Issue) issueResponse {
	return issueResponse{
		Type:            is.Type,
		IssuerTaxID:     is.IssuerTaxID,
		IssuerLegalName: is.IssuerLegalName,
		Period:          is.Period,
		Number:          is.Number,
		Detail:          is.Detail,
		RelatedRecordID: is.RelatedRecordID,
	}
}

func toPeriodResponse(p summary.Period) periodResponse {
	resp := periodResponse{
		Period:          p.Period,
		Issuers:         make([]partyResponse, 0, len(p.Issuers)),
		MultipleIssuers: p.MultipleIssuers,
		Total:           p.Total,
		Active:          p.Active,
		Cancelled:       p.Cancelled,
		Inconsistent:    p.Inconsistent,
		ServiceValue:    p.Totals.ServiceValue,
		Withheld: withheldResponse{
			IR:     p.Totals.IR,
			CSLL:   p.Totals.CSLL,
			PIS:    p.Totals.PIS,
			COFINS: p.Totals.COFINS,
			ISS:    p.Totals.ISSWithheld,
		},
		Due: dueResponse{
			IRPJ:   p.Due.IRPJ,
			CSLL:   p.Due.CSLL,
			PIS:    p.Due.PIS,
			COFINS: p.Due.COFINS,
			ISS:    p.Due.ISS,
			Total:  p.Due.Total(),
		},
		Breakdown: p.Breakdown,
	}

	for _, is := range p.Issuers {
		resp.Issuers = append(resp.Issuers, partyResponse{TaxID: is.TaxID, LegalName: is.LegalName})
	}

	return resp
}
