// Package nfse defines the canonical NFSe record shared by every layout and
// the normalizer that turns extracted strings into typed values.
package nfse

// Literal markers written into cancelled documents.
const (
	CancelledPayerName   = "CANCELADA"
	CancelledDescription = "NOTA FISCAL CANCELADA"
)

// Withheld-ISS and Simples Nacional codes as they appear in the documents.
const (
	CodeYes = "1"
	CodeNo  = "2"
)

// RawAddress is an address block as extracted, before normalization.
type RawAddress struct {
	Street           *string
	Number           *string
	Complement       *string
	District         *string
	MunicipalityCode *string
	State            *string
	PostalCode       *string
}

// RawParty is an issuer (prestador) or payer (tomador) block as extracted.
type RawParty struct {
	TaxID                 *string
	MunicipalRegistration *string
	LegalName             *string
	Address               RawAddress
	Phone                 *string
	Email                 *string
}

// RawRecord is one document as pulled out of the XML: every value is the
// source string, nil when the document does not carry it.
type RawRecord struct {
	ID                *string
	Number            *string
	VerificationCode  *string
	IssueDate         *string
	OperationNature   *string
	SpecialRegime     *string
	SimplesNacional   *string
	CulturalIncentive *string

	ServiceDescription      *string
	ServiceListItem         *string
	MunicipalTaxCode        *string
	ServiceMunicipalityCode *string

	ServiceValue          *string
	Deductions            *string
	PIS                   *string
	COFINS                *string
	INSS                  *string
	IR                    *string
	CSLL                  *string
	ISSWithheldCode       *string
	ISSValue              *string
	ISSWithheld           *string
	OtherWithholdings     *string
	CalculationBase       *string
	ISSRate               *string
	NetValue              *string
	UnconditionalDiscount *string
	ConditionalDiscount   *string

	Issuer RawParty
	Payer  RawParty

	AgencyMunicipalityCode *string
	AgencyState            *string

	Cancelled bool
}

// NewRawRecord returns a fresh record with every field unset. Extractors
// start from it so nothing leaks between documents.
func NewRawRecord() RawRecord {
	return RawRecord{}
}

// monetary returns pointers to every amount and rate field.
func (r *RawRecord) monetary() []**string {
	return []**string{
		&r.ServiceValue, &r.Deductions, &r.PIS, &r.COFINS, &r.INSS, &r.IR, &r.CSLL,
		&r.ISSValue, &r.ISSWithheld, &r.OtherWithholdings, &r.CalculationBase, &r.ISSRate,
		&r.NetValue, &r.UnconditionalDiscount, &r.ConditionalDiscount,
	}
}

// MarkCancelled applies the cancellation override: amounts and rates go to
// zero, payer identification and contact are cleared and the literal
// cancellation markers are written. It must run after every other field has
// been populated.
func (r *RawRecord) MarkCancelled() {
	r.Cancelled = true

	for _, f := range r.monetary() {
		zero := "0"
		*f = &zero
	}

	name := CancelledPayerName
	desc := CancelledDescription

	r.Payer = RawParty{LegalName: &name}
	r.ServiceDescription = &desc
}
