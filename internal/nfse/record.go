package nfse

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxRegime is the issuer's federal tax regime.
type TaxRegime string

const (
	RegimeSimplesNacional TaxRegime = "SimplesNacional"
	RegimeLucroPresumido  TaxRegime = "LucroPresumido"
	RegimeUnknown         TaxRegime = "Unknown"
)

// PayerType classifies the payer by the length of its tax id.
type PayerType string

const (
	PayerIndividual   PayerType = "Individual"
	PayerOrganization PayerType = "Organization"
	PayerUnknown      PayerType = "Unknown"
)

// WithheldFlag is the declared "ISS retido" indicator.
type WithheldFlag string

const (
	WithheldYes     WithheldFlag = "Yes"
	WithheldNo      WithheldFlag = "No"
	WithheldUnknown WithheldFlag = "Unknown"
)

const (
	individualIDLength   = 11
	organizationIDLength = 14
)

type Address struct {
	Street           string
	Number           string
	Complement       string
	District         string
	MunicipalityCode string
	State            string
	PostalCode       string
}

type Party struct {
	TaxID                 string
	MunicipalRegistration string
	LegalName             string
	Address               Address
	Phone                 string
	Email                 string
}

// Record is the canonical, typed form of one NFSe. Text fields are empty
// when the document does not carry them and amounts are zero.
type Record struct {
	ID                string
	Number            string
	VerificationCode  string
	IssueDate         *time.Time
	OperationNature   string
	SpecialRegime     string
	SimplesNacional   string
	CulturalIncentive string
	Cancelled         bool

	ServiceDescription      string
	ServiceListItem         string
	MunicipalTaxCode        string
	ServiceMunicipalityCode string

	ServiceValue          decimal.Decimal
	Deductions            decimal.Decimal
	PIS                   decimal.Decimal
	COFINS                decimal.Decimal
	INSS                  decimal.Decimal
	IR                    decimal.Decimal
	CSLL                  decimal.Decimal
	ISSValue              decimal.Decimal
	ISSWithheld           decimal.Decimal
	OtherWithholdings     decimal.Decimal
	CalculationBase       decimal.Decimal
	ISSRate               decimal.Decimal // percentage, e.g. 2.5 for 2.5%
	NetValue              decimal.Decimal
	UnconditionalDiscount decimal.Decimal
	ConditionalDiscount   decimal.Decimal
	ISSWithheldCode       string

	Issuer Party
	Payer  Party

	AgencyMunicipalityCode string
	AgencyState            string
}

// Period returns the accounting period as YYYY-MM, or "" when the issue
// date is unknown. The empty period is a group of its own.
func (r Record) Period() string {
	if r.IssueDate == nil {
		return ""
	}

	return r.IssueDate.Format("2006-01")
}

func (r Record) IssuerRegime() TaxRegime {
	switch r.SimplesNacional {
	case CodeYes:
		return RegimeSimplesNacional
	case CodeNo:
		return RegimeLucroPresumido
	default:
		return RegimeUnknown
	}
}

func (r Record) PayerType() PayerType {
	switch len(digits(r.Payer.TaxID)) {
	case individualIDLength:
		return PayerIndividual
	case organizationIDLength:
		return PayerOrganization
	default:
		return PayerUnknown
	}
}

func (r Record) ISSWithheldFlag() WithheldFlag {
	switch r.ISSWithheldCode {
	case CodeYes:
		return WithheldYes
	case CodeNo:
		return WithheldNo
	default:
		return WithheldUnknown
	}
}

func digits(s string) string {
	out := make([]byte, 0, len(s))

	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}

	return string(out)
}
