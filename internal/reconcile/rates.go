package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrUnknownTable = errors.New("unknown rate table")

// TableName identifies a rate table. Tables are chosen per run.
type TableName string

const (
	TableStandard TableName = "standard"
	TableHospital TableName = "hospital"
)

// RateTable holds the withholding rates used to predict declared amounts and
// the presumed-profit rates used to estimate what is still due per period.
// Rates are fractions (0.015 for 1.5%).
type RateTable struct {
	Name TableName

	IR     decimal.Decimal
	CSLL   decimal.Decimal
	PIS    decimal.Decimal
	COFINS decimal.Decimal
	// ISSReference applies when the document carries no ISS rate.
	ISSReference decimal.Decimal
	// ISSOnServiceValue computes ISS on the service value instead of the
	// calculation base.
	ISSOnServiceValue bool

	IRThreshold       decimal.Decimal
	CombinedThreshold decimal.Decimal

	Estimate Estimate
}

// Estimate holds the rates applied to a period's revenue to approximate the
// taxes due before withholding.
type Estimate struct {
	IRPJ   decimal.Decimal
	CSLL   decimal.Decimal
	PIS    decimal.Decimal
	COFINS decimal.Decimal
	ISS    decimal.Decimal
	// ISSOnRevenue applies ISS to the service value total instead of the
	// calculation base total.
	ISSOnRevenue bool
}

var (
	defaultIRThreshold       = decimal.RequireFromString("666.67")
	defaultCombinedThreshold = decimal.RequireFromString("215.05")
)

// Standard is the Lucro Presumido table for ordinary services.
func Standard() RateTable {
	return RateTable{
		Name:              TableStandard,
		IR:                decimal.RequireFromString("0.015"),
		CSLL:              decimal.RequireFromString("0.01"),
		PIS:               decimal.RequireFromString("0.0065"),
		COFINS:            decimal.RequireFromString("0.03"),
		ISSReference:      decimal.RequireFromString("0.03"),
		IRThreshold:       defaultIRThreshold,
		CombinedThreshold: defaultCombinedThreshold,
		Estimate: Estimate{
			IRPJ:   decimal.RequireFromString("0.048"),
			CSLL:   decimal.RequireFromString("0.0288"),
			PIS:    decimal.RequireFromString("0.0065"),
			COFINS: decimal.RequireFromString("0.03"),
			ISS:    decimal.RequireFromString("0.03"),
		},
	}
}

// HospitalEquivalence is the table for issuers with "equiparação
// hospitalar", taxed on gross revenue.
func HospitalEquivalence() RateTable {
	return RateTable{
		Name:              TableHospital,
		IR:                decimal.RequireFromString("0.012"),
		CSLL:              decimal.RequireFromString("0.0108"),
		PIS:               decimal.RequireFromString("0.0065"),
		COFINS:            decimal.RequireFromString("0.03"),
		ISSReference:      decimal.RequireFromString("0.0201"),
		ISSOnServiceValue: true,
		IRThreshold:       defaultIRThreshold,
		CombinedThreshold: defaultCombinedThreshold,
		Estimate: Estimate{
			IRPJ:         decimal.RequireFromString("0.012"),
			CSLL:         decimal.RequireFromString("0.0108"),
			PIS:          decimal.RequireFromString("0.0065"),
			COFINS:       decimal.RequireFromString("0.03"),
			ISS:          decimal.RequireFromString("0.0201"),
			ISSOnRevenue: true,
		},
	}
}

// TableByName resolves a table by name. The empty name is Standard.
func TableByName(name string) (RateTable, error) {
	switch TableName(strings.ToLower(strings.TrimSpace(name))) {
	case "", TableStandard:
		return Standard(), nil
	case TableHospital:
		return HospitalEquivalence(), nil
	default:
		return RateTable{}, fmt.Errorf("%q: %w", name, ErrUnknownTable)
	}
}
