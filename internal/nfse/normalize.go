package nfse

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	time.DateOnly,
	"02/01/2006",
}

// Normalize converts an extracted record into its typed form. A cancelled
// record comes out zeroed with the payer cleared no matter what the
// extractor left behind.
func Normalize(raw RawRecord) Record {
	if raw.Cancelled {
		raw.MarkCancelled()
	}

	return Record{
		ID:                text(raw.ID),
		Number:            text(raw.Number),
		VerificationCode:  text(raw.VerificationCode),
		IssueDate:         parseDate(raw.IssueDate),
		OperationNature:   text(raw.OperationNature),
		SpecialRegime:     text(raw.SpecialRegime),
		SimplesNacional:   text(raw.SimplesNacional),
		CulturalIncentive: text(raw.CulturalIncentive),
		Cancelled:         raw.Cancelled,

		ServiceDescription:      text(raw.ServiceDescription),
		ServiceListItem:         text(raw.ServiceListItem),
		MunicipalTaxCode:        text(raw.MunicipalTaxCode),
		ServiceMunicipalityCode: text(raw.ServiceMunicipalityCode),

		ServiceValue:          ParseAmount(raw.ServiceValue),
		Deductions:            ParseAmount(raw.Deductions),
		PIS:                   ParseAmount(raw.PIS),
		COFINS:                ParseAmount(raw.COFINS),
		INSS:                  ParseAmount(raw.INSS),
		IR:                    ParseAmount(raw.IR),
		CSLL:                  ParseAmount(raw.CSLL),
		ISSValue:              ParseAmount(raw.ISSValue),
		ISSWithheld:           ParseAmount(raw.ISSWithheld),
		OtherWithholdings:     ParseAmount(raw.OtherWithholdings),
		CalculationBase:       ParseAmount(raw.CalculationBase),
		ISSRate:               ParseAmount(raw.ISSRate),
		NetValue:              ParseAmount(raw.NetValue),
		UnconditionalDiscount: ParseAmount(raw.UnconditionalDiscount),
		ConditionalDiscount:   ParseAmount(raw.ConditionalDiscount),
		ISSWithheldCode:       text(raw.ISSWithheldCode),

		Issuer: party(raw.Issuer),
		Payer:  party(raw.Payer),

		AgencyMunicipalityCode: text(raw.AgencyMunicipalityCode),
		AgencyState:            text(raw.AgencyState),
	}
}

func NormalizeAll(raws []RawRecord) []Record {
	records := make([]Record, 0, len(raws))

	for _, raw := range raws {
		records = append(records, Normalize(raw))
	}

	return records
}

// ParseAmount parses "1234.56" or the Brazilian "1.234,56". Missing or
// unparseable values are zero.
func ParseAmount(s *string) decimal.Decimal {
	if s == nil {
		return decimal.Zero
	}

	clean := strings.TrimSpace(*s)
	if clean == "" {
		return decimal.Zero
	}

	if strings.Contains(clean, ",") {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero
	}

	return d
}

// parseDate keeps the wall clock of the document and drops its offset.
func parseDate(s *string) *time.Time {
	if s == nil {
		return nil
	}

	clean := strings.TrimSpace(*s)

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, clean)
		if err != nil {
			continue
		}

		wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)

		return &wall
	}

	return nil
}

func text(s *string) string {
	if s == nil {
		return ""
	}

	return strings.TrimSpace(*s)
}

func party(p RawParty) Party {
	return Party{
		TaxID:                 text(p.TaxID),
		MunicipalRegistration: text(p.MunicipalRegistration),
		LegalName:             text(p.LegalName),
		Address: Address{
			Street:           text(p.Address.Street),
			Number:           text(p.Address.Number),
			Complement:       text(p.Address.Complement),
			District:         text(p.Address.District),
			MunicipalityCode: text(p.Address.MunicipalityCode),
			State:            text(p.Address.State),
			PostalCode:       text(p.Address.PostalCode),
		},
		Phone: text(p.Phone),
		Email: text(p.Email),
	}
}
