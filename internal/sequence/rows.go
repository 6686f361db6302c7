package sequence

import (
	"fmt"
	"strconv"
	"strings"
)

// Column names of the tabular form accepted by AnalyzeRows.
const (
	ColNumber          = "documentNumber"
	ColIssuerTaxID     = "issuerTaxId"
	ColIssuerLegalName = "issuerLegalName"
	ColPeriod          = "period"
	ColCancelled       = "isCancelled"
	ColID              = "id"
)

var requiredColumns = []string{ColNumber, ColIssuerTaxID, ColPeriod, ColCancelled, ColIssuerLegalName, ColID}

// AnalyzeRows runs AnalyzeLimit over rows keyed by column name. Every row
// must carry every column; otherwise the result is empty and the error wraps
// ErrMissingColumns with the first offending row and the names it lacks.
func AnalyzeRows(rows []map[string]string, gapLimit int) ([]Issue, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	for i, row := range rows {
		var missing []string

		for _, col := range requiredColumns {
			if _, ok := row[col]; !ok {
				missing = append(missing, col)
			}
		}

		if len(missing) > 0 {
			return []Issue{}, fmt.Errorf("%w: row %d: %s", ErrMissingColumns, i, strings.Join(missing, ", "))
		}
	}

	entries := make([]Entry, 0, len(rows))

	for _, row := range rows {
		entries = append(entries, Entry{
			ID:              row[ColID],
			Number:          row[ColNumber],
			IssuerTaxID:     row[ColIssuerTaxID],
			IssuerLegalName: row[ColIssuerLegalName],
			Period:          row[ColPeriod],
			Cancelled:       parseCancelled(row[ColCancelled]),
		})
	}

	return AnalyzeLimit(entries, gapLimit), nil
}

// parseCancelled accepts Go booleans and the "Sim"/"Não" of spreadsheets.
func parseCancelled(s string) bool {
	s = strings.TrimSpace(s)

	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}

	switch strings.ToLower(s) {
	case "sim", "s", "yes", "y":
		return true
	}

	return false
}
