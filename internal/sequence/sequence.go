// Package sequence finds duplicate and missing invoice numbers per issuer
// and period.
package sequence

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/MrJamesThe3rd/nfseaudit/internal/nfse"
)

// ErrMissingColumns is a warning: the rows cannot be analyzed and the issue
// list is empty.
var ErrMissingColumns = errors.New("missing required columns")

type IssueType string

const (
	IssueDuplicate          IssueType = "DuplicateNumber"
	IssueMissingCancelled   IssueType = "MissingCancelled"
	IssueMissingNeverIssued IssueType = "MissingNeverIssued"
	// IssueGapTruncated stands for the never-issued numbers of a gap past
	// the gap limit. Number is the first one not listed.
	IssueGapTruncated       IssueType = "GapTruncated"
)

// DefaultGapLimit is the number of never-issued invoices listed one by one
// per issuer and period. Past it each gap folds the rest into a single
// IssueGapTruncated.
const DefaultGapLimit = 1000

// Entry is the part of a record the analyzer looks at.
type Entry struct {
	ID              string
	Number          string
	IssuerTaxID     string
	IssuerLegalName string
	Period          string
	Cancelled       bool
}

// Key returns the number used for ordering, or -1 when Number is not an
// integer (e.g. a cancellation marker).
func (e Entry) Key() int {
	n, err := strconv.Atoi(strings.TrimSpace(e.Number))
	if err != nil {
		return -1
	}

	return n
}

type Issue struct {
	Type            IssueType
	IssuerTaxID     string
	IssuerLegalName string
	Period          string
	Number          int
	Detail          string
	// RelatedRecordID is empty when no record backs the issue.
	RelatedRecordID string
}

func EntriesFromRecords(records []nfse.Record) []Entry {
	entries := make([]Entry, 0, len(records))

	for _, r := range records {
		entries = append(entries, Entry{
			ID:              r.ID,
			Number:          r.Number,
			IssuerTaxID:     r.Issuer.TaxID,
			IssuerLegalName: r.Issuer.LegalName,
			Period:          r.Period(),
			Cancelled:       r.Cancelled,
		})
	}

	return entries
}

// group is keyed on issuer and period. The empty period is a value like any
// other, so undated records never merge into a dated group.
type group struct {
	issuer string
	period string
}

// Analyze is AnalyzeLimit with DefaultGapLimit.
func Analyze(entries []Entry) []Issue {
	return AnalyzeLimit(entries, DefaultGapLimit)
}

// AnalyzeLimit recomputes the full issue list from entries.
//
// Active entries (positive number, not cancelled) are grouped by issuer and
// period. Every repeat of a number already seen in its group is a duplicate.
// Every integer strictly between two consecutive distinct numbers is missing;
// it counts as cancelled when a cancelled entry in the same group carries it.
//
// At most gapLimit never-issued numbers are listed per group. Cancelled ones
// are always listed; what is left of each gap becomes one IssueGapTruncated.
// A non-positive gapLimit means DefaultGapLimit.
func AnalyzeLimit(entries []Entry, gapLimit int) []Issue {
	if gapLimit <= 0 {
		gapLimit = DefaultGapLimit
	}

	active := make(map[group][]Entry)
	cancelled := make(map[group]map[int]Entry)

	var order []group

	for _, e := range entries {
		g := group{issuer: e.IssuerTaxID, period: e.Period}

		if e.Cancelled {
			if cancelled[g] == nil {
				cancelled[g] = make(map[int]Entry)
			}

			if _, seen := cancelled[g][e.Key()]; !seen {
				cancelled[g][e.Key()] = e
			}

			continue
		}

		if e.Key() <= 0 {
			continue
		}

		if _, ok := active[g]; !ok {
			order = append(order, g)
		}

		active[g] = append(active[g], e)
	}

	var issues []Issue

	for _, g := range order {
		issues = append(issues, analyzeGroup(g, active[g], cancelled[g], gapLimit)...)
	}

	slices.SortStableFunc(issues, func(a, b Issue) int {
		return cmp.Or(
			cmp.Compare(a.IssuerTaxID, b.IssuerTaxID),
			cmp.Compare(a.Period, b.Period),
			cmp.Compare(a.Number, b.Number),
			cmp.Compare(a.Type, b.Type),
		)
	})

	return issues
}

// Truncated reports whether any gap in issues was cut short by the gap limit.
func Truncated(issues []Issue) bool {
	return slices.ContainsFunc(issues, func(is Issue) bool {
		return is.Type == IssueGapTruncated
	})
}

func analyzeGroup(g group, entries []Entry, cancelled map[int]Entry, gapLimit int) []Issue {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return cmp.Compare(a.Key(), b.Key())
	})

	var (
		issues  []Issue
		numbers []int
	)

	legalName := entries[0].IssuerLegalName

	for i, e := range entries {
		if i > 0 && entries[i-1].Key() == e.Key() {
			issues = append(issues, Issue{
				Type:            IssueDuplicate,
				IssuerTaxID:     g.issuer,
				IssuerLegalName: e.IssuerLegalName,
				Period:          g.period,
				Number:          e.Key(),
				Detail:          fmt.Sprintf("invoice %d appears more than once", e.Key()),
				RelatedRecordID: e.ID,
			})

			continue
		}

		numbers = append(numbers, e.Key())
	}

	cancelledNumbers := slices.Sorted(maps.Keys(cancelled))

	missing := func(n int) Issue {
		issue := Issue{
			Type:            IssueMissingNeverIssued,
			IssuerTaxID:     g.issuer,
			IssuerLegalName: legalName,
			Period:          g.period,
			Number:          n,
			Detail:          fmt.Sprintf("invoice %d is missing and was never issued or cancelled", n),
		}

		if c, ok := cancelled[n]; ok {
			issue.Type = IssueMissingCancelled
			issue.Detail = fmt.Sprintf("invoice %d is missing from the active sequence but was issued and cancelled", n)
			issue.RelatedRecordID = c.ID
		}

		return issue
	}

	listed := 0

	for i := 1; i < len(numbers); i++ {
		lo, hi := numbers[i-1], numbers[i]

		n := lo + 1
		for ; n < hi && listed < gapLimit; n++ {
			issue := missing(n)
			if issue.Type == IssueMissingNeverIssued {
				listed++
			}

			issues = append(issues, issue)
		}

		if n >= hi {
			continue
		}

		// Past the limit only the cancelled numbers are walked.
		start, _ := slices.BinarySearch(cancelledNumbers, n)
		end, _ := slices.BinarySearch(cancelledNumbers, hi)

		for _, c := range cancelledNumbers[start:end] {
			issues = append(issues, missing(c))
		}

		omitted := hi - n - (end - start)
		if omitted == 0 {
			continue
		}

		issues = append(issues, Issue{
			Type:            IssueGapTruncated,
			IssuerTaxID:     g.issuer,
			IssuerLegalName: legalName,
			Period:          g.period,
			Number:          n,
			Detail:          fmt.Sprintf("%d more invoices between %d and %d are missing and were never issued or cancelled", omitted, n, hi-1),
		})
	}

	return issues
}
