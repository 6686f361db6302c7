package sequence_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/nfseaudit/internal/nfse"
	"github.com/MrJamesThe3rd/nfseaudit/internal/sequence"
)

const issuer = "11222333000181"

func entry(id, number string, cancelled bool) sequence.Entry {
	return sequence.Entry{
		ID:              id,
		Number:          number,
		IssuerTaxID:     issuer,
		IssuerLegalName: "Clinica Exemplo",
		Period:          "2024-03",
		Cancelled:       cancelled,
	}
}

func countByType(issues []sequence.Issue) map[sequence.IssueType]int {
	counts := make(map[sequence.IssueType]int)
	for _, i := range issues {
		counts[i.Type]++
	}

	return counts
}

func TestAnalyze(t *testing.T) {
	type testCase struct {
		name    string
		entries []sequence.Entry
		verify  func(t *testing.T, issues []sequence.Issue)
	}

	tests := []testCase{
		{
			name: "duplicate and gap",
			entries: []sequence.Entry{
				entry("a", "1", false),
				entry("b", "2", false),
				entry("c", "2", false),
				entry("d", "5", false),
			},
			verify: func(t *testing.T, issues []sequence.Issue) {
				require.Len(t, issues, 3)
				assert.Equal(t, map[sequence.IssueType]int{
					sequence.IssueDuplicate:          1,
					sequence.IssueMissingNeverIssued: 2,
				}, countByType(issues))

				assert.Equal(t, sequence.IssueDuplicate, issues[0].Type)
				assert.Equal(t, 2, issues[0].Number)
				assert.Equal(t, "c", issues[0].RelatedRecordID)

				assert.Equal(t, 3, issues[1].Number)
				assert.Equal(t, 4, issues[2].Number)
				assert.Empty(t, issues[2].RelatedRecordID)
			},
		},
		{
			name: "gap covered by cancelled invoice",
			entries: []sequence.Entry{
				entry("a", "1", false),
				entry("b", "3", false),
				entry("x", "2", true),
			},
			verify: func(t *testing.T, issues []sequence.Issue) {
				require.Len(t, issues, 1)
				assert.Equal(t, sequence.IssueMissingCancelled, issues[0].Type)
				assert.Equal(t, 2, issues[0].Number)
				assert.Equal(t, "x", issues[0].RelatedRecordID)
			},
		},
		{
			name: "cancelled invoice in another period does not cover gap",
			entries: func() []sequence.Entry {
				other := entry("x", "2", true)
				other.Period = "2024-04"

				return []sequence.Entry{entry("a", "1", false), entry("b", "3", false), other}
			}(),
			verify: func(t *testing.T, issues []sequence.Issue) {
				require.Len(t, issues, 1)
				assert.Equal(t, sequence.IssueMissingNeverIssued, issues[0].Type)
			},
		},
		{
			name: "non numeric numbers are ignored",
			entries: []sequence.Entry{
				entry("a", "CANCELADA", false),
				entry("b", "", false),
				entry("c", "0", false),
				entry("d", "7", false),
			},
			verify: func(t *testing.T, issues []sequence.Issue) {
				assert.Empty(t, issues)
			},
		},
		{
			name: "empty period is its own group",
			entries: func() []sequence.Entry {
				undated := entry("b", "3", false)
				undated.Period = ""

				return []sequence.Entry{entry("a", "1", false), undated}
			}(),
			verify: func(t *testing.T, issues []sequence.Issue) {
				assert.Empty(t, issues)
			},
		},
		{
			name: "groups by issuer",
			entries: func() []sequence.Entry {
				other := entry("b", "3", false)
				other.IssuerTaxID = "99888777000166"

				return []sequence.Entry{entry("a", "1", false), other}
			}(),
			verify: func(t *testing.T, issues []sequence.Issue) {
				assert.Empty(t, issues)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.verify(t, sequence.Analyze(tt.entries))
		})
	}
}

func TestAnalyze_SortedOutput(t *testing.T) {
	second := entry("z1", "1", false)
	second.IssuerTaxID = "00000000000191"
	second.Period = "2024-05"

	issues := sequence.Analyze([]sequence.Entry{
		entry("a", "1", false),
		entry("b", "3", false),
		second,
		{ID: "z2", Number: "3", IssuerTaxID: "00000000000191", Period: "2024-05"},
	})

	require.Len(t, issues, 2)
	assert.Equal(t, "00000000000191", issues[0].IssuerTaxID)
	assert.Equal(t, issuer, issues[1].IssuerTaxID)
}

func TestAnalyzeLimit(t *testing.T) {
	type testCase struct {
		name     string
		entries  []sequence.Entry
		gapLimit int
		verify   func(t *testing.T, issues []sequence.Issue)
	}

	tests := []testCase{
		{
			name:     "wide gap is folded past the limit",
			entries:  []sequence.Entry{entry("a", "1", false), entry("b", "5000001", false)},
			gapLimit: 10,
			verify: func(t *testing.T, issues []sequence.Issue) {
				require.Len(t, issues, 11)
				assert.Equal(t, map[sequence.IssueType]int{
					sequence.IssueMissingNeverIssued: 10,
					sequence.IssueGapTruncated:       1,
				}, countByType(issues))

				last := issues[10]
				assert.Equal(t, sequence.IssueGapTruncated, last.Type)
				assert.Equal(t, 12, last.Number)
				assert.Contains(t, last.Detail, "4999989 more invoices between 12 and 5000000")
				assert.True(t, sequence.Truncated(issues))
			},
		},
		{
			name: "cancelled numbers past the limit are still listed",
			entries: []sequence.Entry{
				entry("a", "1", false),
				entry("b", "100", false),
				entry("x", "50", true),
			},
			gapLimit: 5,
			verify: func(t *testing.T, issues []sequence.Issue) {
				require.Len(t, issues, 7)
				assert.Equal(t, map[sequence.IssueType]int{
					sequence.IssueMissingNeverIssued: 5,
					sequence.IssueMissingCancelled:   1,
					sequence.IssueGapTruncated:       1,
				}, countByType(issues))

				assert.Equal(t, sequence.IssueGapTruncated, issues[5].Type)
				assert.Contains(t, issues[5].Detail, "92 more invoices")
				assert.Equal(t, 50, issues[6].Number)
				assert.Equal(t, "x", issues[6].RelatedRecordID)
			},
		},
		{
			name: "limit is shared by the gaps of a group",
			entries: []sequence.Entry{
				entry("a", "1", false),
				entry("b", "4", false),
				entry("c", "8", false),
			},
			gapLimit: 3,
			verify: func(t *testing.T, issues []sequence.Issue) {
				require.Len(t, issues, 4)
				assert.Equal(t, []int{2, 3, 5, 6}, []int{issues[0].Number, issues[1].Number, issues[2].Number, issues[3].Number})
				assert.Equal(t, sequence.IssueGapTruncated, issues[3].Type)
			},
		},
		{
			name:     "gap within the limit is listed in full",
			entries:  []sequence.Entry{entry("a", "1", false), entry("b", "5", false)},
			gapLimit: 3,
			verify: func(t *testing.T, issues []sequence.Issue) {
				require.Len(t, issues, 3)
				assert.False(t, sequence.Truncated(issues))
			},
		},
		{
			name:     "non positive limit uses the default",
			entries:  []sequence.Entry{entry("a", "1", false), entry("b", "5000001", false)},
			gapLimit: 0,
			verify: func(t *testing.T, issues []sequence.Issue) {
				require.Len(t, issues, sequence.DefaultGapLimit+1)
				assert.True(t, sequence.Truncated(issues))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.verify(t, sequence.AnalyzeLimit(tt.entries, tt.gapLimit))
		})
	}
}

func TestEntriesFromRecords(t *testing.T) {
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	entries := sequence.EntriesFromRecords([]nfse.Record{
		{ID: "a", Number: "10", IssueDate: &date, Issuer: nfse.Party{TaxID: issuer, LegalName: "Clinica"}},
		{ID: "b", Number: "11", Cancelled: true},
	})

	require.Len(t, entries, 2)
	assert.Equal(t, sequence.Entry{ID: "a", Number: "10", IssuerTaxID: issuer, IssuerLegalName: "Clinica", Period: "2024-03"}, entries[0])
	assert.True(t, entries[1].Cancelled)
	assert.Empty(t, entries[1].Period)
}

func TestAnalyzeRows(t *testing.T) {
	row := func(id, number, cancelled string) map[string]string {
		return map[string]string{
			sequence.ColID:              id,
			sequence.ColNumber:          number,
			sequence.ColIssuerTaxID:     issuer,
			sequence.ColIssuerLegalName: "Clinica",
			sequence.ColPeriod:          "2024-03",
			sequence.ColCancelled:       cancelled,
		}
	}

	t.Run("analyzes rows", func(t *testing.T) {
		issues, err := sequence.AnalyzeRows([]map[string]string{
			row("a", "1", "Não"),
			row("b", "3", "false"),
			row("c", "2", "Sim"),
		}, 0)

		require.NoError(t, err)
		require.Len(t, issues, 1)
		assert.Equal(t, sequence.IssueMissingCancelled, issues[0].Type)
	})

	t.Run("missing columns", func(t *testing.T) {
		bad := row("a", "1", "false")
		delete(bad, sequence.ColPeriod)

		issues, err := sequence.AnalyzeRows([]map[string]string{bad}, 0)

		require.ErrorIs(t, err, sequence.ErrMissingColumns)
		assert.Contains(t, err.Error(), sequence.ColPeriod)
		assert.Empty(t, issues)
	})

	t.Run("missing columns after the first row", func(t *testing.T) {
		issues, err := sequence.AnalyzeRows([]map[string]string{
			row("a", "1", "false"),
			{sequence.ColNumber: "3"},
		}, 0)

		require.ErrorIs(t, err, sequence.ErrMissingColumns)
		assert.Contains(t, err.Error(), "row 1")
		assert.Contains(t, err.Error(), sequence.ColIssuerTaxID)
		assert.NotNil(t, issues)
		assert.Empty(t, issues)
	})

	t.Run("no rows", func(t *testing.T) {
		issues, err := sequence.AnalyzeRows(nil, 0)

		require.NoError(t, err)
		assert.Empty(t, issues)
	})
}
