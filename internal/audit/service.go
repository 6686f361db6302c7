// Package audit runs the whole pipeline over a batch of documents:
// extraction, normalization, reconciliation, sequence analysis and period
// summaries.
package audit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/nfseaudit/internal/extractor"
	"github.com/MrJamesThe3rd/nfseaudit/internal/nfse"
	"github.com/MrJamesThe3rd/nfseaudit/internal/reconcile"
	"github.com/MrJamesThe3rd/nfseaudit/internal/sequence"
	"github.com/MrJamesThe3rd/nfseaudit/internal/summary"
)

// ErrNothingToProcess means no document in the batch had a recognised
// layout.
var ErrNothingToProcess = errors.New("no valid nfse data extracted")

// Document is one input file, already read by the caller.
type Document struct {
	Name    string
	Content []byte
}

// File reports how one document was handled.
type File struct {
	Name    string
	Dialect extractor.Dialect
	Warning error
}

type Result struct {
	Table   reconcile.RateTable
	Files   []File
	Records []reconcile.Result
	Issues  []sequence.Issue
	Periods []summary.Period
}

// Warnings returns the per-file warnings in input order.
func (r *Result) Warnings() []error {
	var warnings []error

	for _, f := range r.Files {
		if f.Warning != nil {
			warnings = append(warnings, f.Warning)
		}
	}

	return warnings
}

type Service struct {
	extractor *extractor.Service
	workers   int
	gapLimit  int
}

// NewService returns a Service extracting up to workers documents at once.
// A non-positive value uses one worker per CPU.
func NewService(workers int) *Service {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &Service{
		extractor: extractor.NewService(),
		workers:   workers,
		gapLimit:  sequence.DefaultGapLimit,
	}
}

// WithGapLimit caps the never-issued invoices listed per issuer and period.
// A non-positive value keeps sequence.DefaultGapLimit.
func (s *Service) WithGapLimit(limit int) *Service {
	if limit > 0 {
		s.gapLimit = limit
	}

	return s
}

// Run processes docs with the given rate table. Documents that fail to parse
// or match no layout still contribute a default record and a warning; only a
// batch where nothing was recognised fails, with ErrNothingToProcess.
func (s *Service) Run(ctx context.Context, docs []Document, table reconcile.RateTable) (*Result, error) {
	if len(docs) == 0 {
		return nil, ErrNothingToProcess
	}

	extracted := make([]extractor.Result, len(docs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			extracted[i] = s.extractor.Extract(doc.Name, bytes.NewReader(doc.Content))

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extract documents: %w", err)
	}

	res := &Result{Table: table, Files: make([]File, 0, len(docs))}
	raws := make([]nfse.RawRecord, 0, len(docs))
	recognised := 0

	for _, ex := range extracted {
		if ex.Warning != nil {
			slog.Warn("could not extract document", "file", ex.Name, "dialect", ex.Dialect, "error", ex.Warning)
		} else {
			recognised++
		}

		res.Files = append(res.Files, File{Name: ex.Name, Dialect: ex.Dialect, Warning: ex.Warning})
		raws = append(raws, ex.Record)
	}

	if recognised == 0 {
		return res, ErrNothingToProcess
	}

	records := nfse.NormalizeAll(raws)

	res.Records = reconcile.ReconcileAll(records, table)
	res.Issues = sequence.AnalyzeLimit(sequence.EntriesFromRecords(records), s.gapLimit)
	if sequence.Truncated(res.Issues) {
		slog.Warn("sequence gaps truncated", "gap_limit", s.gapLimit)
	}

	res.Periods = summary.Build(res.Records, table)

	slog.Info("audit finished", "files", len(docs), "recognised", recognised, "issues", len(res.Issues), "table", table.Name)

	return res, nil
}
