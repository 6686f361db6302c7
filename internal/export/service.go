// Package export renders audit results as CSV or XLSX reports. It is the
// only place where amounts get the pt-BR presentation.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/MrJamesThe3rd/nfseaudit/internal/audit"
)

var (
	ErrUnknownFormat = errors.New("unknown export format")
	ErrUnknownSheet  = errors.New("unknown export sheet")
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv" or "xlsx" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType returns the MIME type of a file in format f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}

	return "text/csv; charset=utf-8"
}

type Sheet string

const (
	SheetRecords Sheet = "records"
	SheetIssues  Sheet = "issues"
	SheetSummary Sheet = "summary"
)

// Sheets lists every sheet in the order a full export writes them.
var Sheets = []Sheet{SheetRecords, SheetIssues, SheetSummary}

func ParseSheet(s string) (Sheet, error) {
	switch sh := Sheet(strings.ToLower(strings.TrimSpace(s))); sh {
	case SheetRecords, SheetIssues, SheetSummary:
		return sh, nil
	case "":
		return SheetRecords, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSheet, s)
	}
}

// FileName is the default name for sheet exported as f.
func FileName(sheet Sheet, f Format) string {
	return fmt.Sprintf("nfse_%s.%s", sheet, f)
}

const amountFormat = "#,##0.00"

var sheetTitles = map[Sheet]string{
	SheetRecords: "Notas",
	SheetIssues:  "Sequência",
	SheetSummary: "Resumo",
}

// Service writes reports.
type Service struct {
	printer *message.Printer
}

// NewService creates a Service formatting amounts for Brazilian Portuguese.
func NewService() *Service {
	return &Service{
		printer: message.NewPrinter(language.BrazilianPortuguese),
	}
}

// Amount formats d as "1.234,56".
func (s *Service) Amount(d decimal.Decimal) string {
	return s.printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}

// Write renders one sheet of res to w.
func (s *Service) Write(w io.Writer, f Format, sheet Sheet, res *audit.Result) error {
	t, err := tableFor(sheet, res)
	if err != nil {
		return err
	}

	switch f {
	case FormatCSV:
		return s.writeCSV(w, t)
	case FormatXLSX:
		file := xlsx.NewFile()

		if err := addSheet(file, sheetTitles[sheet], t); err != nil {
			return err
		}

		if err := file.Write(w); err != nil {
			return fmt.Errorf("writing xlsx: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Export writes every sheet of res into outputDir. CSV produces one file per
// sheet, XLSX a single workbook. It returns the paths written.
func (s *Service) Export(res *audit.Result, f Format, outputDir string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	switch f {
	case FormatCSV:
		paths := make([]string, 0, len(Sheets))

		for _, sheet := range Sheets {
			path := filepath.Join(outputDir, FileName(sheet, f))

			if err := s.writeFile(path, f, sheet, res); err != nil {
				return nil, err
			}

			paths = append(paths, path)
		}

		return paths, nil
	case FormatXLSX:
		file := xlsx.NewFile()

		for _, sheet := range Sheets {
			t, err := tableFor(sheet, res)
			if err != nil {
				return nil, err
			}

			if err := addSheet(file, sheetTitles[sheet], t); err != nil {
				return nil, err
			}
		}

		path := filepath.Join(outputDir, "nfse_auditoria.xlsx")
		if err := file.Save(path); err != nil {
			return nil, fmt.Errorf("saving workbook: %w", err)
		}

		return []string{path}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

func (s *Service) writeFile(path string, f Format, sheet Sheet, res *audit.Result) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer out.Close()

	if err := s.Write(out, f, sheet, res); err != nil {
		return fmt.Errorf("writing %s: %w", sheet, err)
	}

	return nil
}

func (s *Service) writeCSV(w io.Writer, t table) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(t.header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, row := range t.rows {
		fields := make([]string, len(row))

		for i, c := range row {
			if c.amount != nil {
				fields[i] = s.Amount(*c.amount)
			} else {
				fields[i] = c.text
			}
		}

		if err := cw.Write(fields); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}

func addSheet(file *xlsx.File, name string, t table) error {
	sheet, err := file.AddSheet(name)
	if err != nil {
		return fmt.Errorf("adding sheet %s: %w", name, err)
	}

	header := sheet.AddRow()
	for _, h := range t.header {
		header.AddCell().SetString(h)
	}

	for _, row := range t.rows {
		r := sheet.AddRow()

		for _, c := range row {
			if c.amount != nil {
				r.AddCell().SetFloatWithFormat(c.amount.InexactFloat64(), amountFormat)
			} else {
				r.AddCell().SetString(c.text)
			}
		}
	}

	return nil
}
