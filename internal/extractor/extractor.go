// Package extractor detects which NFSe layout a document uses and turns it
// into a raw canonical record.
package extractor

import (
	"errors"
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/nfseaudit/internal/extractor/ginfes"
	"github.com/MrJamesThe3rd/nfseaudit/internal/extractor/giss"
	"github.com/MrJamesThe3rd/nfseaudit/internal/nfse"
	"github.com/MrJamesThe3rd/nfseaudit/internal/xmltree"
)

// ErrUnknownLayout is returned alongside the default record when a document
// matches no known layout, or matches one but lacks its invoice container.
var ErrUnknownLayout = errors.New("unknown nfse layout")

type Dialect string

const (
	DialectGISS    Dialect = "giss"
	DialectGINFES  Dialect = "ginfes"
	DialectUnknown Dialect = "unknown"
)

// Extractor maps one layout's tree onto the canonical record. ok is false
// when the tree lacks the layout's required container.
type Extractor interface {
	Extract(root *xmltree.Node) (rec nfse.RawRecord, ok bool)
}

// Profile pairs a layout with its detection rule and extractor.
// Adding a layout is adding a Profile to the profiles slice.
type Profile struct {
	Dialect   Dialect
	Match     func(root *xmltree.Node) bool
	Extractor Extractor
}

// profiles is tried in order. GISS checks an exact qualified root name and
// must come before the looser GINFES ListaNfse search.
var profiles = []Profile{
	{Dialect: DialectGISS, Match: giss.Matches, Extractor: giss.New()},
	{Dialect: DialectGINFES, Match: ginfes.Matches, Extractor: ginfes.New()},
}

func detect(root *xmltree.Node) (Profile, bool) {
	for _, p := range profiles {
		if p.Match(root) {
			return p, true
		}
	}

	return Profile{}, false
}

// Detect returns the layout of a parsed document.
func Detect(root *xmltree.Node) Dialect {
	p, ok := detect(root)
	if !ok {
		return DialectUnknown
	}

	return p.Dialect
}

// ExtractTree extracts a record from an already parsed document. It always
// returns a usable record; the error only explains why it is the default.
func ExtractTree(root *xmltree.Node) (nfse.RawRecord, Dialect, error) {
	p, ok := detect(root)
	if !ok {
		return nfse.NewRawRecord(), DialectUnknown, ErrUnknownLayout
	}

	rec, ok := p.Extractor.Extract(root)
	if !ok {
		return rec, p.Dialect, fmt.Errorf("%s document without invoice: %w", p.Dialect, ErrUnknownLayout)
	}

	return rec, p.Dialect, nil
}

type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Result is the outcome of extracting one file.
type Result struct {
	Name    string
	Dialect Dialect
	Record  nfse.RawRecord
	// Warning is set when the record is the default one. It never aborts
	// a batch.
	Warning error
}

// OK reports whether the file produced a real record.
func (r Result) OK() bool {
	return r.Warning == nil
}

// Extract parses and extracts one document. Parse failures and unknown
// layouts are reported in Result.Warning with the file name attached.
func (s *Service) Extract(name string, r io.Reader) Result {
	res := Result{Name: name, Dialect: DialectUnknown, Record: nfse.NewRawRecord()}

	root, err := xmltree.Parse(r)
	if err != nil {
		res.Warning = fmt.Errorf("parse %s: %w", name, err)
		return res
	}

	rec, dialect, err := ExtractTree(root)
	res.Record = rec
	res.Dialect = dialect

	if err != nil {
		res.Warning = fmt.Errorf("extract %s: %w", name, err)
	}

	return res
}
