package sequence

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/nfseaudit/internal/sequence"
)

const defaultMaxBodySize = 32 << 20

type Handler struct {
	gapLimit    int
	maxBodySize int64
}

// NewHandler returns a Handler listing up to gapLimit never-issued invoices
// per issuer and period and refusing bodies over maxBodySize bytes. Non-positive
// values use the defaults.
func NewHandler(gapLimit int, maxBodySize int64) *Handler {
	if gapLimit <= 0 {
		gapLimit = sequence.DefaultGapLimit
	}

	if maxBodySize <= 0 {
		maxBodySize = defaultMaxBodySize
	}

	return &Handler{
		gapLimit:    gapLimit,
		maxBodySize: maxBodySize,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.analyze)
}

type analyzeRequest struct {
	Rows []map[string]any `json:"rows"`
}

type issueResponse struct {
	Type            sequence.IssueType `json:"type"`
	IssuerTaxID     string             `json:"issuer_tax_id"`
	IssuerLegalName string             `json:"issuer_legal_name"`
	Period          string             `json:"period"`
	Number          int                `json:"number"`
	Detail          string             `json:"detail"`
	RelatedRecordID string             `json:"related_record_id,omitempty"`
}

type analyzeResponse struct {
	Issues  []issueResponse `json:"issues"`
	Warning string          `json:"warning,omitempty"`
}

func (h *Handler) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodySize))
	dec.UseNumber()

	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}

		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	rows := make([]map[string]string, 0, len(req.Rows))
	for _, row := range req.Rows {
		rows = append(rows, stringify(row))
	}

	resp := analyzeResponse{Issues: []issueResponse{}}

	issues, err := sequence.AnalyzeRows(rows, h.gapLimit)
	if err != nil {
		if !errors.Is(err, sequence.ErrMissingColumns) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		resp.Warning = err.Error()
	}

	if sequence.Truncated(issues) {
		resp.Warning = fmt.Sprintf("more than %d never-issued invoices in a period; the rest of each gap is summarised", h.gapLimit)
	}

	for _, is := range issues {
		resp.Issues = append(resp.Issues, issueResponse{
			Type:            is.Type,
			IssuerTaxID:     is.IssuerTaxID,
			IssuerLegalName: is.IssuerLegalName,
			Period:          is.Period,
			Number:          is.Number,
			Detail:          is.Detail,
			RelatedRecordID: is.RelatedRecordID,
		})
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// stringify keeps the column set of row. JSON null becomes "".
func stringify(row map[string]any) map[string]string {
	out := make(map[string]string, len(row))

	for k, v := range row {
		switch v := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = v
		default:
			out[k] = fmt.Sprint(v)
		}
	}

	return out
}
