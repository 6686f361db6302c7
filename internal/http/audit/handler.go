package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/nfseaudit/internal/audit"
	"github.com/MrJamesThe3rd/nfseaudit/internal/export"
	"github.com/MrJamesThe3rd/nfseaudit/internal/reconcile"
)

// TableResolver returns the rate table for a name given by the client. The
// empty name selects the configured default.
type TableResolver func(name string) (reconcile.RateTable, error)

type Handler struct {
	svc           *audit.Service
	exporter      *export.Service
	tables        TableResolver
	maxUploadSize int64
}

func NewHandler(svc *audit.Service, exporter *export.Service, tables TableResolver, maxUploadSize int64) *Handler {
	return &Handler{
		svc:           svc,
		exporter:      exporter,
		tables:        tables,
		maxUploadSize: maxUploadSize,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.run)
	r.Post("/export", h.export)
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request) {
	res, status, err := h.process(r)
	if err != nil && res == nil {
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(NewResponse(res)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sheet, err := export.ParseSheet(r.URL.Query().Get("sheet"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, status, err := h.process(r)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.FileName(sheet, format)))

	if err := h.exporter.Write(w, format, sheet, res); err != nil {
		slog.Error("failed to write export", "error", err)
	}
}

// process parses the multipart upload and runs the audit. A batch with no
// recognised document returns the partial result together with the error.
func (h *Handler) process(r *http.Request) (*audit.Result, int, error) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("failed to parse form: %w", err)
	}

	table, err := h.tables(r.FormValue("rate_table"))
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	docs, err := readDocuments(r.MultipartForm)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	res, err := h.svc.Run(r.Context(), docs, table)
	if err != nil {
		if errors.Is(err, audit.ErrNothingToProcess) {
			return res, http.StatusUnprocessableEntity, err
		}

		return nil, http.StatusInternalServerError, err
	}

	return res, http.StatusOK, nil
}

func readDocuments(form *multipart.Form) ([]audit.Document, error) {
	headers := form.File["files[]"]
	if len(headers) == 0 {
		headers = form.File["files"]
	}

	if len(headers) == 0 {
		return nil, errors.New("files field is required")
	}

	docs := make([]audit.Document, 0, len(headers))

	for _, fh := range headers {
		content, err := readPart(fh)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", fh.Filename, err)
		}

		docs = append(docs, audit.Document{Name: fh.Filename, Content: content})
	}

	return docs, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}
