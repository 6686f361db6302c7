package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/nfseaudit/internal/audit"
	"github.com/MrJamesThe3rd/nfseaudit/internal/document"
	audithttp "github.com/MrJamesThe3rd/nfseaudit/internal/http/audit"
)

type Handler struct {
	svc           *document.Service
	auditSvc      *audit.Service
	tables        audithttp.TableResolver
	maxUploadSize int64
}

func NewHandler(svc *document.Service, auditSvc *audit.Service, tables audithttp.TableResolver, maxUploadSize int64) *Handler {
	return &Handler{
		svc:           svc,
		auditSvc:      auditSvc,
		tables:        tables,
		maxUploadSize: maxUploadSize,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.upload)
	r.Get("/", h.list)
	r.Post("/audit", h.audit)
	r.Get("/{id}", h.get)
	r.Get("/{id}/xml", h.xml)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusBadRequest)
		return
	}

	doc, err := h.svc.Save(r.Context(), document.SaveParams{
		Client:   r.FormValue("client"),
		FileName: header.Filename,
		Content:  content,
	})
	if err != nil {
		if errors.Is(err, document.ErrClientRequired) || errors.Is(err, document.ErrEmptyContent) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(doc)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var (
		docs []*document.Document
		err  error
	)

	if client := r.URL.Query().Get("client"); client != "" {
		docs, err = h.svc.ForClient(r.Context(), client)
	} else {
		docs, err = h.svc.Search(r.Context(), r.URL.Query().Get("q"))
	}

	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(docs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.find(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(doc)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) xml(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.find(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))

	if _, err := w.Write(doc.Content); err != nil {
		slog.Error("failed to write document", "error", err)
	}
}

func (h *Handler) find(w http.ResponseWriter, r *http.Request) (*document.Document, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return nil, false
	}

	doc, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			http.Error(w, "document not found", http.StatusNotFound)
			return nil, false
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return nil, false
	}

	return doc, true
}

type auditRequest struct {
	Client    string `json:"client"`
	RateTable string `json:"rate_table"`
}

func (h *Handler) audit(w http.ResponseWriter, r *http.Request) {
	var req auditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	table, err := h.tables(req.RateTable)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	docs, err := h.svc.ForClient(r.Context(), req.Client)
	if err != nil {
		if errors.Is(err, document.ErrClientRequired) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	inputs := make([]audit.Document, 0, len(docs))
	for _, doc := range docs {
		inputs = append(inputs, audit.Document{Name: doc.FileName, Content: doc.Content})
	}

	status := http.StatusOK

	res, err := h.auditSvc.Run(r.Context(), inputs, table)
	if err != nil {
		if !errors.Is(err, audit.ErrNothingToProcess) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		if res == nil {
			http.Error(w, fmt.Sprintf("no documents stored for %q", req.Client), http.StatusNotFound)
			return
		}

		status = http.StatusUnprocessableEntity
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(audithttp.NewResponse(res)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
