package document_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/nfseaudit/internal/audit"
	"github.com/MrJamesThe3rd/nfseaudit/internal/document"
	handler "github.com/MrJamesThe3rd/nfseaudit/internal/http/document"
	"github.com/MrJamesThe3rd/nfseaudit/internal/reconcile"
)

const nota = `<?xml version="1.0" encoding="UTF-8"?>
<ConsultarNfseResposta><ListaNfse><CompNfse><Nfse><InfNfse Id="id-7">
  <Numero>7</Numero>
  <DataEmissao>2024-05-02T09:00:00</DataEmissao>
  <OptanteSimplesNacional>1</OptanteSimplesNacional>
  <Servico><Valores><ValorServicos>500.00</ValorServicos></Valores></Servico>
  <PrestadorServico>
    <IdentificacaoPrestador><Cnpj>11222333000181</Cnpj></IdentificacaoPrestador>
    <RazaoSocial>Clinica Exemplo</RazaoSocial>
  </PrestadorServico>
</InfNfse></Nfse></CompNfse></ListaNfse></ConsultarNfseResposta>`

func newRouter(repo document.Repository) http.Handler {
	h := handler.NewHandler(document.NewService(repo), audit.NewService(1), reconcile.TableByName, 10<<20)

	r := chi.NewRouter()
	r.Route("/documents", h.Routes)

	return r
}

func TestHandler_Upload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := document.NewMockRepository(ctrl)
	repo.EXPECT().
		CreateDocument(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, doc *document.Document) error {
			doc.UploadedAt = time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
			return nil
		})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("client", "Clinica Exemplo"))

	part, err := mw.CreateFormFile("file", "7.xml")
	require.NoError(t, err)

	_, err = part.Write([]byte(nota))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	newRouter(repo).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		ID       uuid.UUID `json:"id"`
		Client   string    `json:"client"`
		FileName string    `json:"file_name"`
		Size     int       `json:"size"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.NotEqual(t, uuid.Nil, resp.ID)
	assert.Equal(t, "Clinica Exemplo", resp.Client)
	assert.Equal(t, "7.xml", resp.FileName)
	assert.Equal(t, len(nota), resp.Size)
}

func TestHandler_Get(t *testing.T) {
	id := uuid.New()
	stored := &document.Document{ID: id, Client: "Clinica", FileName: "7.xml", Content: []byte(nota)}

	type testCase struct {
		name       string
		path       string
		setupMock  func(m *document.MockRepository)
		wantStatus int
		wantBody   string
	}

	tests := []testCase{
		{
			name: "metadata",
			path: "/documents/" + id.String(),
			setupMock: func(m *document.MockRepository) {
				m.EXPECT().GetDocument(gomock.Any(), id).Return(stored, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `"file_name":"7.xml"`,
		},
		{
			name: "raw xml",
			path: "/documents/" + id.String() + "/xml",
			setupMock: func(m *document.MockRepository) {
				m.EXPECT().GetDocument(gomock.Any(), id).Return(stored, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   "<Numero>7</Numero>",
		},
		{
			name: "not found",
			path: "/documents/" + id.String(),
			setupMock: func(m *document.MockRepository) {
				m.EXPECT().GetDocument(gomock.Any(), id).Return(nil, document.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "invalid id",
			path:       "/documents/not-a-uuid",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := document.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			rec := httptest.NewRecorder()
			newRouter(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := document.NewMockRepository(ctrl)
	repo.EXPECT().
		ListDocuments(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter document.ListFilter) ([]*document.Document, error) {
			require.NotNil(t, filter.ClientLike)
			assert.Equal(t, "clinica", *filter.ClientLike)

			return []*document.Document{{ID: uuid.New(), Client: "Clinica Exemplo", FileName: "7.xml"}}, nil
		})

	rec := httptest.NewRecorder()
	newRouter(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents/?q=clinica", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp, 1)
}

func TestHandler_Audit(t *testing.T) {
	type testCase struct {
		name       string
		body       string
		setupMock  func(m *document.MockRepository)
		wantStatus int
	}

	tests := []testCase{
		{
			name: "stored documents",
			body: `{"client": "Clinica Exemplo", "rate_table": "standard"}`,
			setupMock: func(m *document.MockRepository) {
				m.EXPECT().
					ListDocuments(gomock.Any(), gomock.Any()).
					Return([]*document.Document{{ID: uuid.New(), Client: "Clinica Exemplo", FileName: "7.xml", Content: []byte(nota)}}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "client without documents",
			body: `{"client": "Ninguem"}`,
			setupMock: func(m *document.MockRepository) {
				m.EXPECT().ListDocuments(gomock.Any(), gomock.Any()).Return(nil, nil)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "client required",
			body:       `{"client": " "}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown table",
			body:       `{"client": "Clinica", "rate_table": "mining"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := document.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/documents/audit", strings.NewReader(tt.body))
			newRouter(repo).ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantStatus == http.StatusOK {
				assert.Contains(t, rec.Body.String(), `"overall":"OK"`)
			}
		})
	}
}
