package sequence_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handler "github.com/MrJamesThe3rd/nfseaudit/internal/http/sequence"
	"github.com/MrJamesThe3rd/nfseaudit/internal/sequence"
)

type response struct {
	Issues []struct {
		Type            sequence.IssueType `json:"type"`
		Number          int                `json:"number"`
		RelatedRecordID string             `json:"related_record_id"`
	} `json:"issues"`
	Warning string `json:"warning"`
}

func TestHandler_Analyze(t *testing.T) {
	type testCase struct {
		name        string
		body        string
		gapLimit    int
		maxBodySize int64
		wantStatus  int
		wantTypes   []sequence.IssueType
		wantNumbers []int
		wantWarning bool
	}

	tests := []testCase{
		{
			name: "gap with cancelled number",
			body: `{"rows": [
				{"id": "a", "documentNumber": 1, "issuerTaxId": "11222333000181", "issuerLegalName": "X", "period": "2024-03", "isCancelled": false},
				{"id": "b", "documentNumber": "2", "issuerTaxId": "11222333000181", "issuerLegalName": "X", "period": "2024-03", "isCancelled": true},
				{"id": "c", "documentNumber": 3, "issuerTaxId": "11222333000181", "issuerLegalName": "X", "period": "2024-03", "isCancelled": "Não"}
			]}`,
			wantStatus:  http.StatusOK,
			wantTypes:   []sequence.IssueType{sequence.IssueMissingCancelled},
			wantNumbers: []int{2},
		},
		{
			name: "missing columns",
			body: `{"rows": [
				{"documentNumber": 1, "issuerTaxId": "11222333000181", "period": "2024-03"}
			]}`,
			wantStatus:  http.StatusOK,
			wantWarning: true,
		},
		{
			name: "missing columns in a later row",
			body: `{"rows": [
				{"id": "a", "documentNumber": 1, "issuerTaxId": "11222333000181", "issuerLegalName": "X", "period": "2024-03", "isCancelled": false},
				{"documentNumber": 3}
			]}`,
			wantStatus:  http.StatusOK,
			wantWarning: true,
		},
		{
			name: "wide gap is summarised",
			body: `{"rows": [
				{"id": "a", "documentNumber": 1, "issuerTaxId": "11222333000181", "issuerLegalName": "X", "period": "2024-03", "isCancelled": false},
				{"id": "b", "documentNumber": 5000001, "issuerTaxId": "11222333000181", "issuerLegalName": "X", "period": "2024-03", "isCancelled": false}
			]}`,
			gapLimit:   2,
			wantStatus: http.StatusOK,
			wantTypes: []sequence.IssueType{
				sequence.IssueMissingNeverIssued,
				sequence.IssueMissingNeverIssued,
				sequence.IssueGapTruncated,
			},
			wantNumbers: []int{2, 3, 4},
			wantWarning: true,
		},
		{
			name:        "body over the size limit",
			body:        `{"rows": [{"id": "` + strings.Repeat("a", 256) + `"}]}`,
			maxBodySize: 64,
			wantStatus:  http.StatusRequestEntityTooLarge,
		},
		{
			name:       "no rows",
			body:       `{"rows": []}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid json",
			body:       `{"rows": [`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Route("/sequence", handler.NewHandler(tt.gapLimit, tt.maxBodySize).Routes)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/sequence/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			r.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp response
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

			require.Len(t, resp.Issues, len(tt.wantTypes))

			for i, is := range resp.Issues {
				assert.Equal(t, tt.wantTypes[i], is.Type)
				assert.Equal(t, tt.wantNumbers[i], is.Number)
			}

			assert.Equal(t, tt.wantWarning, resp.Warning != "")
		})
	}
}
