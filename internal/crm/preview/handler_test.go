package preview

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doPreview(t *testing.T, payload map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/crm/calc/preview", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	NewHandler().handlePreview(rec, req)
	return rec
}

func TestPreviewInvoiceTotals(t *testing.T) {
	rec := doPreview(t, map[string]interface{}{
		"doc_type":            "invoice",
		"discount_percent":    10,
		"withholding_percent": 15,
		"lines": []map[string]interface{}{
			{"description": "Honorarios", "quantity": 1, "unit_price": 1000, "vat_percent": 21, "line_order": 1},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1000.0, resp.Base)
	assert.Equal(t, 210.0, resp.Tax)
	assert.Equal(t, 100.0, resp.Discount)
	assert.Equal(t, 150.0, resp.Withholding)
	assert.Equal(t, 960.0, resp.Total)
}

func TestPreviewEstimateUsesDocumentRate(t *testing.T) {
	rec := doPreview(t, map[string]interface{}{
		"doc_type":    "estimate",
		"tax_percent": 10,
		"lines": []map[string]interface{}{
			{"description": "Tasacion", "quantity": 2, "unit_price": 50, "line_order": 1},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 100.0, resp.Base)
	assert.Equal(t, 10.0, resp.Tax)
	assert.Equal(t, 110.0, resp.Total)
	assert.Equal(t, 0.0, resp.Withholding)
}

func TestPreviewRejectsBadLines(t *testing.T) {
	rec := doPreview(t, map[string]interface{}{
		"doc_type": "invoice",
		"lines": []map[string]interface{}{
			{"description": "", "quantity": 1, "unit_price": 10, "vat_percent": 21, "line_order": 1},
		},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreviewRejectsUnknownDocType(t *testing.T) {
	rec := doPreview(t, map[string]interface{}{
		"doc_type": "receipt",
		"lines": []map[string]interface{}{
			{"description": "x", "quantity": 1, "unit_price": 10, "line_order": 1},
		},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
