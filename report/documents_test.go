package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivenda-crm/vivenda-crm/internal/crm/estimates"
	"github.com/vivenda-crm/vivenda-crm/internal/crm/invoices"
)

func TestFormatEuro(t *testing.T) {
	assert.Equal(t, "1.234,50 €", FormatEuro(1234.5))
	assert.Equal(t, "0,00 €", FormatEuro(0))
}

func TestInvoiceHTMLContainsDocumentData(t *testing.T) {
	inv := &invoices.Invoice{
		Number:            "RHB-2024-0007",
		Status:            invoices.StatusIssued,
		ConceptText:       "Gestion de venta",
		IssueDate:         time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		BaseAmount:        1000,
		TaxAmount:         210,
		DiscountAmount:    0,
		WithholdingAmount: 150,
		Total:             1060,
		Lines: []invoices.Line{
			{Description: "Honorarios", Quantity: 1, UnitPrice: 1000, VATPercent: 21, LineOrder: 1},
		},
	}

	html, err := InvoiceHTML(inv, "Construcciones Oliva SL")
	require.NoError(t, err)

	assert.Contains(t, html, "Factura RHB-2024-0007")
	assert.Contains(t, html, "05/03/2024")
	assert.Contains(t, html, "Construcciones Oliva SL")
	assert.Contains(t, html, "Honorarios")
	assert.Contains(t, html, "Retenci&oacute;n")
	assert.Contains(t, html, FormatEuro(1060))
}

func TestEstimateHTMLOmitsWithholding(t *testing.T) {
	est := &estimates.Estimate{
		Number:     "RHB-2024-0002",
		Status:     estimates.StatusSent,
		Date:       time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		TaxPercent: 10,
		BaseAmount: 500,
		TaxAmount:  50,
		Total:      550,
		Lines: []estimates.Line{
			{Description: "Tasacion", Quantity: 1, UnitPrice: 500, LineOrder: 1},
		},
	}

	html, err := EstimateHTML(est, "")
	require.NoError(t, err)

	assert.Contains(t, html, "Presupuesto RHB-2024-0002")
	assert.False(t, strings.Contains(html, "Retenci"))
}
