package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceTotalsPerLineVAT(t *testing.T) {
	lines := []LineInput{
		{Description: "Gestión de alquiler", Quantity: 2, UnitPrice: 100, VATPercent: 21},
		{Description: "Certificado energético", Quantity: 1, UnitPrice: 80, VATPercent: 10},
	}

	totals, err := InvoiceTotals(lines, 0, 0)
	require.NoError(t, err)

	assert.InDelta(t, 280.0, totals.Base, 1e-9)
	assert.InDelta(t, 200*0.21+80*0.10, totals.Tax, 1e-9)
	assert.InDelta(t, totals.Base+totals.Tax, totals.Total, 1e-9)
}

func TestInvoiceTotalsDiscountAndWithholdingOnBase(t *testing.T) {
	lines := []LineInput{
		{Description: "Honorarios", Quantity: 1, UnitPrice: 1000, VATPercent: 21},
	}

	totals, err := InvoiceTotals(lines, 10, 15)
	require.NoError(t, err)

	// Discount and withholding apply to the base, never to base+tax.
	assert.InDelta(t, 1000.0, totals.Base, 1e-9)
	assert.InDelta(t, 210.0, totals.Tax, 1e-9)
	assert.InDelta(t, 100.0, totals.Discount, 1e-9)
	assert.InDelta(t, 150.0, totals.Withholding, 1e-9)
	assert.InDelta(t, 1000+210-100-150, totals.Total, 1e-9)
}

func TestEstimateTotalsDocumentLevelTax(t *testing.T) {
	lines := []LineInput{
		{Description: "Reforma cocina", Quantity: 3, UnitPrice: 250},
		{Description: "Pintura", Quantity: 1, UnitPrice: 400},
	}

	totals, err := EstimateTotals(lines, 21, 5)
	require.NoError(t, err)

	base := 3*250.0 + 400.0
	assert.InDelta(t, base, totals.Base, 1e-9)
	assert.InDelta(t, base*0.21, totals.Tax, 1e-9)
	assert.InDelta(t, base*0.05, totals.Discount, 1e-9)
	assert.Zero(t, totals.Withholding)
	assert.InDelta(t, base+base*0.21-base*0.05, totals.Total, 1e-9)
}

func TestTotalsIdempotent(t *testing.T) {
	lines := []LineInput{
		{Description: "A", Quantity: 2, UnitPrice: 10.37, VATPercent: 21},
		{Description: "B", Quantity: 7, UnitPrice: 3.99, VATPercent: 4},
	}

	first, err := InvoiceTotals(lines, 2.5, 7)
	require.NoError(t, err)
	second, err := InvoiceTotals(lines, 2.5, 7)
	require.NoError(t, err)

	// Pure function: recomputation must be bit-identical.
	assert.Equal(t, first, second)
}

func TestTotalInvariant(t *testing.T) {
	lines := []LineInput{
		{Description: "X", Quantity: 5, UnitPrice: 19.99, VATPercent: 10},
		{Description: "Y", Quantity: 2, UnitPrice: 150, VATPercent: 21},
	}

	totals, err := InvoiceTotals(lines, 3, 15)
	require.NoError(t, err)
	assert.InDelta(t, totals.Base+totals.Tax-totals.Discount-totals.Withholding, totals.Total, 1e-9)
}

func TestValidationRejectsBadLines(t *testing.T) {
	cases := []struct {
		name  string
		lines []LineInput
	}{
		{"empty description", []LineInput{{Description: "   ", Quantity: 1, UnitPrice: 10, VATPercent: 21}}},
		{"zero quantity", []LineInput{{Description: "A", Quantity: 0, UnitPrice: 10, VATPercent: 21}}},
		{"negative quantity", []LineInput{{Description: "A", Quantity: -1, UnitPrice: 10, VATPercent: 21}}},
		{"negative price", []LineInput{{Description: "A", Quantity: 1, UnitPrice: -0.01, VATPercent: 21}}},
		{"vat outside brackets", []LineInput{{Description: "A", Quantity: 1, UnitPrice: 10, VATPercent: 18}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := InvoiceTotals(tc.lines, 0, 0)
			assert.Error(t, err)
		})
	}
}

func TestValidationRejectsNegativePercentages(t *testing.T) {
	lines := []LineInput{{Description: "A", Quantity: 1, UnitPrice: 10, VATPercent: 21}}

	_, err := InvoiceTotals(lines, -1, 0)
	assert.Error(t, err)
	_, err = InvoiceTotals(lines, 0, -1)
	assert.Error(t, err)
	_, err = EstimateTotals(lines, -5, 0)
	assert.Error(t, err)
}

func TestEstimateAllowsAnyNonNegativeTaxRate(t *testing.T) {
	// Estimates use a free document-level rate, the fixed brackets only
	// bind invoice lines.
	lines := []LineInput{{Description: "A", Quantity: 1, UnitPrice: 100}}
	totals, err := EstimateTotals(lines, 7.5, 0)
	require.NoError(t, err)
	assert.InDelta(t, 7.5, totals.Tax, 1e-9)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.46, Round2(10.455))
	assert.Equal(t, 0.0, Round2(0.004))
	assert.Equal(t, 99.99, Round2(99.994))
}
