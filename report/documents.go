package report

import (
	"bytes"
	"html/template"
	"time"

	"github.com/vivenda-crm/vivenda-crm/internal/crm/estimates"
	"github.com/vivenda-crm/vivenda-crm/internal/crm/invoices"
)

type documentLine struct {
	Description string
	Quantity    float64
	UnitPrice   string
	VATPercent  string
	Amount      string
}

type documentData struct {
	Kind        string
	Number      string
	Date        string
	ClientName  string
	ConceptText string
	Lines       []documentLine
	ShowVAT     bool
	TaxLabel    string
	Base        string
	Tax         string
	Discount    string
	Withholding string
	HasRetained bool
	Total       string
}

var documentTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>{{.Kind}} {{.Number}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 2.5cm; color: #1a1a1a; }
h1 { font-size: 20px; margin-bottom: 0; }
.meta { color: #555; margin-bottom: 2em; }
table { width: 100%; border-collapse: collapse; margin-bottom: 2em; }
th, td { text-align: left; padding: 6px 8px; border-bottom: 1px solid #ddd; }
th { background: #f4f4f4; }
td.num, th.num { text-align: right; }
.totals td { border: none; padding: 3px 8px; }
.totals .grand { font-weight: bold; border-top: 2px solid #1a1a1a; }
</style>
</head>
<body>
<h1>{{.Kind}} {{.Number}}</h1>
<p class="meta">Fecha: {{.Date}}{{if .ClientName}} &middot; Cliente: {{.ClientName}}{{end}}</p>
{{if .ConceptText}}<p>{{.ConceptText}}</p>{{end}}
<table>
<thead>
<tr><th>Concepto</th><th class="num">Cantidad</th><th class="num">Precio</th>{{if .ShowVAT}}<th class="num">IVA</th>{{end}}<th class="num">Importe</th></tr>
</thead>
<tbody>
{{range .Lines}}
<tr><td>{{.Description}}</td><td class="num">{{.Quantity}}</td><td class="num">{{.UnitPrice}}</td>{{if $.ShowVAT}}<td class="num">{{.VATPercent}}</td>{{end}}<td class="num">{{.Amount}}</td></tr>
{{end}}
</tbody>
</table>
<table class="totals" style="width: 40%; margin-left: auto;">
<tr><td>Base imponible</td><td class="num">{{.Base}}</td></tr>
<tr><td>{{.TaxLabel}}</td><td class="num">{{.Tax}}</td></tr>
<tr><td>Descuento</td><td class="num">-{{.Discount}}</td></tr>
{{if .HasRetained}}<tr><td>Retenci&oacute;n</td><td class="num">-{{.Withholding}}</td></tr>{{end}}
<tr class="grand"><td>Total</td><td class="num">{{.Total}}</td></tr>
</table>
</body>
</html>`))

// InvoiceHTML renders an invoice into a printable HTML document.
func InvoiceHTML(inv *invoices.Invoice, clientName string) (string, error) {
	lines := make([]documentLine, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		lines = append(lines, documentLine{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   FormatEuro(l.UnitPrice),
			VATPercent:  FormatPercent(l.VATPercent),
			Amount:      FormatEuro(l.Quantity * l.UnitPrice),
		})
	}
	return renderDocument(documentData{
		Kind:        "Factura",
		Number:      inv.Number,
		Date:        inv.IssueDate.Format("02/01/2006"),
		ClientName:  clientName,
		ConceptText: inv.ConceptText,
		Lines:       lines,
		ShowVAT:     true,
		TaxLabel:    "IVA",
		Base:        FormatEuro(inv.BaseAmount),
		Tax:         FormatEuro(inv.TaxAmount),
		Discount:    FormatEuro(inv.DiscountAmount),
		Withholding: FormatEuro(inv.WithholdingAmount),
		HasRetained: inv.WithholdingAmount > 0,
		Total:       FormatEuro(inv.Total),
	})
}

// EstimateHTML renders an estimate into a printable HTML document.
func EstimateHTML(est *estimates.Estimate, clientName string) (string, error) {
	lines := make([]documentLine, 0, len(est.Lines))
	for _, l := range est.Lines {
		lines = append(lines, documentLine{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   FormatEuro(l.UnitPrice),
			Amount:      FormatEuro(l.Quantity * l.UnitPrice),
		})
	}
	date := est.Date
	if date.IsZero() {
		date = time.Now()
	}
	return renderDocument(documentData{
		Kind:        "Presupuesto",
		Number:      est.Number,
		Date:        date.Format("02/01/2006"),
		ClientName:  clientName,
		ConceptText: est.ConceptText,
		Lines:       lines,
		ShowVAT:     false,
		TaxLabel:    "IVA (" + FormatPercent(est.TaxPercent) + ")",
		Base:        FormatEuro(est.BaseAmount),
		Tax:         FormatEuro(est.TaxAmount),
		Discount:    FormatEuro(est.DiscountAmount),
		Total:       FormatEuro(est.Total),
	})
}

func renderDocument(data documentData) (string, error) {
	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
