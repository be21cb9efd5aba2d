package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/agencyops/fakturo/internal/config"
	invoicedomain "github.com/agencyops/fakturo/internal/invoice/domain"
)

const invoiceHTMLTemplate = `<!doctype html>
<html lang="cs">
<head>
  <meta charset="utf-8" />
  <title>Faktura {{.Invoice.ID}}</title>
  <style>
    * { box-sizing: border-box; }
    body {
      margin: 0;
      padding: 32px;
      font-family: "Helvetica Neue", Arial, sans-serif;
      color: #111827;
      background: #ffffff;
    }
    .invoice { max-width: 820px; margin: 0 auto; }
    .header {
      display: flex;
      justify-content: space-between;
      border-bottom: 2px solid #111827;
      padding-bottom: 16px;
      margin-bottom: 24px;
    }
    .meta { text-align: right; font-size: 14px; }
    .label {
      color: #6b7280;
      text-transform: uppercase;
      letter-spacing: 0.04em;
      font-size: 11px;
    }
    table { width: 100%; border-collapse: collapse; font-size: 14px; }
    th, td { padding: 10px; border-bottom: 1px solid #e5e7eb; text-align: left; }
    th { text-transform: uppercase; font-size: 11px; color: #6b7280; }
    .totals { margin-top: 12px; display: flex; justify-content: flex-end; font-size: 16px; }
    .totals strong { margin-left: 12px; }
  </style>
</head>
<body>
  <div class="invoice">
    <div class="header">
      <div>
        <div><strong>{{.Invoice.ClientName}}</strong></div>
        <div class="label">{{.PeriodLabel}}</div>
      </div>
      <div class="meta">
        <div class="label">Faktura</div>
        <div><strong>{{.Invoice.ID}}</strong></div>
        <div>Stav: {{.Invoice.Status}}</div>
      </div>
    </div>

    <table>
      <thead>
        <tr>
          <th>Položka</th>
          <th>Množství</th>
          <th>Cena</th>
          <th>Úprava</th>
          <th>Částka</th>
        </tr>
      </thead>
      <tbody>
        {{range .Invoice.Items}}
        <tr>
          <td>{{.Description}}</td>
          <td>{{formatQuantity .Quantity}}</td>
          <td>{{formatMoney .UnitPrice $.Invoice.Currency}}</td>
          <td>{{formatMoney .AdjustmentAmount $.Invoice.Currency}}</td>
          <td>{{formatMoney .FinalAmount $.Invoice.Currency}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>
    <div class="totals">
      <span>Celkem</span>
      <strong>{{formatMoney .Invoice.TotalAmount .Invoice.Currency}}</strong>
    </div>
  </div>
</body>
</html>
`

type HTMLRenderer struct {
	tpl             *template.Template
	defaultCurrency string
}

func NewRenderer(cfg config.Config) Renderer {
	r := &HTMLRenderer{defaultCurrency: cfg.DefaultCurrency}
	funcs := template.FuncMap{
		"formatMoney":    r.formatMoney,
		"formatQuantity": formatQuantity,
	}
	r.tpl = template.Must(template.New("invoice").Funcs(funcs).Parse(invoiceHTMLTemplate))
	return r
}

func (r *HTMLRenderer) RenderHTML(invoice invoicedomain.Invoice) (string, error) {
	input := struct {
		Invoice     invoicedomain.Invoice
		PeriodLabel string
	}{
		Invoice:     invoice,
		PeriodLabel: invoicedomain.MonthLabel(invoice.Year, invoice.Month),
	}

	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, input); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *HTMLRenderer) formatMoney(amount int64, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = strings.ToUpper(r.defaultCurrency)
	}
	return fmt.Sprintf("%d %s", amount, currency)
}

func formatQuantity(quantity float64) string {
	if quantity == float64(int64(quantity)) {
		return fmt.Sprintf("%d", int64(quantity))
	}
	return fmt.Sprintf("%.2f", quantity)
}
