// Package documents renders order invoices and debt reports as PDF.
package documents

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"phonestore-crm/internal/core"
)

// Store identifies the business printed in document headers.
type Store struct {
	Name    string
	Address string
}

type renderer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newRenderer(title string) *renderer {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	return &renderer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (r *renderer) header(store Store, title, subtitle string) {
	r.pdf.SetFont("Helvetica", "B", 16)
	r.pdf.CellFormat(0, 8, r.tr(store.Name), "", 1, "L", false, 0, "")
	r.pdf.SetFont("Helvetica", "", 9)
	if store.Address != "" {
		r.pdf.CellFormat(0, 5, r.tr(store.Address), "", 1, "L", false, 0, "")
	}
	r.pdf.Ln(6)
	r.pdf.SetFont("Helvetica", "B", 13)
	r.pdf.CellFormat(0, 7, r.tr(title), "", 1, "L", false, 0, "")
	r.pdf.SetFont("Helvetica", "", 9)
	r.pdf.CellFormat(0, 5, r.tr(subtitle), "", 1, "L", false, 0, "")
	r.pdf.Ln(4)
}

func (r *renderer) row(widths []float64, cells []string, aligns string, bold, fill bool) {
	style := ""
	if bold {
		style = "B"
	}
	r.pdf.SetFont("Helvetica", style, 9)
	for i, c := range cells {
		r.pdf.CellFormat(widths[i], 7, r.tr(c), "1", 0, aligns[i:i+1], fill, 0, "")
	}
	r.pdf.Ln(-1)
}

func (r *renderer) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderInvoice produces a one-page invoice with per-currency subtotals.
func RenderInvoice(store Store, order *core.Order) ([]byte, error) {
	r := newRenderer(fmt.Sprintf("Invoice #%d", order.ID))
	buyer := order.ClientName
	if order.IsGuest() && order.GuestName != nil {
		buyer = *order.GuestName + " (guest)"
	}
	r.header(store, fmt.Sprintf("Invoice #%d", order.ID),
		fmt.Sprintf("Date: %s   Customer: %s   Status: %s", order.CreatedAt.Format("2006-01-02"), buyer, order.Status))

	widths := []float64{80, 20, 40, 45}
	r.pdf.SetFillColor(230, 230, 230)
	r.row(widths, []string{"Product", "Qty", "Unit price", "Line total"}, "LRRR", true, true)
	for _, it := range order.Items {
		cur := string(it.Currency())
		r.row(widths, []string{
			it.ProductName,
			fmt.Sprintf("%d", it.Quantity),
			FormatMoney(it.Price, cur),
			FormatMoney(it.LineTotal(), cur),
		}, "LRRR", false, false)
	}

	r.pdf.Ln(4)
	totals := order.ByCurrency()
	for _, c := range core.Currencies {
		amt, ok := totals[c]
		if !ok {
			continue
		}
		r.row([]float64{140, 45}, []string{"Total " + string(c), FormatMoney(amt, string(c))}, "RR", true, false)
	}
	return r.bytes()
}

// RenderDebtReport lists every client with outstanding debt and the grand totals.
func RenderDebtReport(store Store, debts []core.ClientDebt, generatedAt time.Time) ([]byte, error) {
	r := newRenderer("Outstanding debt")
	r.header(store, "Outstanding client debt", "Generated "+generatedAt.Format("2006-01-02 15:04"))

	widths := []float64{55, 60, 35, 35}
	r.pdf.SetFillColor(230, 230, 230)
	r.row(widths, []string{"Client", "Email", "EUR", "MKD"}, "LLRR", true, true)

	eur, mkd := decimal.Zero, decimal.Zero
	for _, d := range debts {
		r.row(widths, []string{
			d.Name,
			d.Email,
			FormatMoney(d.EURDebt, string(core.CurrencyEUR)),
			FormatMoney(d.MKDDebt, string(core.CurrencyMKD)),
		}, "LLRR", false, false)
		eur = eur.Add(d.EURDebt)
		mkd = mkd.Add(d.MKDDebt)
	}
	if len(debts) == 0 {
		r.pdf.SetFont("Helvetica", "I", 9)
		r.pdf.CellFormat(0, 7, "No outstanding debt.", "", 1, "L", false, 0, "")
	}
	r.row(widths, []string{"Total", "", FormatMoney(eur, "EUR"), FormatMoney(mkd, "MKD")}, "LLRR", true, false)
	return r.bytes()
}
