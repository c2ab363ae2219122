package web

import (
	"fmt"
	"net/http"
	"time"
)

// outstandingDebts handles GET /api/reports/debts.
func (h *Handler) outstandingDebts(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.OutstandingDebts(r.Context(), currentActor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"clients": res.Debts})
}

// debtReportPDF handles GET /api/reports/debts.pdf.
func (h *Handler) debtReportPDF(w http.ResponseWriter, r *http.Request) {
	pdf, err := h.svc.DebtReportPDF(r.Context(), currentActor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writePDF(w, fmt.Sprintf("debts-%s.pdf", time.Now().Format("2006-01-02")), pdf)
}
