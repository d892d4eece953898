package http

import (
	"net/http"

	"abonos/internal/core"
	"abonos/internal/export"
	"abonos/internal/ledger"
)

type summaryRowResponse struct {
	ID             int64  `json:"id"`
	Client         string `json:"client"`
	Description    string `json:"description"`
	AgreedValue    string `json:"agreed_value"`
	TotalPaid      string `json:"total_paid"`
	PendingBalance string `json:"pending_balance"`
	Stage          string `json:"stage"`
	Notes          string `json:"notes"`
	Status         string `json:"status"`
}

type summaryResponse struct {
	Rows   []summaryRowResponse `json:"rows"`
	Totals struct {
		AgreedValue    string `json:"agreed_value"`
		TotalPaid      string `json:"total_paid"`
		PendingBalance string `json:"pending_balance"`
	} `json:"totals"`
}

func summaryToResponse(s core.Summary) summaryResponse {
	var resp summaryResponse
	resp.Rows = make([]summaryRowResponse, 0, len(s.Rows))
	for _, row := range s.Rows {
		resp.Rows = append(resp.Rows, summaryRowResponse{
			ID:             row.ID,
			Client:         row.Client,
			Description:    row.Description,
			AgreedValue:    core.FormatAmount(row.AgreedValue),
			TotalPaid:      core.FormatAmount(row.TotalPaid),
			PendingBalance: core.FormatAmount(row.PendingBalance),
			Stage:          row.Stage,
			Notes:          row.Notes,
			Status:         row.Status(),
		})
	}
	resp.Totals.AgreedValue = core.FormatAmount(s.Totals.AgreedValue)
	resp.Totals.TotalPaid = core.FormatAmount(s.Totals.TotalPaid)
	resp.Totals.PendingBalance = core.FormatAmount(s.Totals.PendingBalance)
	return resp
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request, svc ledger.Service) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	summary, err := svc.Summarize(r.Context(), parseFilter(r.URL.Query()))
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryToResponse(summary))
}

func (s *Server) handleSummaryExport(w http.ResponseWriter, r *http.Request, svc ledger.Service) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	summary, err := svc.Summarize(r.Context(), parseFilter(r.URL.Query()))
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	data, err := export.SummaryCSV(summary)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="summary.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handlePaymentsExport(w http.ResponseWriter, r *http.Request, svc ledger.Service) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	caseID, err := parseCaseID(r.URL.Query())
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	payments, err := svc.ListPayments(r.Context(), caseID)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	data, err := export.PaymentsCSV(payments)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="payments.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
