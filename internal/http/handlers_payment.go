package http

import (
	"net/http"
	"time"

	"abonos/internal/core"
	"abonos/internal/ledger"
)

type paymentResponse struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	CaseID      int64  `json:"case_id"`
	Client      string `json:"client"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
	CreatedAt   string `json:"created_at"`
	CreatedBy   string `json:"created_by,omitempty"`
}

func paymentToResponse(p core.PaymentDetail) paymentResponse {
	createdAt := ""
	if !p.CreatedAt.IsZero() {
		createdAt = p.CreatedAt.Format(time.RFC3339)
	}
	return paymentResponse{
		ID:          p.ID,
		Date:        p.Date.String(),
		Amount:      core.FormatAmount(p.Amount),
		CaseID:      p.CaseID,
		Client:      p.Client,
		Description: p.CaseDescription,
		Notes:       p.Notes,
		CreatedAt:   createdAt,
		CreatedBy:   p.CreatedBy,
	}
}

func (s *Server) handlePayments(w http.ResponseWriter, r *http.Request, svc ledger.Service) {
	switch r.Method {
	case http.MethodGet:
		s.listPayments(w, r, svc)
	case http.MethodPost:
		s.createPayment(w, r, svc)
	case http.MethodPut:
		s.editPayment(w, r, svc)
	case http.MethodDelete:
		s.deletePayment(w, r, svc)
	default:
		w.Header().Set("Allow", "GET, POST, PUT, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listPayments(w http.ResponseWriter, r *http.Request, svc ledger.Service) {
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

	out := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, paymentToResponse(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"payments": out})
}

func (s *Server) createPayment(w http.ResponseWriter, r *http.Request, svc ledger.Service) {
	var p paymentPayload
	if err := decodeBody(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, err := paymentInputFromPayload(p)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	id, err := svc.AddPayment(r.Context(), in)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) editPayment(w http.ResponseWriter, r *http.Request, svc ledger.Service) {
	var p paymentPayload
	if err := decodeBody(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if p.ID <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "missing payment id")
		return
	}

	in, err := paymentInputFromPayload(p)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	n, err := svc.EditPayment(r.Context(), p.ID, in)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	if n == 0 {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"updated": n})
}

func (s *Server) deletePayment(w http.ResponseWriter, r *http.Request, svc ledger.Service) {
	id, err := parseID(r)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	if err := svc.DeletePayment(r.Context(), id); err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": id})
}
