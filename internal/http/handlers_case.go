package http

import (
	"net/http"

	"abonos/internal/core"
	"abonos/internal/ledger"
)

type caseResponse struct {
	ID          int64  `json:"id"`
	Client      string `json:"client"`
	Description string `json:"description"`
	AgreedValue string `json:"agreed_value"`
	Stage       string `json:"stage"`
	Notes       string `json:"notes"`
	CreatedAt   string `json:"created_at"`
	CreatedBy   string `json:"created_by,omitempty"`
}

func caseToResponse(c core.Case) caseResponse {
	return caseResponse{
		ID:          c.ID,
		Client:      c.Client,
		Description: c.Description,
		AgreedValue: core.FormatAmount(c.AgreedValue),
		Stage:       c.Stage,
		Notes:       c.Notes,
		CreatedAt:   c.CreatedAt.String(),
		CreatedBy:   c.CreatedBy,
	}
}

func (s *Server) handleCases(w http.ResponseWriter, r *http.Request, svc ledger.Service) {
	switch r.Method {
	case http.MethodGet:
		s.listCases(w, r, svc)
	case http.MethodPost:
		s.createCase(w, r, svc)
	case http.MethodPut:
		s.editCase(w, r, svc)
	case http.MethodDelete:
		s.deleteCase(w, r, svc)
	default:
		w.Header().Set("Allow", "GET, POST, PUT, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listCases(w http.ResponseWriter, r *http.Request, svc ledger.Service) {
	cases, err := svc.ListCases(r.Context(), parseFilter(r.URL.Query()))
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	out := make([]caseResponse, 0, len(cases))
	for _, c := range cases {
		out = append(out, caseToResponse(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"cases": out})
}

func (s *Server) createCase(w http.ResponseWriter, r *http.Request, svc ledger.Service) {
	var p casePayload
	if err := decodeBody(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, err := caseInputFromPayload(p)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	id, err := svc.AddCase(r.Context(), in)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) editCase(w http.ResponseWriter, r *http.Request, svc ledger.Service) {
	var p casePayload
	if err := decodeBody(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if p.ID <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "missing case id")
		return
	}

	in, err := caseInputFromPayload(p)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	n, err := svc.EditCase(r.Context(), p.ID, in)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	if n == 0 {
		writeError(w, http.StatusNotFound, "case not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"updated": n})
}

func (s *Server) deleteCase(w http.ResponseWriter, r *http.Request, svc ledger.Service) {
	id, err := parseID(r)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	// Delete cascades to the case's payments; a missing id is a no-op.
	if err := svc.DeleteCase(r.Context(), id); err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": id})
}
