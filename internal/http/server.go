// Package http exposes the ledger over a JSON API. It is a thin
// presentation collaborator: requests carry a resolved identity header, the
// per-tenant ledger service does the actual work.
package http

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"abonos/internal/core"
	"abonos/internal/ledger"
	"abonos/internal/middleware/trace"
)

// identityHeader carries the resolved identity of the caller. The server
// trusts it; authentication happens upstream.
const identityHeader = "X-Ledger-User"

type Server struct {
	http.Server
	tenants     ledger.Provider
	rateLimiter *rateLimiter
}

func NewServer(addr string, tenants ledger.Provider) *Server {
	s := &Server{
		tenants:     tenants,
		rateLimiter: newRateLimiter(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/cases", s.withIdentity(s.handleCases))
	mux.HandleFunc("/api/payments", s.withIdentity(s.handlePayments))
	mux.HandleFunc("/api/summary", s.withIdentity(s.handleSummary))
	mux.HandleFunc("/api/summary/export", s.withIdentity(s.handleSummaryExport))
	mux.HandleFunc("/api/payments/export", s.withIdentity(s.handlePaymentsExport))

	traced := trace.NewMiddleware(extractClientIP)
	s.Addr = addr
	s.Handler = traced.Middleware(s.rateLimiter.middleware(mux))

	return s
}

// Shutdown stops background goroutines along with the listener.
func (s *Server) Close() error {
	s.rateLimiter.stop()
	return s.Server.Close()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// withIdentity rejects requests without an identity and resolves the
// tenant's ledger before the handler runs.
func (s *Server) withIdentity(next func(http.ResponseWriter, *http.Request, ledger.Service)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := strings.TrimSpace(r.Header.Get(identityHeader))
		if identity == "" {
			writeError(w, http.StatusUnauthorized, "missing "+identityHeader+" header")
			return
		}

		svc, err := s.tenants.Service(identity)
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to open tenant ledger",
				"tenant", identity, "error", err)
			writeError(w, http.StatusServiceUnavailable, "ledger unavailable")
			return
		}

		next(w, r, svc)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeLedgerError maps the ledger error taxonomy to HTTP statuses.
// Validation problems surface verbatim; integrity and unexpected failures
// surface as a generic message, the detail stays in the logs.
func writeLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case core.IsValidation(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case core.IsConnectivity(err):
		slog.ErrorContext(r.Context(), "Store unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, "ledger unavailable")
	default:
		slog.ErrorContext(r.Context(), "Ledger operation failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "operation failed")
	}
}

func extractClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i > 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
