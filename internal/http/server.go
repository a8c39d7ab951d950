// Package http exposes the bookkeeping operations over a small JSON API.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"keuangan/internal/services"
)

type Server struct {
	http.Server
	ledger *services.Ledger
}

// NewServer configures routes and returns a ready-to-run http.Server.
func NewServer(addr string, ledger *services.Ledger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		ledger: ledger,
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/tuition", s.withRequestLog(s.handleTuition))
	mux.HandleFunc("/salary", s.withRequestLog(s.handleSalary))
	mux.HandleFunc("/reregistration", s.withRequestLog(s.handleReRegistration))
	mux.HandleFunc("/expense", s.withRequestLog(s.handleExpense))
	mux.HandleFunc("/expense/attach", s.withRequestLog(s.handleAttachProof))
	mux.HandleFunc("/receipt", s.withRequestLog(s.handleReceipt))
	mux.HandleFunc("/export", s.withRequestLog(s.handleExport))

	return s
}

// withRequestLog logs every request with its status and duration.
func (s *Server) withRequestLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(r.Context(), "Request completed",
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
