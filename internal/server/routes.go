package server

import (
	"net/http"
	"time"

	"github.com/bobmcallan/vire-valuation/internal/common"
)

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/diagnostics", s.handleDiagnostics)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Valuation
	mux.HandleFunc("/api/valuation/", s.routeValuation)
	mux.HandleFunc("/api/dcf", s.handleDCF)
	mux.HandleFunc("/api/sensitivity", s.handleSensitivity)
	mux.HandleFunc("/api/ratios", s.handleRatios)

	// Reports
	mux.HandleFunc("/api/reports/", s.handleReportGet)
	mux.HandleFunc("/api/reports", s.handleReportList)
}

// routeValuation dispatches /api/valuation/{ticker} and /api/valuation/{ticker}/report.
func (s *Server) routeValuation(w http.ResponseWriter, r *http.Request) {
	ticker := PathParam(r, "/api/valuation/", "")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	rest := r.URL.Path[len("/api/valuation/"+ticker):]
	switch rest {
	case "", "/":
		s.handleValuation(w, r, ticker)
	case "/report":
		s.handleValuationReport(w, r, ticker)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.GetVersionInfo())
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	cfg := s.app.Config

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment":      cfg.Environment,
		"logging_level":    cfg.Logging.Level,
		"eodhd_base_url":   cfg.Clients.EODHD.BaseURL,
		"eodhd_api_key":    maskSecret(cfg.Clients.EODHD.APIKey),
		"default_exchange": cfg.Clients.EODHD.DefaultExchange,
		"valuation":        cfg.Valuation,
		"reports_enabled":  s.app.ReportStore != nil,
		"reports_path":     cfg.Reports.Path,
	})
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	correlationID := r.URL.Query().Get("correlation_id")
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := parseInt(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}

	uptime := time.Since(s.app.StartupTime).Round(time.Second)

	resp := map[string]interface{}{
		"version":    common.GetVersion(),
		"build":      common.GetBuild(),
		"commit":     common.GetGitCommit(),
		"uptime":     uptime.String(),
		"started_at": s.app.StartupTime,
	}

	if correlationID != "" {
		logs, err := s.app.Logger.GetMemoryLogsForCorrelation(correlationID)
		if err == nil {
			resp["correlation_logs"] = logs
		}
	}

	logs, err := s.app.Logger.GetMemoryLogsWithLimit(limit)
	if err == nil {
		resp["recent_logs"] = logs
	}

	WriteJSON(w, http.StatusOK, resp)
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}
