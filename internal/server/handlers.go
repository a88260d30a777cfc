package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/bobmcallan/vire-valuation/internal/app"
	"github.com/bobmcallan/vire-valuation/internal/clients/eodhd"
	"github.com/bobmcallan/vire-valuation/internal/interfaces"
	"github.com/bobmcallan/vire-valuation/internal/models"
	"github.com/bobmcallan/vire-valuation/internal/services/analysis"
	"github.com/bobmcallan/vire-valuation/internal/services/ratios"
	"github.com/bobmcallan/vire-valuation/internal/services/report"
	"github.com/bobmcallan/vire-valuation/internal/services/valuation"
	"github.com/bobmcallan/vire-valuation/internal/storage"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// dcfRequest is the body of POST /api/dcf and POST /api/sensitivity.
// Rates may be fractions or whole-number percentages.
type dcfRequest struct {
	FCF            *float64  `json:"fcf"`
	Shares         *float64  `json:"shares"`
	NetDebt        *float64  `json:"net_debt"`
	WACC           *float64  `json:"wacc"`
	Growth         *float64  `json:"g"`
	TerminalGrowth *float64  `json:"tg"`
	Years          int       `json:"years"`
	WACCs          []float64 `json:"waccs,omitempty"`
	Growths        []float64 `json:"growths,omitempty"`
}

// ratiosRequest is the body of POST /api/ratios.
type ratiosRequest struct {
	Income   *models.StatementTable `json:"income"`
	Balance  *models.StatementTable `json:"balance"`
	CashFlow *models.StatementTable `json:"cashflow"`
}

// handleValuation handles GET /api/valuation/{ticker}.
func (s *Server) handleValuation(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	options, err := analysisOptions(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := s.app.AnalysisService.Analyze(r.Context(), ticker, options)
	if err != nil {
		s.writeAnalysisError(w, ticker, err)
		return
	}

	WriteJSON(w, http.StatusOK, a)
}

// handleValuationReport handles GET /api/valuation/{ticker}/report and
// returns the workbook as an attachment.
func (s *Server) handleValuationReport(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	options, err := analysisOptions(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := s.app.AnalysisService.Analyze(r.Context(), ticker, options)
	if err != nil {
		s.writeAnalysisError(w, ticker, err)
		return
	}

	data, err := s.app.AnalysisService.Report(r.Context(), a)
	if err != nil {
		s.logger.Error().Err(err).Str("ticker", a.Ticker).Msg("Workbook build failed")
		WriteError(w, http.StatusInternalServerError, "Failed to build report")
		return
	}

	writeAttachment(w, report.ReportName(a.Ticker, a.GeneratedAt), data)
}

// handleDCF handles POST /api/dcf.
func (s *Server) handleDCF(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req dcfRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	v, err := valuation.Value(s.dcfInput(req))
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, v)
}

const maxSensitivityAxis = 50

// handleSensitivity handles POST /api/sensitivity. Axes default to a grid
// centered on the request's WACC and growth.
func (s *Server) handleSensitivity(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req dcfRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	in := s.dcfInput(req)
	if in.Years < 1 || in.Years > valuation.MaxYears {
		WriteError(w, http.StatusUnprocessableEntity, valuation.ErrInvalidYears.Error())
		return
	}
	if len(req.WACCs) > maxSensitivityAxis || len(req.Growths) > maxSensitivityAxis {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("sensitivity axes are limited to %d values", maxSensitivityAxis))
		return
	}
	waccs, growths := req.WACCs, req.Growths
	if len(waccs) == 0 || len(growths) == 0 {
		wacc := valuation.NormalizeRate(in.WACC)
		g := valuation.NormalizeRate(in.Growth)
		defWACCs, defGrowths := analysis.DefaultSensitivityAxes(wacc.Value, g.Value)
		if len(waccs) == 0 {
			waccs = defWACCs
		}
		if len(growths) == 0 {
			growths = defGrowths
		}
	}

	WriteJSON(w, http.StatusOK, valuation.Sensitivity(in.FCF, in.Shares, in.NetDebt, waccs, growths, in.TerminalGrowth, in.Years))
}

// handleRatios handles POST /api/ratios on caller-supplied statement tables.
func (s *Server) handleRatios(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req ratiosRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	m, err := ratios.Resolve(req.Income, req.Balance, req.CashFlow)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, m)
}

// handleReportList handles GET /api/reports.
func (s *Server) handleReportList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if s.app.ReportStore == nil {
		WriteError(w, http.StatusNotFound, "Report saving is disabled")
		return
	}

	names, err := s.app.ReportStore.List(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Error listing reports: "+err.Error())
		return
	}
	if names == nil {
		names = []string{}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"reports": names})
}

// handleReportGet handles GET /api/reports/{name}.
func (s *Server) handleReportGet(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if s.app.ReportStore == nil {
		WriteError(w, http.StatusNotFound, "Report saving is disabled")
		return
	}

	name := PathParam(r, "/api/reports/", "")
	if name == "" {
		WriteError(w, http.StatusBadRequest, "report name is required")
		return
	}

	data, err := s.app.ReportStore.Load(r.Context(), name)
	if errors.Is(err, storage.ErrReportNotFound) {
		WriteError(w, http.StatusNotFound, "Report not found: "+name)
		return
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeAttachment(w, name, data)
}

// dcfInput merges a request with the configured defaults.
func (s *Server) dcfInput(req dcfRequest) valuation.Input {
	defaults := s.app.Config.Valuation
	in := valuation.Input{
		FCF:            models.NumFromPtr(req.FCF),
		Shares:         models.NumFromPtr(req.Shares),
		NetDebt:        models.NumFromPtr(req.NetDebt),
		WACC:           models.NumFromPtr(req.WACC),
		Growth:         models.NumFromPtr(req.Growth),
		TerminalGrowth: models.NumFromPtr(req.TerminalGrowth),
		Years:          req.Years,
	}
	if !in.WACC.Valid {
		in.WACC = models.Some(defaults.WACC)
	}
	if !in.Growth.Valid {
		in.Growth = models.Some(defaults.Growth)
	}
	if !in.TerminalGrowth.Valid {
		in.TerminalGrowth = models.Some(defaults.TerminalGrowth)
	}
	if in.Years == 0 {
		in.Years = defaults.Years
	}
	return in
}

// writeAnalysisError maps analysis failures to HTTP status codes.
func (s *Server) writeAnalysisError(w http.ResponseWriter, ticker string, err error) {
	status := analysisStatus(err)
	if status >= 500 {
		s.logger.Error().Err(err).Str("ticker", ticker).Msg("Analysis failed")
	}
	WriteError(w, status, fmt.Sprintf("Error for %s: %v", strings.ToUpper(ticker), err))
}

func analysisStatus(err error) int {
	var apiErr *eodhd.APIError
	switch {
	case errors.Is(err, analysis.ErrTickerRequired):
		return http.StatusBadRequest
	case errors.Is(err, ratios.ErrNoStatementData):
		return http.StatusNotFound
	case errors.Is(err, app.ErrFetcherUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound:
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

// analysisOptions reads DCF overrides from the query string.
func analysisOptions(r *http.Request) (interfaces.AnalysisOptions, error) {
	var o interfaces.AnalysisOptions
	var err error

	if o.WACC, err = queryNum(r, "wacc"); err != nil {
		return o, err
	}
	if o.Growth, err = queryNum(r, "g"); err != nil {
		return o, err
	}
	if o.TerminalGrowth, err = queryNum(r, "tg"); err != nil {
		return o, err
	}

	q := r.URL.Query()
	if raw := q.Get("years"); raw != "" {
		years, err := parseInt(raw)
		if err != nil {
			return o, fmt.Errorf("invalid years: %q", raw)
		}
		if years < 1 || years > valuation.MaxYears {
			return o, fmt.Errorf("years must be between 1 and %d, got %d", valuation.MaxYears, years)
		}
		o.Years = years
	}
	if raw := q.Get("sensitivity"); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			return o, fmt.Errorf("invalid sensitivity: %q", raw)
		}
		o.Sensitivity = &include
	}
	if raw := q.Get("save"); raw != "" {
		save, err := strconv.ParseBool(raw)
		if err != nil {
			return o, fmt.Errorf("invalid save: %q", raw)
		}
		o.SaveReport = save
	}
	return o, nil
}

func writeAttachment(w http.ResponseWriter, name string, data []byte) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
