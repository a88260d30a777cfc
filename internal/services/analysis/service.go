// Package analysis values a single ticker end to end: statements, ratios,
// DCF, sensitivity grid and an optional saved workbook.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/vire-valuation/internal/common"
	"github.com/bobmcallan/vire-valuation/internal/interfaces"
	"github.com/bobmcallan/vire-valuation/internal/models"
	"github.com/bobmcallan/vire-valuation/internal/services/ratios"
	"github.com/bobmcallan/vire-valuation/internal/services/report"
	"github.com/bobmcallan/vire-valuation/internal/services/valuation"
)

// ErrTickerRequired is returned for a blank ticker.
var ErrTickerRequired = errors.New("ticker is required")

// Sensitivity axis bounds.
const (
	minGridWACC   = 0.01
	minGridGrowth = -0.20
)

// Service implements AnalysisService
type Service struct {
	fetcher interfaces.StatementFetcher
	writer  interfaces.ReportWriter
	store   interfaces.ReportStore
	config  common.ValuationConfig
	logger  *common.Logger
	now     func() time.Time
}

// NewService creates an analysis service. store may be nil, in which case
// reports are never saved.
func NewService(
	fetcher interfaces.StatementFetcher,
	writer interfaces.ReportWriter,
	store interfaces.ReportStore,
	config common.ValuationConfig,
	logger *common.Logger,
) *Service {
	return &Service{
		fetcher: fetcher,
		writer:  writer,
		store:   store,
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
}

// Analyze fetches statements for ticker and values it. Statement and
// ratio failures are returned as errors; a failed valuation is recorded on
// the result instead.
func (s *Service) Analyze(ctx context.Context, ticker string, options interfaces.AnalysisOptions) (*models.Analysis, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, ErrTickerRequired
	}

	started := s.now()
	s.logger.Info().Str("ticker", ticker).Msg("Analysis started")

	pkg, err := s.fetcher.FetchStatements(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch statements for %s: %w", ticker, err)
	}

	metrics, err := ratios.Resolve(pkg.Income, pkg.Balance, pkg.CashFlow)
	if err != nil {
		return nil, err
	}

	a := &models.Analysis{
		RunID:       uuid.New().String(),
		Ticker:      ticker,
		Name:        pkg.Info.Name,
		Currency:    pkg.Info.Currency,
		Price:       pkg.Info.Price,
		Metrics:     metrics,
		GeneratedAt: started,
		Statements:  pkg,
	}

	in := s.input(metrics, pkg.Info.SharesOutstanding, options)
	v, err := valuation.Value(in)
	if err != nil {
		a.ValuationError = err.Error()
		s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Valuation unavailable")
	} else {
		a.Valuation = v
		a.Upside = Upside(v.PerShare, a.Price)
	}

	if s.sensitivityEnabled(options) && v != nil {
		waccs, growths := DefaultSensitivityAxes(v.Assumptions.WACC, v.Assumptions.Growth)
		a.Sensitivity = valuation.Sensitivity(in.FCF, in.Shares, in.NetDebt, waccs, growths, in.TerminalGrowth, in.Years)
	}

	if options.SaveReport {
		s.saveReport(ctx, a)
	}

	s.logger.Info().
		Str("ticker", ticker).
		Str("run_id", a.RunID).
		Str("asof", metrics.AsOf).
		Dur("elapsed", s.now().Sub(started)).
		Msg("Analysis complete")
	return a, nil
}

// Report builds the workbook for a completed analysis
func (s *Service) Report(ctx context.Context, a *models.Analysis) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.writer.BuildWorkbook(a)
}

// input merges per-run overrides with configured defaults.
func (s *Service) input(m *models.Metrics, shares models.Num, o interfaces.AnalysisOptions) valuation.Input {
	in := valuation.Input{
		FCF:            m.FCF,
		Shares:         shares,
		NetDebt:        m.NetDebt,
		WACC:           o.WACC,
		Growth:         o.Growth,
		TerminalGrowth: o.TerminalGrowth,
		Years:          o.Years,
	}
	if !in.WACC.Valid {
		in.WACC = models.Some(s.config.WACC)
	}
	if !in.Growth.Valid {
		in.Growth = models.Some(s.config.Growth)
	}
	if !in.TerminalGrowth.Valid {
		in.TerminalGrowth = models.Some(s.config.TerminalGrowth)
	}
	if in.Years == 0 {
		in.Years = s.config.Years
	}
	return in
}

func (s *Service) sensitivityEnabled(o interfaces.AnalysisOptions) bool {
	if o.Sensitivity != nil {
		return *o.Sensitivity
	}
	return s.config.Sensitivity
}

// saveReport writes the workbook to the store. Failures are logged only.
func (s *Service) saveReport(ctx context.Context, a *models.Analysis) {
	if s.store == nil {
		return
	}
	data, err := s.writer.BuildWorkbook(a)
	if err != nil {
		s.logger.Error().Str("ticker", a.Ticker).Err(err).Msg("Failed to build report")
		return
	}
	path, err := s.store.Save(ctx, report.ReportName(a.Ticker, a.GeneratedAt), data)
	if err != nil {
		s.logger.Error().Str("ticker", a.Ticker).Err(err).Msg("Failed to save report")
		return
	}
	a.ReportPath = path
}

// Upside is the fractional gap between per-share value and price, missing
// without a positive price.
func Upside(perShare float64, price models.Num) models.Num {
	if !price.Valid || price.Value <= 0 {
		return models.Missing
	}
	return models.Some(perShare/price.Value - 1)
}

// DefaultSensitivityAxes centers a five-point grid on the base assumptions.
// WACC steps by one and two points; growth by one and three points.
func DefaultSensitivityAxes(wacc, growth float64) ([]float64, []float64) {
	waccs := []float64{
		max(minGridWACC, wacc-0.02),
		max(minGridWACC, wacc-0.01),
		wacc,
		wacc + 0.01,
		wacc + 0.02,
	}
	growths := []float64{
		max(minGridGrowth, growth-0.03),
		max(minGridGrowth, growth-0.01),
		growth,
		growth + 0.01,
		growth + 0.03,
	}
	return waccs, growths
}

var _ interfaces.AnalysisService = (*Service)(nil)
