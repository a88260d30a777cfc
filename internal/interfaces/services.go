package interfaces

import (
	"context"

	"github.com/bobmcallan/vire-valuation/internal/models"
)

// AnalysisService values a single ticker end to end
type AnalysisService interface {
	// Analyze fetches statements, resolves ratios and runs the DCF
	Analyze(ctx context.Context, ticker string, options AnalysisOptions) (*models.Analysis, error)

	// Report builds the spreadsheet for an analysis
	Report(ctx context.Context, analysis *models.Analysis) ([]byte, error)
}

// AnalysisOptions overrides the configured DCF assumptions for one run.
// Missing rates and zero years fall back to configuration.
type AnalysisOptions struct {
	WACC           models.Num
	Growth         models.Num
	TerminalGrowth models.Num
	Years          int
	Sensitivity    *bool
	SaveReport     bool
}

// ReportWriter renders an analysis as a workbook
type ReportWriter interface {
	BuildWorkbook(analysis *models.Analysis) ([]byte, error)
}
