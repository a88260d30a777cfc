package models

import "time"

// Analysis is the full result of valuing one ticker
type Analysis struct {
	RunID          string            `json:"run_id"`
	Ticker         string            `json:"ticker"`
	Name           string            `json:"name,omitempty"`
	Currency       string            `json:"currency,omitempty"`
	Price          Num               `json:"price"`
	Metrics        *Metrics          `json:"metrics"`
	Valuation      *Valuation        `json:"valuation,omitempty"`
	ValuationError string            `json:"valuation_error,omitempty"`
	Sensitivity    *SensitivityGrid  `json:"sensitivity,omitempty"`
	Upside         Num               `json:"upside"`
	ReportPath     string            `json:"report_path,omitempty"`
	GeneratedAt    time.Time         `json:"generated_at"`
	Statements     *StatementPackage `json:"-"`
}
