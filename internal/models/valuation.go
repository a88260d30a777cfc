package models

// Assumptions are the normalized rates and horizon a valuation was run with
type Assumptions struct {
	WACC           float64 `json:"wacc"`
	Growth         float64 `json:"g"`
	TerminalGrowth float64 `json:"tg"`
	Years          int     `json:"years"`
}

// ProjectionRow is one forecast year of the DCF
type ProjectionRow struct {
	Year           int     `json:"year"`
	FCF            float64 `json:"fcf"`
	DiscountFactor float64 `json:"discount_factor"`
	PVFCF          float64 `json:"pv_fcf"`
}

// Valuation is a successful DCF result
type Valuation struct {
	Assumptions     Assumptions     `json:"assumptions"`
	EnterpriseValue float64         `json:"enterprise_value"`
	EquityValue     float64         `json:"equity_value"`
	PerShare        float64         `json:"per_share"`
	TerminalValue   float64         `json:"terminal_value"`
	PVTerminalValue float64         `json:"pv_terminal_value"`
	Projection      []ProjectionRow `json:"projection"`
}

// SensitivityGrid holds per-share values for WACC (rows) by growth (columns).
// A cell whose valuation failed is missing.
type SensitivityGrid struct {
	WACCs          []float64 `json:"wacc"`
	Growths        []float64 `json:"g"`
	Cells          [][]Num   `json:"cells"`
	TerminalGrowth float64   `json:"tg"`
	Years          int       `json:"years"`
}

// Cell returns the value at row i, column j.
func (g *SensitivityGrid) Cell(i, j int) Num {
	if g == nil || i < 0 || i >= len(g.Cells) || j < 0 || j >= len(g.Cells[i]) {
		return Missing
	}
	return g.Cells[i][j]
}
