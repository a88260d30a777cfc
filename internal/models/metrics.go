package models

// Margins are ratios over revenue
type Margins struct {
	Gross Num `json:"gross_margin"`
	EBIT  Num `json:"ebit_margin"`
	Net   Num `json:"net_margin"`
	FCF   Num `json:"fcf_margin"`
}

// Returns are net income over the asset and equity base
type Returns struct {
	ROA Num `json:"ROA"`
	ROE Num `json:"ROE"`
}

// Liquidity holds short-term solvency ratios
type Liquidity struct {
	CurrentRatio Num `json:"current_ratio"`
}

// Leverage holds capital structure ratios
type Leverage struct {
	DebtToEquity Num `json:"debt_to_equity"`
	LiabToAssets Num `json:"liab_to_assets"`
}

// Growth holds year-over-year changes between the two latest periods
type Growth struct {
	RevenueYoY   Num `json:"rev_yoy"`
	NetIncomeYoY Num `json:"ni_yoy"`
}

// Metrics is the normalized ratio bundle for the latest reporting period.
// Any field may be missing independently of the others.
type Metrics struct {
	AsOf      string    `json:"asof"`
	Revenue   Num       `json:"revenue"`
	NetIncome Num       `json:"net_income"`
	FCF       Num       `json:"fcf"`
	NetDebt   Num       `json:"net_debt"`
	Margins   Margins   `json:"margins"`
	Returns   Returns   `json:"returns"`
	Liquidity Liquidity `json:"liquidity"`
	Leverage  Leverage  `json:"leverage"`
	Growth    Growth    `json:"growth_yoy"`
}

// SummaryField is one flattened metric.
type SummaryField struct {
	Key   string
	Value Num
}

// Flatten returns the numeric metrics as ordered key/value pairs.
func (m *Metrics) Flatten() []SummaryField {
	return []SummaryField{
		{"revenue", m.Revenue},
		{"net_income", m.NetIncome},
		{"fcf", m.FCF},
		{"margin_gross_margin", m.Margins.Gross},
		{"margin_ebit_margin", m.Margins.EBIT},
		{"margin_net_margin", m.Margins.Net},
		{"margin_fcf_margin", m.Margins.FCF},
		{"ret_ROA", m.Returns.ROA},
		{"ret_ROE", m.Returns.ROE},
		{"liq_current_ratio", m.Liquidity.CurrentRatio},
		{"lev_debt_to_equity", m.Leverage.DebtToEquity},
		{"lev_liab_to_assets", m.Leverage.LiabToAssets},
		{"yoy_rev_yoy", m.Growth.RevenueYoY},
		{"yoy_ni_yoy", m.Growth.NetIncomeYoY},
		{"net_debt", m.NetDebt},
	}
}
