// Package ratios resolves canonical line items from annual statements and
// derives margin, return, liquidity, leverage and growth ratios.
package ratios

import (
	"errors"

	"github.com/bobmcallan/vire-valuation/internal/models"
)

// ErrNoStatementData is returned when all three statements are empty.
var ErrNoStatementData = errors.New("No annual statement data returned for this ticker.")

// Resolve computes the metrics bundle for the latest reporting period.
// The latest period is column 0 of the first non-empty table in the order
// income, balance, cash flow. Missing line items only affect the fields that
// depend on them.
func Resolve(income, balance, cashflow *models.StatementTable) (*models.Metrics, error) {
	var latest models.Period
	found := false
	for _, tbl := range []*models.StatementTable{income, balance, cashflow} {
		if !tbl.Empty() {
			latest, _ = tbl.Latest()
			found = true
			break
		}
	}
	if !found {
		return nil, ErrNoStatementData
	}

	key := latest.Key
	revenue := FirstAvailable(income, RevenueLabels, key)
	grossProfit := FirstAvailable(income, GrossProfitLabels, key)
	ebit := FirstAvailable(income, EBITLabels, key)
	netIncome := FirstAvailable(income, NetIncomeLabels, key)

	totalAssets := FirstAvailable(balance, TotalAssetsLabels, key)
	totalLiab := FirstAvailable(balance, TotalLiabilitiesLabels, key)
	equity := FirstAvailable(balance, EquityLabels, key)
	currAssets := FirstAvailable(balance, CurrentAssetsLabels, key)
	currLiab := FirstAvailable(balance, CurrentLiabilitiesLabels, key)
	totalDebt := FirstAvailable(balance, TotalDebtLabels, key)
	cash := FirstAvailable(balance, CashLabels, key)

	netDebt := FirstAvailable(balance, NetDebtLabels, key)
	if netDebt.IsMissing() && totalDebt.Valid && cash.Valid {
		netDebt = models.Some(totalDebt.Value - cash.Value)
	}

	fcf := FreeCashFlow(
		FirstAvailable(cashflow, OperatingCashFlowLabels, key),
		FirstAvailable(cashflow, CapexLabels, key),
	)

	return &models.Metrics{
		AsOf:      latest.String(),
		Revenue:   revenue,
		NetIncome: netIncome,
		FCF:       fcf,
		NetDebt:   netDebt,
		Margins: models.Margins{
			Gross: SafeDivide(grossProfit, revenue),
			EBIT:  SafeDivide(ebit, revenue),
			Net:   SafeDivide(netIncome, revenue),
			FCF:   SafeDivide(fcf, revenue),
		},
		Returns: models.Returns{
			ROA: SafeDivide(netIncome, totalAssets),
			ROE: SafeDivide(netIncome, equity),
		},
		Liquidity: models.Liquidity{
			CurrentRatio: SafeDivide(currAssets, currLiab),
		},
		Leverage: models.Leverage{
			DebtToEquity: SafeDivide(totalDebt, equity),
			LiabToAssets: SafeDivide(totalLiab, totalAssets),
		},
		Growth: models.Growth{
			RevenueYoY:   YoY(income, RevenueLabels),
			NetIncomeYoY: YoY(income, NetIncomeLabels),
		},
	}, nil
}

// FirstAvailable returns the value of the first label that exists in the
// table and holds a valid value for the given period.
func FirstAvailable(tbl *models.StatementTable, labels []string, periodKey string) models.Num {
	if tbl.Empty() {
		return models.Missing
	}
	col := tbl.PeriodIndex(periodKey)
	if col < 0 {
		return models.Missing
	}
	for _, label := range labels {
		if !tbl.Has(label) {
			continue
		}
		if v := tbl.Cell(label, col); v.Valid {
			return v
		}
	}
	return models.Missing
}

// SafeDivide returns a/b, or missing when either operand is missing or b is zero.
func SafeDivide(a, b models.Num) models.Num {
	if !a.Valid || !b.Valid || b.Value == 0 {
		return models.Missing
	}
	return models.Some(a.Value / b.Value)
}

// FreeCashFlow is operating cash flow plus capex, with capex treated as an outflow.
func FreeCashFlow(operatingCashFlow, capex models.Num) models.Num {
	if !operatingCashFlow.Valid || !capex.Valid {
		return models.Missing
	}
	c := capex.Value
	if c > 0 {
		c = -c
	}
	return models.Some(operatingCashFlow.Value + c)
}

// YoY returns the growth between the two most recent periods for the first
// label of the chain that exists in the table. Both periods use that label.
func YoY(tbl *models.StatementTable, labels []string) models.Num {
	if tbl.Empty() || len(tbl.Periods) < 2 {
		return models.Missing
	}
	for _, label := range labels {
		if !tbl.Has(label) {
			continue
		}
		latest := tbl.Cell(label, 0)
		prior := tbl.Cell(label, 1)
		if !latest.Valid || !prior.Valid {
			return models.Missing
		}
		return SafeDivide(models.Some(latest.Value-prior.Value), prior)
	}
	return models.Missing
}
