package report

import (
	"time"

	"github.com/bobmcallan/vire-valuation/internal/models"
)

func testAnalysis() *models.Analysis {
	income := models.NewStatementTable(models.NewPeriod("2023-09-30"), models.NewPeriod("2022-09-30"))
	income.AddRow("Total Revenue", models.Some(1000), models.Some(800))
	income.AddRow("Net Income", models.Some(100), models.Missing)

	cashflow := models.NewStatementTable(models.NewPeriod("2023-09-30"))
	cashflow.AddRow("Operating Cash Flow", models.Some(150))
	cashflow.AddRow("Capital Expenditure", models.Some(-50))

	metrics := &models.Metrics{
		AsOf:      "2023-09-30",
		Revenue:   models.Some(1000),
		NetIncome: models.Some(100),
		FCF:       models.Some(100),
		NetDebt:   models.Some(0),
		Margins:   models.Margins{Net: models.Some(0.1), FCF: models.Some(0.1)},
		Growth:    models.Growth{RevenueYoY: models.Some(0.25)},
	}

	return &models.Analysis{
		RunID:    "run-1",
		Ticker:   "ACME",
		Name:     "Acme Corp",
		Currency: "USD",
		Price:    models.Some(100),
		Metrics:  metrics,
		Valuation: &models.Valuation{
			Assumptions:     models.Assumptions{WACC: 0.10, Growth: 0.06, TerminalGrowth: 0.03, Years: 2},
			EnterpriseValue: 1250,
			EquityValue:     1250,
			PerShare:        125,
			TerminalValue:   1500,
			PVTerminalValue: 1050,
			Projection: []models.ProjectionRow{
				{Year: 1, FCF: 106, DiscountFactor: 0.5, PVFCF: 53},
				{Year: 2, FCF: 112, DiscountFactor: 0.25, PVFCF: 28},
			},
		},
		Sensitivity: &models.SensitivityGrid{
			WACCs:          []float64{0.09, 0.1},
			Growths:        []float64{0.05, 0.06},
			Cells:          [][]models.Num{{models.Some(140), models.Some(150)}, {models.Missing, models.Some(125)}},
			TerminalGrowth: 0.03,
			Years:          2,
		},
		Upside:      models.Some(0.25),
		GeneratedAt: time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC),
		Statements: &models.StatementPackage{
			Ticker:   "ACME",
			Income:   income,
			Balance:  models.NewStatementTable(),
			CashFlow: cashflow,
		},
	}
}
