package ratios

// Fallback chains of provider labels for each canonical line item.
// Lookups take the first label that is present with a valid value.
var (
	RevenueLabels     = []string{"Total Revenue", "Operating Revenue"}
	GrossProfitLabels = []string{"Gross Profit"}
	EBITLabels        = []string{"EBIT", "Ebit", "Operating Income"}
	NetIncomeLabels   = []string{"Net Income", "Net Income Common Stockholders"}

	TotalAssetsLabels      = []string{"Total Assets"}
	TotalLiabilitiesLabels = []string{"Total Liabilities Net Minority Interest", "Total Liabilities"}
	EquityLabels           = []string{
		"Stockholders Equity",
		"Common Stock Equity",
		"Total Equity Gross Minority Interest",
		"Total Stockholder Equity",
	}
	CurrentAssetsLabels      = []string{"Current Assets", "Total Current Assets"}
	CurrentLiabilitiesLabels = []string{"Current Liabilities", "Total Current Liabilities"}
	TotalDebtLabels          = []string{
		"Total Debt",
		"Long Term Debt And Capital Lease Obligation",
		"Long Term Debt",
		"Current Debt And Capital Lease Obligation",
	}
	NetDebtLabels = []string{"Net Debt"}
	CashLabels    = []string{
		"Cash And Cash Equivalents",
		"Cash",
		"Cash Cash Equivalents And Short Term Investments",
	}

	OperatingCashFlowLabels = []string{
		"Operating Cash Flow",
		"Net Cash Provided By Operating Activities",
		"Total Cash From Operating Activities",
	}
	CapexLabels = []string{
		"Capital Expenditure",
		"Capital Expenditures",
		"Purchase Of PPE",
		"Purchase Of Property Plant Equipment",
		"Payments For Property Plant And Equipment",
	}
)
