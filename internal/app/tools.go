package app

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createGetVersionTool returns the get_version tool definition
func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the vire-valuation server version and status. Use this to verify connectivity."),
	)
}

// createValuationTool returns the val tool definition
func createValuationTool() mcp.Tool {
	return mcp.NewTool("val",
		mcp.WithDescription("Value a company from its annual statements: key ratios, a simple DCF per-share value with upside to price, and a WACC by growth sensitivity table."),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("Stock ticker, optionally with exchange suffix (e.g., 'AAPL', 'BHP.AU')"),
		),
		mcp.WithNumber("wacc",
			mcp.Description("Discount rate as a fraction or percent (0.1 or 10). Default from config."),
		),
		mcp.WithNumber("g",
			mcp.Description("Forecast FCF growth per year as a fraction or percent. Default from config."),
		),
		mcp.WithNumber("tg",
			mcp.Description("Terminal growth as a fraction or percent. Must be below WACC."),
		),
		mcp.WithNumber("years",
			mcp.Description("Forecast horizon in years (default: 5)"),
		),
		mcp.WithBoolean("sensitivity",
			mcp.Description("Include the sensitivity table (default from config)"),
		),
		mcp.WithBoolean("save_report",
			mcp.Description("Save an xlsx workbook of the analysis"),
		),
	)
}

// createRatiosTool returns the ratios tool definition
func createRatiosTool() mcp.Tool {
	return mcp.NewTool("ratios",
		mcp.WithDescription("Return normalized financial ratios for the latest annual period as JSON: margins, returns, liquidity, leverage and year-over-year growth."),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("Stock ticker, optionally with exchange suffix"),
		),
	)
}

// createDCFTool returns the dcf tool definition
func createDCFTool() mcp.Tool {
	return mcp.NewTool("dcf",
		mcp.WithDescription("Run the constant-growth DCF on supplied inputs without fetching statements."),
		mcp.WithNumber("fcf",
			mcp.Required(),
			mcp.Description("Base-year free cash flow"),
		),
		mcp.WithNumber("shares",
			mcp.Required(),
			mcp.Description("Shares outstanding"),
		),
		mcp.WithNumber("net_debt",
			mcp.Description("Net debt subtracted from enterprise value (default: 0)"),
		),
		mcp.WithNumber("wacc", mcp.Description("Discount rate as a fraction or percent")),
		mcp.WithNumber("g", mcp.Description("Forecast growth as a fraction or percent")),
		mcp.WithNumber("tg", mcp.Description("Terminal growth as a fraction or percent")),
		mcp.WithNumber("years", mcp.Description("Forecast horizon in years")),
	)
}

// createSensitivityTool returns the sensitivity tool definition
func createSensitivityTool() mcp.Tool {
	return mcp.NewTool("sensitivity",
		mcp.WithDescription("Per-share DCF values over a five by five WACC and growth grid centered on the given assumptions."),
		mcp.WithNumber("fcf",
			mcp.Required(),
			mcp.Description("Base-year free cash flow"),
		),
		mcp.WithNumber("shares",
			mcp.Required(),
			mcp.Description("Shares outstanding"),
		),
		mcp.WithNumber("net_debt", mcp.Description("Net debt (default: 0)")),
		mcp.WithNumber("wacc", mcp.Description("Center discount rate")),
		mcp.WithNumber("g", mcp.Description("Center growth rate")),
		mcp.WithNumber("tg", mcp.Description("Terminal growth")),
		mcp.WithNumber("years", mcp.Description("Forecast horizon in years")),
	)
}

// createListReportsTool returns the list_reports tool definition
func createListReportsTool() mcp.Tool {
	return mcp.NewTool("list_reports",
		mcp.WithDescription("List saved valuation workbooks, newest first."),
	)
}
