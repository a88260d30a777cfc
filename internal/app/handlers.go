package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/vire-valuation/internal/common"
	"github.com/bobmcallan/vire-valuation/internal/interfaces"
	"github.com/bobmcallan/vire-valuation/internal/models"
	"github.com/bobmcallan/vire-valuation/internal/services/analysis"
	"github.com/bobmcallan/vire-valuation/internal/services/report"
	"github.com/bobmcallan/vire-valuation/internal/services/valuation"
)

// handleGetVersion implements the get_version tool
func handleGetVersion() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := fmt.Sprintf("vire-valuation\nVersion: %s\nBuild: %s\nCommit: %s\nStatus: OK",
			common.GetVersion(), common.GetBuild(), common.GetGitCommit())
		return textResult(result), nil
	}
}

// handleValuation implements the val tool
func handleValuation(svc interfaces.AnalysisService, saveDefault bool, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := request.RequireString("ticker")
		if err != nil || strings.TrimSpace(ticker) == "" {
			return errorResult("Error: ticker parameter is required"), nil
		}

		options := interfaces.AnalysisOptions{
			WACC:           optionalNum(request, "wacc"),
			Growth:         optionalNum(request, "g"),
			TerminalGrowth: optionalNum(request, "tg"),
			Years:          request.GetInt("years", 0),
			SaveReport:     request.GetBool("save_report", saveDefault),
		}
		if _, ok := request.GetArguments()["sensitivity"]; ok {
			include := request.GetBool("sensitivity", true)
			options.Sensitivity = &include
		}

		a, err := svc.Analyze(ctx, ticker, options)
		if err != nil {
			logger.Error().Err(err).Str("ticker", ticker).Msg("Valuation failed")
			return errorResult(fmt.Sprintf("Error for **%s**: %v", strings.ToUpper(strings.TrimSpace(ticker)), err)), nil
		}

		var sb strings.Builder
		sb.WriteString(report.FormatAnalysis(a))
		if table := report.FormatSensitivity(a.Sensitivity); table != "" {
			sb.WriteString("\n")
			sb.WriteString(table)
		}
		if a.ReportPath != "" {
			sb.WriteString(fmt.Sprintf("\nReport saved: %s\n", a.ReportPath))
		}
		return textResult(sb.String()), nil
	}
}

// handleRatios implements the ratios tool
func handleRatios(svc interfaces.AnalysisService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := request.RequireString("ticker")
		if err != nil || strings.TrimSpace(ticker) == "" {
			return errorResult("Error: ticker parameter is required"), nil
		}

		off := false
		a, err := svc.Analyze(ctx, ticker, interfaces.AnalysisOptions{Sensitivity: &off})
		if err != nil {
			logger.Error().Err(err).Str("ticker", ticker).Msg("Ratio resolution failed")
			return errorResult(fmt.Sprintf("Error for **%s**: %v", strings.ToUpper(strings.TrimSpace(ticker)), err)), nil
		}

		data, err := json.MarshalIndent(a.Metrics, "", "  ")
		if err != nil {
			return errorResult(fmt.Sprintf("Error encoding ratios: %v", err)), nil
		}
		return textResult(string(data)), nil
	}
}

// handleDCF implements the dcf tool
func handleDCF(defaults common.ValuationConfig) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		in := dcfInput(request, defaults)
		v, err := valuation.Value(in)
		if err != nil {
			return errorResult(fmt.Sprintf("DCF: %s (%v)", common.NotAvailable, err)), nil
		}

		as := v.Assumptions
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Per share: `%s` | EV `%s` | Equity `%s`\n",
			common.FormatPrice(models.Some(v.PerShare)),
			common.FormatNumber(models.Some(v.EnterpriseValue)),
			common.FormatNumber(models.Some(v.EquityValue))))
		sb.WriteString(fmt.Sprintf("Terminal value `%s` (PV `%s`)\n",
			common.FormatNumber(models.Some(v.TerminalValue)),
			common.FormatNumber(models.Some(v.PVTerminalValue))))
		sb.WriteString(fmt.Sprintf("WACC %s, g %s, tg %s, years %d\n\n",
			common.FormatRate(as.WACC), common.FormatRate(as.Growth), common.FormatRate(as.TerminalGrowth), as.Years))

		sb.WriteString("| Year | FCF | Discount Factor | PV FCF |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, r := range v.Projection {
			sb.WriteString(fmt.Sprintf("| %d | %s | %.4f | %s |\n",
				r.Year, common.FormatNumber(models.Some(r.FCF)), r.DiscountFactor, common.FormatNumber(models.Some(r.PVFCF))))
		}
		return textResult(sb.String()), nil
	}
}

// handleSensitivity implements the sensitivity tool
func handleSensitivity(defaults common.ValuationConfig) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		in := dcfInput(request, defaults)
		wacc := valuation.NormalizeRate(in.WACC)
		g := valuation.NormalizeRate(in.Growth)
		if !wacc.Valid || !g.Valid {
			return errorResult("Error: " + valuation.ErrMissingRates.Error()), nil
		}

		waccs, growths := analysis.DefaultSensitivityAxes(wacc.Value, g.Value)
		grid := valuation.Sensitivity(in.FCF, in.Shares, in.NetDebt, waccs, growths, in.TerminalGrowth, in.Years)
		return textResult(report.FormatSensitivity(grid)), nil
	}
}

// handleListReports implements the list_reports tool
func handleListReports(store interfaces.ReportStore) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if store == nil {
			return errorResult("Report saving is disabled"), nil
		}
		names, err := store.List(ctx)
		if err != nil {
			return errorResult(fmt.Sprintf("Error listing reports: %v", err)), nil
		}
		if len(names) == 0 {
			return textResult("No reports saved. Use `val` with save_report to create one."), nil
		}

		var sb strings.Builder
		sb.WriteString("# Saved Reports\n\n")
		for _, name := range names {
			sb.WriteString("- " + name + "\n")
		}
		return textResult(sb.String()), nil
	}
}

// dcfInput reads DCF inputs from the request, falling back to defaults
// for rates and years.
func dcfInput(request mcp.CallToolRequest, defaults common.ValuationConfig) valuation.Input {
	in := valuation.Input{
		FCF:            optionalNum(request, "fcf"),
		Shares:         optionalNum(request, "shares"),
		NetDebt:        optionalNum(request, "net_debt"),
		WACC:           optionalNum(request, "wacc"),
		Growth:         optionalNum(request, "g"),
		TerminalGrowth: optionalNum(request, "tg"),
		Years:          request.GetInt("years", defaults.Years),
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
	return in
}

// optionalNum returns the argument as a number, missing when absent or
// unparseable.
func optionalNum(request mcp.CallToolRequest, key string) models.Num {
	v, ok := request.GetArguments()[key]
	if !ok || v == nil {
		return models.Missing
	}
	switch n := v.(type) {
	case float64:
		return models.Some(n)
	case int:
		return models.Some(float64(n))
	case int64:
		return models.Some(float64(n))
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return models.Missing
		}
		return models.Some(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return models.Missing
		}
		return models.Some(f)
	}
	return models.Missing
}

// Helper functions

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

