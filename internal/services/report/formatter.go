package report

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/vire-valuation/internal/common"
	"github.com/bobmcallan/vire-valuation/internal/models"
)

// FormatAnalysis renders a compact markdown summary of an analysis, one
// metric group per line.
func FormatAnalysis(a *models.Analysis) string {
	if a == nil || a.Metrics == nil {
		return ""
	}
	m := a.Metrics
	var sb strings.Builder

	header := fmt.Sprintf("**%s**", a.Ticker)
	if a.Name != "" {
		header += " " + a.Name
	}
	if m.AsOf != "" {
		header += fmt.Sprintf(" (as of %s)", m.AsOf)
	}
	sb.WriteString(header + "\n")

	price := common.FormatPrice(a.Price)
	if a.Price.Valid && a.Currency != "" {
		price += " " + a.Currency
	}
	sb.WriteString(fmt.Sprintf("Price: `%s`\n", price))

	sb.WriteString(fmt.Sprintf("Revenue: `%s` | Net Income: `%s` | FCF: `%s`\n",
		common.FormatNumber(m.Revenue), common.FormatNumber(m.NetIncome), common.FormatNumber(m.FCF)))

	sb.WriteString(fmt.Sprintf("Margins: Gross `%s` | EBIT `%s` | Net `%s` | FCF `%s`\n",
		common.FormatPct(m.Margins.Gross), common.FormatPct(m.Margins.EBIT),
		common.FormatPct(m.Margins.Net), common.FormatPct(m.Margins.FCF)))

	sb.WriteString(fmt.Sprintf("Returns: ROA `%s` | ROE `%s`\n",
		common.FormatPct(m.Returns.ROA), common.FormatPct(m.Returns.ROE)))

	sb.WriteString(fmt.Sprintf("Growth YoY: Revenue `%s` | Net Income `%s`\n",
		common.FormatPct(m.Growth.RevenueYoY), common.FormatPct(m.Growth.NetIncomeYoY)))

	sb.WriteString(fmt.Sprintf("Leverage: D/E `%s` | Liab/Assets `%s` | Current Ratio `%s` | Net Debt `%s`\n",
		formatMultiple(m.Leverage.DebtToEquity), common.FormatPct(m.Leverage.LiabToAssets),
		formatMultiple(m.Liquidity.CurrentRatio), common.FormatNumber(m.NetDebt)))

	sb.WriteString(FormatValuationLine(a))
	return sb.String()
}

// FormatValuationLine renders the DCF result, or the reason it is unavailable.
func FormatValuationLine(a *models.Analysis) string {
	v := a.Valuation
	if v == nil {
		reason := a.ValuationError
		if reason == "" {
			reason = "not computed"
		}
		return fmt.Sprintf("DCF: %s (%s)\n", common.NotAvailable, reason)
	}
	as := v.Assumptions
	return fmt.Sprintf("DCF (simple): `%s` per share | Upside `%s` | (WACC %s, g %s, tg %s, years %d)\n",
		common.FormatPrice(models.Some(v.PerShare)), common.FormatPct(a.Upside),
		common.FormatRate(as.WACC), common.FormatRate(as.Growth), common.FormatRate(as.TerminalGrowth), as.Years)
}

// FormatSensitivity renders the grid as a markdown table with WACC rows and
// growth columns.
func FormatSensitivity(g *models.SensitivityGrid) string {
	if g == nil || len(g.WACCs) == 0 || len(g.Growths) == 0 {
		return ""
	}
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Per-share value (tg %s, years %d)\n\n", common.FormatRate(g.TerminalGrowth), g.Years))
	sb.WriteString("| WACC \\ g |")
	for _, growth := range g.Growths {
		sb.WriteString(" " + common.FormatRate(growth) + " |")
	}
	sb.WriteString("\n|---|")
	sb.WriteString(strings.Repeat("---|", len(g.Growths)))
	sb.WriteString("\n")

	for i, wacc := range g.WACCs {
		sb.WriteString("| " + common.FormatRate(wacc) + " |")
		for j := range g.Growths {
			sb.WriteString(" " + common.FormatPrice(g.Cell(i, j)) + " |")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatMultiple(n models.Num) string {
	if !n.Valid {
		return common.NotAvailable
	}
	return fmt.Sprintf("%.2fx", n.Value)
}
