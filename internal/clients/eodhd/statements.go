package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/bobmcallan/vire-valuation/internal/models"
)

// WithDefaultExchange sets the exchange suffix for tickers given without one
func WithDefaultExchange(exchange string) ClientOption {
	return func(c *Client) {
		c.defaultExchange = strings.ToUpper(strings.TrimPrefix(exchange, "."))
	}
}

// statementResponse is the subset of /fundamentals needed for statements
type statementResponse struct {
	General struct {
		Code         string `json:"Code"`
		Name         string `json:"Name"`
		CurrencyCode string `json:"CurrencyCode"`
	} `json:"General"`
	SharesStats struct {
		SharesOutstanding flexNum `json:"SharesOutstanding"`
	} `json:"SharesStats"`
	Financials struct {
		BalanceSheet    financialStatement `json:"Balance_Sheet"`
		CashFlow        financialStatement `json:"Cash_Flow"`
		IncomeStatement financialStatement `json:"Income_Statement"`
	} `json:"Financials"`
}

type financialStatement struct {
	CurrencySymbol string                                `json:"currency_symbol"`
	Yearly         map[string]map[string]json.RawMessage `json:"yearly"`
}

// metadataFields are per-period fields that are not line items
var metadataFields = map[string]bool{
	"date":            true,
	"filing_date":     true,
	"currency_symbol": true,
}

// labelAliases maps provider field names whose humanized form differs from
// the label used by the ratio resolver
var labelAliases = map[string]string{
	"totalLiab":                         "Total Liabilities",
	"shortLongTermDebtTotal":            "Total Debt",
	"netIncomeApplicableToCommonShares": "Net Income Common Stockholders",
	"cashAndEquivalents":                "Cash And Cash Equivalents",
	"cashAndShortTermInvestments":       "Cash Cash Equivalents And Short Term Investments",
}

// SymbolFor returns the EODHD symbol for a ticker, adding the default
// exchange when the ticker has none.
func (c *Client) SymbolFor(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if t == "" || strings.Contains(t, ".") || c.defaultExchange == "" {
		return t
	}
	return t + "." + c.defaultExchange
}

// FetchStatements retrieves annual statements and company info for a ticker.
// A failed price lookup is logged and leaves the price missing.
func (c *Client) FetchStatements(ctx context.Context, ticker string) (*models.StatementPackage, error) {
	symbol := c.SymbolFor(ticker)
	if symbol == "" {
		return nil, fmt.Errorf("ticker is required")
	}

	var resp statementResponse
	if err := c.get(ctx, "/fundamentals/"+symbol, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch fundamentals for %s: %w", symbol, err)
	}

	pkg := &models.StatementPackage{
		Ticker: strings.ToUpper(strings.TrimSpace(ticker)),
		Info: models.CompanyInfo{
			Ticker:            strings.ToUpper(strings.TrimSpace(ticker)),
			Name:              resp.General.Name,
			Currency:          resp.General.CurrencyCode,
			SharesOutstanding: positive(resp.SharesStats.SharesOutstanding.Num),
		},
		Income:    buildTable(resp.Financials.IncomeStatement),
		Balance:   buildTable(resp.Financials.BalanceSheet),
		CashFlow:  buildTable(resp.Financials.CashFlow),
		FetchedAt: c.now(),
	}
	if pkg.Info.Currency == "" {
		pkg.Info.Currency = resp.Financials.IncomeStatement.CurrencySymbol
	}

	price, err := c.GetPrice(ctx, symbol)
	if err != nil {
		c.logger.Warn().Err(err).Str("ticker", symbol).Msg("Price lookup failed, continuing without price")
	}
	pkg.Info.Price = price

	c.logger.Debug().
		Str("ticker", symbol).
		Int("income_periods", len(pkg.Income.Periods)).
		Int("balance_periods", len(pkg.Balance.Periods)).
		Int("cashflow_periods", len(pkg.CashFlow.Periods)).
		Msg("Fetched annual statements")

	return pkg, nil
}

// buildTable converts a yearly statement into a table with the most recent
// period first and rows in label order.
func buildTable(stmt financialStatement) *models.StatementTable {
	keys := make([]string, 0, len(stmt.Yearly))
	for k := range stmt.Yearly {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	periods := make([]models.Period, len(keys))
	for i, k := range keys {
		periods[i] = models.NewPeriod(k)
	}
	tbl := models.NewStatementTable(periods...)

	cells := make(map[string][]models.Num)
	for col, k := range keys {
		for field, raw := range stmt.Yearly[k] {
			if metadataFields[field] {
				continue
			}
			label := ProviderLabel(field)
			row, ok := cells[label]
			if !ok {
				row = make([]models.Num, len(keys))
				cells[label] = row
			}
			var v flexNum
			if err := json.Unmarshal(raw, &v); err != nil {
				continue
			}
			if !row[col].Valid {
				row[col] = v.Num
			}
		}
	}

	labels := make([]string, 0, len(cells))
	for label := range cells {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		tbl.AddRow(label, cells[label]...)
	}
	return tbl
}

// ProviderLabel converts a camelCase field name to a Title Case label,
// e.g. totalRevenue to "Total Revenue".
func ProviderLabel(field string) string {
	if alias, ok := labelAliases[field]; ok {
		return alias
	}
	var words []string
	var current []rune
	for _, r := range field {
		if r == '_' || r == ' ' {
			if len(current) > 0 {
				words = append(words, string(current))
				current = current[:0]
			}
			continue
		}
		if unicode.IsUpper(r) && len(current) > 0 && !unicode.IsUpper(current[len(current)-1]) {
			words = append(words, string(current))
			current = current[:0]
		}
		current = append(current, r)
	}
	if len(current) > 0 {
		words = append(words, string(current))
	}
	for i, w := range words {
		rs := []rune(w)
		rs[0] = unicode.ToUpper(rs[0])
		words[i] = string(rs)
	}
	return strings.Join(words, " ")
}

func positive(n models.Num) models.Num {
	if !n.Valid || n.Value <= 0 {
		return models.Missing
	}
	return n
}
