package models

import "time"

// CompanyInfo holds descriptive data returned alongside the statements
type CompanyInfo struct {
	Ticker            string `json:"ticker"`
	Name              string `json:"name,omitempty"`
	Currency          string `json:"currency,omitempty"`
	Price             Num    `json:"price"`
	SharesOutstanding Num    `json:"shares_outstanding"`
}

// StatementPackage is the annual income, balance and cash flow tables for a ticker
type StatementPackage struct {
	Ticker    string          `json:"ticker"`
	Info      CompanyInfo     `json:"info"`
	Income    *StatementTable `json:"income"`
	Balance   *StatementTable `json:"balance"`
	CashFlow  *StatementTable `json:"cashflow"`
	FetchedAt time.Time       `json:"fetched_at"`
}
