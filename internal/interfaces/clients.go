// Package interfaces defines service contracts for vire-valuation
package interfaces

import (
	"context"

	"github.com/bobmcallan/vire-valuation/internal/models"
)

// StatementFetcher retrieves annual financial statements for a ticker
type StatementFetcher interface {
	// FetchStatements returns the income, balance and cash flow tables with
	// company info. Periods are ordered most recent first.
	FetchStatements(ctx context.Context, ticker string) (*models.StatementPackage, error)
}

// QuoteClient retrieves a point-in-time price
type QuoteClient interface {
	// GetPrice returns the latest available price, missing when unquoted
	GetPrice(ctx context.Context, ticker string) (models.Num, error)
}
