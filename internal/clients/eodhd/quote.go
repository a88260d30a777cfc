package eodhd

import (
	"context"
	"fmt"

	"github.com/bobmcallan/vire-valuation/internal/models"
)

// realTimeResponse is the /real-time payload. Fields are "NA" outside trading data.
type realTimeResponse struct {
	Code          string  `json:"code"`
	Close         flexNum `json:"close"`
	PreviousClose flexNum `json:"previousClose"`
}

// GetPrice returns the latest close, falling back to the previous close.
func (c *Client) GetPrice(ctx context.Context, ticker string) (models.Num, error) {
	symbol := c.SymbolFor(ticker)

	var resp realTimeResponse
	if err := c.get(ctx, "/real-time/"+symbol, nil, &resp); err != nil {
		return models.Missing, fmt.Errorf("fetch quote for %s: %w", symbol, err)
	}

	if p := positive(resp.Close.Num); p.Valid {
		return p, nil
	}
	return positive(resp.PreviousClose.Num), nil
}
