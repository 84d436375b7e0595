package repository

import (
	"context"
	"errors"
)

// ErrPriceUnavailable is returned when the market data provider has no price
// for the requested ticker, or the request failed.
var ErrPriceUnavailable = errors.New("price unavailable")

// PriceRepository defines the interface for market data lookups.
type PriceRepository interface {
	// GetQuote returns the most recent price for the ticker, or
	// ErrPriceUnavailable when none can be resolved.
	GetQuote(ctx context.Context, ticker string) (float64, error)
}
