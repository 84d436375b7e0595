package repository

import (
	"context"
	"fmt"
	"strings"

	"portfolio-tracker/pkg/logger"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

// alpacaRepository resolves prices via the Alpaca market data API. Credentials
// are read from the APCA_API_KEY_ID / APCA_API_SECRET_KEY environment
// variables by the client itself.
type alpacaRepository struct {
	log      *logger.Logger
	mdClient *marketdata.Client
}

// NewAlpacaRepository creates a price repository backed by Alpaca.
func NewAlpacaRepository(log *logger.Logger) PriceRepository {
	return &alpacaRepository{
		log:      log,
		mdClient: marketdata.NewClient(marketdata.ClientOpts{}),
	}
}

// GetQuote fetches the latest trade price for the ticker.
func (r *alpacaRepository) GetQuote(ctx context.Context, ticker string) (float64, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return 0, ErrPriceUnavailable
	}

	trade, err := r.mdClient.GetLatestTrade(ticker, marketdata.GetLatestTradeRequest{})
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to get latest trade from Alpaca", logger.ErrorField(err), logger.StringField("ticker", ticker))
		return 0, fmt.Errorf("%w: %s", ErrPriceUnavailable, ticker)
	}
	if trade == nil || trade.Price <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrPriceUnavailable, ticker)
	}

	return trade.Price, nil
}
