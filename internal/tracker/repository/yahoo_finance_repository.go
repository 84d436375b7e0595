package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"portfolio-tracker/internal/tracker/config"
	"portfolio-tracker/internal/tracker/dto"
	"portfolio-tracker/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type yahooFinanceRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
}

// NewYahooFinanceRepository creates a price repository backed by the Yahoo
// Finance chart API.
func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger) PriceRepository {
	maxRequestPerMinute := cfg.YahooFinance.MaxRequestPerMinute
	if maxRequestPerMinute <= 0 {
		maxRequestPerMinute = 60
	}
	secondsPerRequest := time.Minute / time.Duration(maxRequestPerMinute)
	return &yahooFinanceRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}
}

// GetQuote fetches the latest closing price for the ticker.
func (r *yahooFinanceRepository) GetQuote(ctx context.Context, ticker string) (float64, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return 0, ErrPriceUnavailable
	}

	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?range=1d&interval=1d", r.cfg.YahooFinance.BaseURL, url.PathEscape(ticker))
	body, err := r.sendRequest(ctx, http.MethodGet, reqURL)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrPriceUnavailable, ticker)
	}

	var response dto.YahooChartResponse
	if err := json.Unmarshal(body, &response); err != nil {
		r.log.ErrorContext(ctx, "Failed to decode Yahoo Finance response", logger.ErrorField(err), logger.StringField("ticker", ticker))
		return 0, fmt.Errorf("%w: %s", ErrPriceUnavailable, ticker)
	}

	if response.Chart.Error != nil || len(response.Chart.Result) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrPriceUnavailable, ticker)
	}

	result := response.Chart.Result[0]

	// Prefer the last non-null close of the series, falling back to the
	// regular market price from the chart meta.
	for _, quote := range result.Indicators.Quote {
		for i := len(quote.Close) - 1; i >= 0; i-- {
			if quote.Close[i] != nil && *quote.Close[i] > 0 {
				return *quote.Close[i], nil
			}
		}
	}
	if result.Meta.RegularMarketPrice > 0 {
		return result.Meta.RegularMarketPrice, nil
	}

	return 0, fmt.Errorf("%w: %s", ErrPriceUnavailable, ticker)
}

func (r *yahooFinanceRepository) sendRequest(ctx context.Context, method string, url string) ([]byte, error) {
	fields := []zap.Field{
		zap.String("url", url),
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to wait for request limit", fields...)
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to create new http request", fields...)
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to send request to Yahoo Finance API", fields...)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fields = append(fields, zap.Int("status_code", resp.StatusCode))
		r.log.ErrorContext(ctx, "Received non-OK response from Yahoo Finance API", fields...)
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to read response body from Yahoo Finance API", fields...)
		return nil, err
	}

	return body, nil
}
