package dto

// GetQuoteParam holds the parameters for a quote lookup.
type GetQuoteParam struct {
	Ticker   string
	Range    string
	Interval string
}

// YahooChartResponse mirrors the subset of the Yahoo Finance v8 chart API
// response needed to extract the most recent closing price.
type YahooChartResponse struct {
	Chart YahooChart `json:"chart"`
}

type YahooChart struct {
	Result []YahooChartResult `json:"result"`
	Error  *YahooChartError   `json:"error"`
}

type YahooChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type YahooChartResult struct {
	Meta       YahooChartMeta  `json:"meta"`
	Indicators YahooIndicators `json:"indicators"`
}

type YahooChartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

type YahooIndicators struct {
	Quote []YahooQuote `json:"quote"`
}

type YahooQuote struct {
	// Close entries can be null for gaps in the series.
	Close []*float64 `json:"close"`
}
