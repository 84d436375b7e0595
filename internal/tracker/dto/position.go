package dto

import "time"

// CreatePositionRequest is the DTO for adding a new position.
type CreatePositionRequest struct {
	Description   string  `json:"description"`
	Ticker        string  `json:"ticker"`
	Quantity      float64 `json:"quantity"`
	PurchasePrice float64 `json:"purchase_price"`
	Fees          float64 `json:"fees"`
}

// UpdatePositionRequest is the DTO for editing an existing position.
type UpdatePositionRequest struct {
	Description   string  `json:"description"`
	Ticker        string  `json:"ticker"`
	Quantity      float64 `json:"quantity"`
	PurchasePrice float64 `json:"purchase_price"`
	Fees          float64 `json:"fees"`
}

// PositionValuation is a position together with its computed valuation.
// Price-derived fields are nil when no price could be resolved for the ticker.
type PositionValuation struct {
	ID            uint      `json:"id"`
	Description   string    `json:"description"`
	Ticker        string    `json:"ticker"`
	Quantity      float64   `json:"quantity"`
	PurchasePrice float64   `json:"purchase_price"`
	TotalCost     float64   `json:"total_cost"`
	Fees          float64   `json:"fees"`
	CurrentPrice  *float64  `json:"current_price"`
	CurrentValue  *float64  `json:"current_value"`
	PL            *float64  `json:"pl"`
	PLPercent     *float64  `json:"pl_percent"`
	DateAdded     time.Time `json:"date_added"`
}

// PortfolioSummary aggregates valuation across the whole portfolio.
// Positions without a resolvable price are excluded from the current value
// but still counted in the total investment.
type PortfolioSummary struct {
	TotalInvestment   float64 `json:"total_investment"`
	TotalCurrentValue float64 `json:"total_current_value"`
	TotalPL           float64 `json:"total_pl"`
	TotalPLPercent    float64 `json:"total_pl_percent"`
}

// PortfolioResponse is the response body for the portfolio endpoint.
type PortfolioResponse struct {
	Success   bool                `json:"success"`
	Portfolio []PositionValuation `json:"portfolio"`
	Summary   PortfolioSummary    `json:"summary"`
}
