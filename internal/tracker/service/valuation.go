package service

// Valuation holds the computed worth of a single position. Price-derived
// fields are nil when no current price is available.
type Valuation struct {
	TotalCost    float64
	CurrentValue *float64
	PL           *float64
	PLPercent    *float64
}

// ComputeValuation values a position against the given current price.
// A zero cost basis yields a P/L percentage of 0 rather than a division
// by zero.
func ComputeValuation(quantity, purchasePrice, fees float64, currentPrice *float64) Valuation {
	totalCost := quantity*purchasePrice + fees
	v := Valuation{TotalCost: totalCost}
	if currentPrice == nil {
		return v
	}

	currentValue := quantity * (*currentPrice)
	pl := currentValue - totalCost
	plPercent := 0.0
	if totalCost > 0 {
		plPercent = pl / totalCost * 100
	}

	v.CurrentValue = &currentValue
	v.PL = &pl
	v.PLPercent = &plPercent
	return v
}

// summaryAccumulator aggregates valuations across the portfolio. Positions
// without a resolvable price contribute to the investment total only.
type summaryAccumulator struct {
	totalInvestment   float64
	totalCurrentValue float64
}

func (a *summaryAccumulator) add(v Valuation) {
	a.totalInvestment += v.TotalCost
	if v.CurrentValue != nil {
		a.totalCurrentValue += *v.CurrentValue
	}
}

func (a *summaryAccumulator) totals() (investment, currentValue, pl, plPercent float64) {
	investment = a.totalInvestment
	currentValue = a.totalCurrentValue
	if currentValue > 0 {
		pl = currentValue - investment
	}
	if investment > 0 {
		plPercent = pl / investment * 100
	}
	return investment, currentValue, pl, plPercent
}
