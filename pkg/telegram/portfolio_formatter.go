package telegram

import (
	"fmt"
	"strings"

	"portfolio-tracker/internal/tracker/dto"
)

// FormatPortfolioSummary formats a valued portfolio into a Markdown message
// for Telegram. Positions without a resolvable price are shown with N/A.
func FormatPortfolioSummary(portfolio *dto.PortfolioResponse) string {
	var b strings.Builder
	b.WriteString("📊 *Portfolio Summary*\n\n")

	for _, p := range portfolio.Portfolio {
		b.WriteString(fmt.Sprintf("*%s* (%s)\n", p.Ticker, p.Description))
		b.WriteString(fmt.Sprintf("  Cost: %.2f\n", p.TotalCost))
		if p.CurrentValue != nil && p.PL != nil && p.PLPercent != nil {
			icon := "🟢"
			if *p.PL < 0 {
				icon = "🔴"
			}
			b.WriteString(fmt.Sprintf("  Value: %.2f %s %.2f (%.2f%%)\n", *p.CurrentValue, icon, *p.PL, *p.PLPercent))
		} else {
			b.WriteString("  Value: N/A\n")
		}
	}

	summary := portfolio.Summary
	b.WriteString("\n*Totals*\n")
	b.WriteString(fmt.Sprintf("Invested: %.2f\n", summary.TotalInvestment))
	b.WriteString(fmt.Sprintf("Current: %.2f\n", summary.TotalCurrentValue))

	icon := "🟢"
	if summary.TotalPL < 0 {
		icon = "🔴"
	}
	b.WriteString(fmt.Sprintf("P/L: %s %.2f (%.2f%%)\n", icon, summary.TotalPL, summary.TotalPLPercent))

	return b.String()
}
