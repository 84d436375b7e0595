package entity

import "time"

// Position is a single holding in the portfolio: a quantity of one security
// bought at a known price, plus the transaction fees paid for it.
type Position struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Description   string    `gorm:"not null" json:"description"`
	Ticker        string    `gorm:"not null;index" json:"ticker"`
	Quantity      float64   `gorm:"not null" json:"quantity"`
	PurchasePrice float64   `gorm:"not null" json:"purchase_price"`
	Fees          float64   `gorm:"not null" json:"fees"`
	DateAdded     time.Time `gorm:"autoCreateTime" json:"date_added"`
}

func (Position) TableName() string {
	return "positions"
}
