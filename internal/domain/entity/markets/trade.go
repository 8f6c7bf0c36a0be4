package markets

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is one executed trade as reported by the historical indexing
// service, ordered most recent first.
type Trade struct {
	ID        string          `json:"id"`
	Price     decimal.Decimal `json:"price"`
	Side      Side            `json:"side"`
	Size      decimal.Decimal `json:"size"`
	Timestamp time.Time       `json:"timestamp"`
}
