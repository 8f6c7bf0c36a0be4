package markets

import "github.com/shopspring/decimal"

// Side represents the resting side of an open order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderInfo is one live resting order as read from the chain. Orders are
// request-scoped values: filtered and sorted, never mutated.
type OrderInfo struct {
	Market string          `json:"market"`
	Side   Side            `json:"side"`
	Price  decimal.Decimal `json:"price"`
	Size   decimal.Decimal `json:"size"`
}
