package markets

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Depth bounds accepted by the orderbook route. The reducer itself assumes
// depth has already been validated and only truncates.
const (
	MinBookDepth     = 20
	MaxBookDepth     = 100
	DefaultBookDepth = 20
)

// BookLevel is one aggregated price level. It marshals as a [price, size]
// pair of JSON numbers, the usual exchange wire shape.
type BookLevel struct {
	Price decimal.Decimal
	Size  decimal.Decimal
}

func (l BookLevel) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("[%s,%s]", l.Price.String(), l.Size.String())), nil
}

// OrderBook is a depth-limited two-sided book, best price first on each side.
type OrderBook struct {
	Bids []BookLevel `json:"bids"`
	Asks []BookLevel `json:"asks"`
}

// ReduceBest derives the best bid and ask from a flat order collection.
// An empty side yields nil, never a sentinel price.
func ReduceBest(orders []OrderInfo) (bestBid, bestAsk *decimal.Decimal) {
	for i := range orders {
		o := orders[i]
		switch o.Side {
		case SideBuy:
			if bestBid == nil || o.Price.GreaterThan(*bestBid) {
				p := o.Price
				bestBid = &p
			}
		case SideSell:
			if bestAsk == nil || o.Price.LessThan(*bestAsk) {
				p := o.Price
				bestAsk = &p
			}
		}
	}
	return bestBid, bestAsk
}

// BuildBook partitions orders by side, sorts bids descending and asks
// ascending by price, and truncates each side to depth entries. Ties at
// equal price keep arrival order: the sort is stable and no secondary key
// is applied.
func BuildBook(orders []OrderInfo, depth int) OrderBook {
	bids := make([]BookLevel, 0, len(orders))
	asks := make([]BookLevel, 0, len(orders))
	for _, o := range orders {
		level := BookLevel{Price: o.Price, Size: o.Size}
		switch o.Side {
		case SideBuy:
			bids = append(bids, level)
		case SideSell:
			asks = append(asks, level)
		}
	}

	sort.SliceStable(bids, func(i, j int) bool { return bids[i].Price.GreaterThan(bids[j].Price) })
	sort.SliceStable(asks, func(i, j int) bool { return asks[i].Price.LessThan(asks[j].Price) })

	if len(bids) > depth {
		bids = bids[:depth]
	}
	if len(asks) > depth {
		asks = asks[:depth]
	}
	return OrderBook{Bids: bids, Asks: asks}
}
