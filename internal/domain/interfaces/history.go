package interfaces

import (
	"context"
	"time"

	markets "github.com/ZephyrTrading/mango-v3-service/internal/domain/entity/markets"
)

// CandleQuery describes one OHLCV request against the indexing service.
// Resolution is in seconds. Unless Raw is set, From/To are floored to
// whole-minute boundaries and Resolution is clamped to one minute, the
// upstream's caching granularity.
type CandleQuery struct {
	Symbol     string
	Resolution int64
	From       time.Time
	To         time.Time
	Raw        bool
}

// HistoryGateway reads trades, candles and summary statistics from the
// historical indexing service. The upstream signals per-market indexing
// gaps with a sentinel body on HTTP 200; implementations translate that
// into empty results (nil stats, empty slices) and never into an error.
// Errors are reserved for transport and protocol failures.
type HistoryGateway interface {
	Stats(ctx context.Context, internalName string) (*markets.MarketStats, error)
	Trades(ctx context.Context, marketAddress string) ([]markets.Trade, error)
	Candles(ctx context.Context, q CandleQuery) ([]markets.Candle, error)
}
