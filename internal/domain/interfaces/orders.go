package interfaces

import (
	"context"

	markets "github.com/ZephyrTrading/mango-v3-service/internal/domain/entity/markets"
)

// OrderSource exposes the on-chain reader's live order snapshot,
// filterable by internal market name. An empty name fetches all markets.
type OrderSource interface {
	Orders(ctx context.Context, internalName string) ([]markets.OrderInfo, error)
}
