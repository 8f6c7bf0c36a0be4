package interfaces

import (
	markets "github.com/ZephyrTrading/mango-v3-service/internal/domain/entity/markets"
)

// MarketCatalog resolves external market names to their on-chain
// configuration. Lookups are read-only and safe for concurrent use.
type MarketCatalog interface {
	List() []markets.MarketConfig
	Find(externalName string) (markets.MarketConfig, error)

	// ExternalName and InternalName form a bijection over known market
	// names, applied consistently at every request/response boundary.
	ExternalName(internalName string) string
	InternalName(externalName string) string
}
