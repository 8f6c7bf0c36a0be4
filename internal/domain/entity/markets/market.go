package markets

import (
	"github.com/shopspring/decimal"
)

// MarketKind tags a market as spot or futures. Increment derivation is
// selected by this tag, never by inspecting the upstream payload shape.
type MarketKind string

const (
	KindSpot    MarketKind = "spot"
	KindFutures MarketKind = "futures"
)

func (k MarketKind) IsValid() bool {
	return k == KindSpot || k == KindFutures
}

// MarketConfig is the on-chain configuration of one market as resolved by
// the catalog. Names are internal (chain-side); the catalog owns the
// external<->internal translation.
type MarketConfig struct {
	Name          string
	BaseSymbol    string
	QuoteSymbol   string
	BaseDecimals  int32
	QuoteDecimals int32
	BaseLotSize   int64
	QuoteLotSize  int64
	Address       string
	Kind          MarketKind

	// Spot markets report their increments directly; futures derive them
	// from lot arithmetic (see units.go).
	TickSize     decimal.Decimal
	MinOrderSize decimal.Decimal
}

// MarketStats holds the 24h/1h/bod summary statistics reported by the
// historical indexing service. Every field is optional: nil means the
// upstream did not provide a value, which is distinct from zero.
type MarketStats struct {
	QuoteVolume24h *decimal.Decimal
	VolumeUsd24h   *decimal.Decimal
	Change1h       *decimal.Decimal
	Change24h      *decimal.Decimal
	ChangeBod      *decimal.Decimal
}

// NormalizedMarket is the unified, source-agnostic record for one market:
// catalog metadata, best quotes from the live book, last trade price and
// summary statistics. Nullable fields without omitempty render as JSON
// null when absent; volume/change statistics are omitted entirely when
// the upstream did not index them.
type NormalizedMarket struct {
	Name           string           `json:"name"`
	BaseCurrency   string           `json:"baseCurrency"`
	QuoteCurrency  string           `json:"quoteCurrency"`
	Type           MarketKind       `json:"type"`
	Address        string           `json:"address"`
	Bid            *decimal.Decimal `json:"bid"`
	Ask            *decimal.Decimal `json:"ask"`
	Last           *decimal.Decimal `json:"last"`
	Price          *decimal.Decimal `json:"price"`
	PriceIncrement decimal.Decimal  `json:"priceIncrement"`
	SizeIncrement  decimal.Decimal  `json:"sizeIncrement"`
	MinProvideSize decimal.Decimal  `json:"minProvideSize"`
	Change1h       *decimal.Decimal `json:"change1h,omitempty"`
	Change24h      *decimal.Decimal `json:"change24h,omitempty"`
	ChangeBod      *decimal.Decimal `json:"changeBod,omitempty"`
	QuoteVolume24h *decimal.Decimal `json:"quoteVolume24h,omitempty"`
	VolumeUsd24h   *decimal.Decimal `json:"volumeUsd24h,omitempty"`
}
