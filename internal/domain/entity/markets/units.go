package markets

import "github.com/shopspring/decimal"

// Unit conversion between the chain's integer lot representation and
// human-decimal increments. All arithmetic is exact decimal math; binary
// floating point would introduce rounding artifacts in the increments.

// SizeIncrement returns the minimum order size step for a market.
// Spot markets report it directly via the catalog; futures derive it as
// baseLotSize / 10^baseDecimals.
func SizeIncrement(kind MarketKind, baseLotSize int64, baseDecimals int32, catalogMinOrder decimal.Decimal) decimal.Decimal {
	if kind == KindSpot {
		return catalogMinOrder
	}
	return decimal.New(baseLotSize, -baseDecimals)
}

// PriceIncrement returns the minimum price step in quote-per-base units.
// Spot markets report it directly via the catalog; futures derive it as
// (quoteLotSize / baseLotSize) * 10^(baseDecimals - quoteDecimals).
func PriceIncrement(kind MarketKind, baseDecimals, quoteDecimals int32, baseLotSize, quoteLotSize int64, catalogTick decimal.Decimal) decimal.Decimal {
	if kind == KindSpot {
		return catalogTick
	}
	return decimal.New(quoteLotSize, baseDecimals-quoteDecimals).Div(decimal.New(baseLotSize, 0))
}
