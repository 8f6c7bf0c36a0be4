package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	markets "github.com/ZephyrTrading/mango-v3-service/internal/domain/entity/markets"

	"github.com/stretchr/testify/require"
)

const testGroup = `
group: mainnet.1
futures_suffix: "-PERP"
quote_aliases:
  WUSDC: USDC
markets:
  - name: BTC-PERP
    address: perpaddr111
    base_symbol: BTC
    quote_symbol: WUSDC
    base_decimals: 6
    quote_decimals: 6
    base_lot_size: 100
    quote_lot_size: 10
  - name: BTC/WUSDC
    address: spotaddr111
    base_symbol: BTC
    quote_symbol: WUSDC
    base_decimals: 6
    quote_decimals: 6
    base_lot_size: 100
    quote_lot_size: 10
    tick_size: "0.1"
    min_order_size: "0.0001"
`

func writeGroup(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "group.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	c, err := Load(writeGroup(t, testGroup))
	require.NoError(t, err)
	require.Equal(t, "mainnet.1", c.Group())
	require.Len(t, c.List(), 2)
}

func TestKindFromSuffix(t *testing.T) {
	c, err := Load(writeGroup(t, testGroup))
	require.NoError(t, err)

	perp, err := c.Find("BTC-PERP")
	require.NoError(t, err)
	require.Equal(t, markets.KindFutures, perp.Kind)

	spot, err := c.Find("BTC/USDC")
	require.NoError(t, err)
	require.Equal(t, markets.KindSpot, spot.Kind)
	require.Equal(t, "BTC/WUSDC", spot.Name)
	require.Equal(t, "0.1", spot.TickSize.String())
	require.Equal(t, "0.0001", spot.MinOrderSize.String())
}

func TestFindUnknownMarket(t *testing.T) {
	c, err := Load(writeGroup(t, testGroup))
	require.NoError(t, err)

	_, err = c.Find("DOGE-PERP")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMarketNotFound))
}

func TestNameMappingIsBijective(t *testing.T) {
	c, err := Load(writeGroup(t, testGroup))
	require.NoError(t, err)

	for _, m := range c.List() {
		external := c.ExternalName(m.Name)
		require.Equal(t, m.Name, c.InternalName(external), "round trip for %s", m.Name)
	}

	require.Equal(t, "BTC/USDC", c.ExternalName("BTC/WUSDC"))
	require.Equal(t, "BTC/WUSDC", c.InternalName("BTC/USDC"))
	// Futures names carry no aliased segment and pass through unchanged.
	require.Equal(t, "BTC-PERP", c.ExternalName("BTC-PERP"))
}

func TestLoadRejectsSpotWithoutIncrements(t *testing.T) {
	broken := `
group: mainnet.1
markets:
  - name: BTC/WUSDC
    address: spotaddr111
    base_symbol: BTC
    quote_symbol: WUSDC
    base_decimals: 6
    quote_decimals: 6
    base_lot_size: 100
    quote_lot_size: 10
`
	_, err := Load(writeGroup(t, broken))
	require.Error(t, err)
}

func TestLoadRejectsDuplicateMarkets(t *testing.T) {
	dup := testGroup + `
  - name: BTC-PERP
    address: perpaddr222
    base_symbol: BTC
    quote_symbol: WUSDC
    base_decimals: 6
    quote_decimals: 6
    base_lot_size: 100
    quote_lot_size: 10
`
	_, err := Load(writeGroup(t, dup))
	require.Error(t, err)
}
