package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	markets "github.com/ZephyrTrading/mango-v3-service/internal/domain/entity/markets"
	interfaces "github.com/ZephyrTrading/mango-v3-service/internal/domain/interfaces"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ErrMarketNotFound reports an unknown market name. The HTTP layer maps it
// to a client error, not a server error.
var ErrMarketNotFound = errors.New("market not found")

const defaultFuturesSuffix = "-PERP"

// groupFile is the on-disk shape of a group configuration.
type groupFile struct {
	Group         string            `yaml:"group"`
	FuturesSuffix string            `yaml:"futures_suffix"`
	QuoteAliases  map[string]string `yaml:"quote_aliases"`
	Markets       []marketEntry     `yaml:"markets"`
}

type marketEntry struct {
	Name          string `yaml:"name"`
	Address       string `yaml:"address"`
	BaseSymbol    string `yaml:"base_symbol"`
	QuoteSymbol   string `yaml:"quote_symbol"`
	BaseDecimals  int32  `yaml:"base_decimals"`
	QuoteDecimals int32  `yaml:"quote_decimals"`
	BaseLotSize   int64  `yaml:"base_lot_size"`
	QuoteLotSize  int64  `yaml:"quote_lot_size"`
	TickSize      string `yaml:"tick_size"`
	MinOrderSize  string `yaml:"min_order_size"`
}

// Catalog resolves market names against a loaded group configuration.
// It is immutable after Load and safe for concurrent use.
type Catalog struct {
	group         string
	futuresSuffix string
	toExternal    map[string]string // internal alias -> external symbol
	toInternal    map[string]string // external symbol -> internal alias
	markets       []markets.MarketConfig
	byName        map[string]int // internal name -> index into markets
}

var _ interfaces.MarketCatalog = (*Catalog)(nil)

// Load reads and validates a YAML group configuration file.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read group config: %w", err)
	}
	var file groupFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse group config: %w", err)
	}
	return build(file)
}

func build(file groupFile) (*Catalog, error) {
	if len(file.Markets) == 0 {
		return nil, errors.New("group config has no markets")
	}
	suffix := file.FuturesSuffix
	if suffix == "" {
		suffix = defaultFuturesSuffix
	}

	c := &Catalog{
		group:         file.Group,
		futuresSuffix: suffix,
		toExternal:    make(map[string]string, len(file.QuoteAliases)),
		toInternal:    make(map[string]string, len(file.QuoteAliases)),
		byName:        make(map[string]int, len(file.Markets)),
	}
	for internal, external := range file.QuoteAliases {
		if _, dup := c.toInternal[external]; dup {
			return nil, fmt.Errorf("quote alias %q maps to more than one internal symbol", external)
		}
		c.toExternal[internal] = external
		c.toInternal[external] = internal
	}

	for _, entry := range file.Markets {
		cfg, err := entry.toConfig(suffix)
		if err != nil {
			return nil, fmt.Errorf("market %q: %w", entry.Name, err)
		}
		if _, dup := c.byName[cfg.Name]; dup {
			return nil, fmt.Errorf("duplicate market %q", cfg.Name)
		}
		c.byName[cfg.Name] = len(c.markets)
		c.markets = append(c.markets, cfg)
	}
	return c, nil
}

func (e marketEntry) toConfig(futuresSuffix string) (markets.MarketConfig, error) {
	var zero markets.MarketConfig
	if e.Name == "" {
		return zero, errors.New("name is required")
	}
	if e.Address == "" {
		return zero, errors.New("address is required")
	}
	if e.BaseDecimals < 0 || e.QuoteDecimals < 0 {
		return zero, errors.New("decimals must not be negative")
	}
	if e.BaseLotSize <= 0 || e.QuoteLotSize <= 0 {
		return zero, errors.New("lot sizes must be positive")
	}

	kind := markets.KindSpot
	if strings.HasSuffix(e.Name, futuresSuffix) {
		kind = markets.KindFutures
	}

	cfg := markets.MarketConfig{
		Name:          e.Name,
		BaseSymbol:    e.BaseSymbol,
		QuoteSymbol:   e.QuoteSymbol,
		BaseDecimals:  e.BaseDecimals,
		QuoteDecimals: e.QuoteDecimals,
		BaseLotSize:   e.BaseLotSize,
		QuoteLotSize:  e.QuoteLotSize,
		Address:       e.Address,
		Kind:          kind,
	}

	// Spot increments come straight from the catalog entry.
	if kind == markets.KindSpot {
		tick, err := decimal.NewFromString(e.TickSize)
		if err != nil {
			return zero, fmt.Errorf("tick_size: %w", err)
		}
		minOrder, err := decimal.NewFromString(e.MinOrderSize)
		if err != nil {
			return zero, fmt.Errorf("min_order_size: %w", err)
		}
		cfg.TickSize = tick
		cfg.MinOrderSize = minOrder
	}
	return cfg, nil
}

// Group returns the configured group identifier.
func (c *Catalog) Group() string { return c.group }

// List returns all markets in catalog order.
func (c *Catalog) List() []markets.MarketConfig {
	out := make([]markets.MarketConfig, len(c.markets))
	copy(out, c.markets)
	return out
}

// Find resolves an external market name to its configuration.
func (c *Catalog) Find(externalName string) (markets.MarketConfig, error) {
	idx, ok := c.byName[c.InternalName(externalName)]
	if !ok {
		return markets.MarketConfig{}, fmt.Errorf("%w: %s", ErrMarketNotFound, externalName)
	}
	return c.markets[idx], nil
}

// ExternalName translates an internal market name to its external form by
// mapping aliased quote symbols, e.g. BTC/WUSDC -> BTC/USDC. Futures names
// carry no quote segment and pass through unchanged.
func (c *Catalog) ExternalName(internalName string) string {
	return mapSegments(internalName, c.toExternal)
}

// InternalName is the inverse of ExternalName.
func (c *Catalog) InternalName(externalName string) string {
	return mapSegments(externalName, c.toInternal)
}

func mapSegments(name string, aliases map[string]string) string {
	if len(aliases) == 0 {
		return name
	}
	segments := strings.Split(name, "/")
	for i, s := range segments {
		if mapped, ok := aliases[s]; ok {
			segments[i] = mapped
		}
	}
	return strings.Join(segments, "/")
}
