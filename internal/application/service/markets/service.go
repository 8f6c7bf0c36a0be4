package markets

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/ZephyrTrading/mango-v3-service/internal/domain/entity/markets"
	interfaces "github.com/ZephyrTrading/mango-v3-service/internal/domain/interfaces"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Service is the market-detail aggregation engine. Per market it fans out
// to the live order snapshot, the trade history and the summary statistics,
// reconciles the three into one NormalizedMarket and degrades gracefully
// when an upstream has no data for the market.
type Service struct {
	catalog interfaces.MarketCatalog
	orders  interfaces.OrderSource
	history interfaces.HistoryGateway
	logger  *logrus.Logger
}

func NewService(catalog interfaces.MarketCatalog, orders interfaces.OrderSource, history interfaces.HistoryGateway, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{
		catalog: catalog,
		orders:  orders,
		history: history,
		logger:  logger,
	}
}

// MarketResult pairs one market's normalized record with its isolated
// failure. Exactly one of Market and Err is set.
type MarketResult struct {
	Name   string
	Market *domain.NormalizedMarket
	Err    error
}

// AggregateOne builds the normalized record for a single external market
// name. An unknown name surfaces the catalog's not-found error.
func (s *Service) AggregateOne(ctx context.Context, externalName string) (*domain.NormalizedMarket, error) {
	cfg, err := s.catalog.Find(externalName)
	if err != nil {
		return nil, err
	}
	return s.aggregate(ctx, cfg)
}

// AggregateAll aggregates every market in the catalog in parallel. Results
// come back in catalog order, not completion order. A hard upstream
// failure for one market is recorded in its MarketResult and never aborts
// the siblings.
func (s *Service) AggregateAll(ctx context.Context) []MarketResult {
	cfgs := s.catalog.List()
	results := make([]MarketResult, len(cfgs))

	var wg sync.WaitGroup
	for i, cfg := range cfgs {
		wg.Add(1)
		go func(i int, cfg domain.MarketConfig) {
			defer wg.Done()
			name := s.catalog.ExternalName(cfg.Name)
			m, err := s.aggregate(ctx, cfg)
			if err != nil {
				s.logger.WithField("market", name).WithError(err).Warn("market aggregation failed")
			}
			results[i] = MarketResult{Name: name, Market: m, Err: err}
		}(i, cfg)
	}
	wg.Wait()
	return results
}

// aggregate runs the three sub-fetches for one market concurrently and
// joins them at a single barrier before merging. The first hard failure
// wins; sentinel/empty upstream results are not failures and reach the
// merge as absent data.
func (s *Service) aggregate(ctx context.Context, cfg domain.MarketConfig) (*domain.NormalizedMarket, error) {
	var (
		bestBid, bestAsk *decimal.Decimal
		stats            *domain.MarketStats
		trades           []domain.Trade
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		orders, err := s.orders.Orders(gctx, cfg.Name)
		if err != nil {
			return fmt.Errorf("orders: %w", err)
		}
		bestBid, bestAsk = domain.ReduceBest(orders)
		return nil
	})
	g.Go(func() error {
		st, err := s.history.Stats(gctx, cfg.Name)
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}
		stats = st
		return nil
	})
	g.Go(func() error {
		tr, err := s.history.Trades(gctx, cfg.Address)
		if err != nil {
			return fmt.Errorf("trades: %w", err)
		}
		trades = tr
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return s.merge(cfg, bestBid, bestAsk, stats, trades), nil
}

func (s *Service) merge(cfg domain.MarketConfig, bestBid, bestAsk *decimal.Decimal, stats *domain.MarketStats, trades []domain.Trade) *domain.NormalizedMarket {
	sizeIncrement := domain.SizeIncrement(cfg.Kind, cfg.BaseLotSize, cfg.BaseDecimals, cfg.MinOrderSize)
	m := &domain.NormalizedMarket{
		Name:           s.catalog.ExternalName(cfg.Name),
		BaseCurrency:   s.catalog.ExternalName(cfg.BaseSymbol),
		QuoteCurrency:  s.catalog.ExternalName(cfg.QuoteSymbol),
		Type:           cfg.Kind,
		Address:        cfg.Address,
		Bid:            bestBid,
		Ask:            bestAsk,
		PriceIncrement: domain.PriceIncrement(cfg.Kind, cfg.BaseDecimals, cfg.QuoteDecimals, cfg.BaseLotSize, cfg.QuoteLotSize, cfg.TickSize),
		SizeIncrement:  sizeIncrement,
		MinProvideSize: sizeIncrement,
	}

	// Trades come most recent first; an empty feed leaves last/price null.
	if len(trades) > 0 {
		last := trades[0].Price
		m.Last = &last
		m.Price = &last
	}

	if stats != nil {
		m.Change1h = stats.Change1h
		m.Change24h = stats.Change24h
		m.ChangeBod = stats.ChangeBod
		// The indexer reports literal zero volume for market kinds it does
		// not track (spot). Zero here means "not indexed", so it is
		// suppressed rather than shown as 0.
		m.QuoteVolume24h = dropZero(stats.QuoteVolume24h)
		m.VolumeUsd24h = dropZero(stats.VolumeUsd24h)
	}
	return m
}

func dropZero(v *decimal.Decimal) *decimal.Decimal {
	if v == nil || v.IsZero() {
		return nil
	}
	return v
}
