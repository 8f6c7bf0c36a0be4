package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	markets "github.com/ZephyrTrading/mango-v3-service/internal/domain/entity/markets"
	interfaces "github.com/ZephyrTrading/mango-v3-service/internal/domain/interfaces"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	defaultTimeout = 10 * time.Second

	// statusError marks the upstream's sentinel body: an HTTP 200 whose
	// payload reports a per-market indexing gap. It is absorbed into an
	// empty result, never surfaced as an error, so one market's gap can
	// not fail an aggregate response.
	statusError = "error"

	// minResolution is the upstream's caching granularity in seconds.
	minResolution = int64(60)
)

// Client is a typed accessor over the historical indexing HTTP service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

var _ interfaces.HistoryGateway = (*Client)(nil)

// NewClient builds a gateway for the service rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type statsResponse struct {
	Status         string           `json:"s"`
	QuoteVolume24h *decimal.Decimal `json:"quoteVolume24h"`
	VolumeUsd24h   *decimal.Decimal `json:"volumeUsd24h"`
	Change1h       *decimal.Decimal `json:"change1h"`
	Change24h      *decimal.Decimal `json:"change24h"`
	ChangeBod      *decimal.Decimal `json:"changeBod"`
}

type tradesResponse struct {
	Status string        `json:"s"`
	Data   []tradeRecord `json:"data"`
}

type tradeRecord struct {
	ID    string          `json:"id"`
	Price decimal.Decimal `json:"price"`
	Side  markets.Side    `json:"side"`
	Size  decimal.Decimal `json:"size"`
	Time  int64           `json:"time"` // epoch milliseconds
}

// candlesResponse is the TradingView-UDF history shape: parallel arrays,
// one entry per bucket.
type candlesResponse struct {
	Status string            `json:"s"`
	Time   []int64           `json:"t"`
	Open   []decimal.Decimal `json:"o"`
	High   []decimal.Decimal `json:"h"`
	Low    []decimal.Decimal `json:"l"`
	Close  []decimal.Decimal `json:"c"`
	Volume []decimal.Decimal `json:"v"`
}

// Stats fetches 24h/1h/bod summary statistics for one internal market
// name. A sentinel body yields (nil, nil).
func (c *Client) Stats(ctx context.Context, internalName string) (*markets.MarketStats, error) {
	var resp statsResponse
	if err := c.get(ctx, "/stats/"+url.PathEscape(internalName), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Status == statusError {
		c.logger.WithField("market", internalName).Debug("history: stats not indexed")
		return nil, nil
	}
	return &markets.MarketStats{
		QuoteVolume24h: resp.QuoteVolume24h,
		VolumeUsd24h:   resp.VolumeUsd24h,
		Change1h:       resp.Change1h,
		Change24h:      resp.Change24h,
		ChangeBod:      resp.ChangeBod,
	}, nil
}

// Trades fetches recent trades by on-chain market address, most recent
// first as returned upstream. A sentinel body yields an empty slice.
func (c *Client) Trades(ctx context.Context, marketAddress string) ([]markets.Trade, error) {
	var resp tradesResponse
	if err := c.get(ctx, "/trades/address/"+url.PathEscape(marketAddress), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Status == statusError {
		c.logger.WithField("address", marketAddress).Debug("history: trades not indexed")
		return []markets.Trade{}, nil
	}
	trades := make([]markets.Trade, 0, len(resp.Data))
	for _, r := range resp.Data {
		trades = append(trades, markets.Trade{
			ID:        r.ID,
			Price:     r.Price,
			Side:      r.Side,
			Size:      r.Size,
			Timestamp: time.UnixMilli(r.Time).UTC(),
		})
	}
	return trades, nil
}

// Candles fetches OHLCV buckets for the query range, ascending by time.
// A sentinel body yields an empty slice.
func (c *Client) Candles(ctx context.Context, q interfaces.CandleQuery) ([]markets.Candle, error) {
	resolution, from, to := alignQuery(q)

	params := url.Values{}
	params.Set("symbol", q.Symbol)
	params.Set("resolution", strconv.FormatInt(resolution, 10))
	params.Set("from", strconv.FormatInt(from, 10))
	params.Set("to", strconv.FormatInt(to, 10))

	var resp candlesResponse
	if err := c.get(ctx, "/tv/history", params, &resp); err != nil {
		return nil, err
	}
	if resp.Status == statusError {
		c.logger.WithField("symbol", q.Symbol).Debug("history: candles not indexed")
		return []markets.Candle{}, nil
	}

	n := len(resp.Time)
	if len(resp.Open) != n || len(resp.High) != n || len(resp.Low) != n ||
		len(resp.Close) != n || len(resp.Volume) != n {
		return nil, fmt.Errorf("history: candle response arrays are uneven for %s", q.Symbol)
	}
	candles := make([]markets.Candle, 0, n)
	for i := 0; i < n; i++ {
		candles = append(candles, markets.Candle{
			Time:   resp.Time[i],
			Open:   resp.Open[i],
			High:   resp.High[i],
			Low:    resp.Low[i],
			Close:  resp.Close[i],
			Volume: resp.Volume[i],
		})
	}
	sort.Slice(candles, func(i, j int) bool { return candles[i].Time < candles[j].Time })
	return candles, nil
}

// alignQuery floors the epoch boundaries to whole minutes and clamps the
// resolution to the upstream's one-minute granularity. Sub-minute
// timestamps would bust the upstream cache for no extra data. Raw queries
// skip the alignment.
func alignQuery(q interfaces.CandleQuery) (resolution, from, to int64) {
	resolution = q.Resolution
	from = q.From.Unix()
	to = q.To.Unix()
	if q.Raw {
		return resolution, from, to
	}
	if resolution < minResolution {
		resolution = minResolution
	}
	from -= from % 60
	to -= to % 60
	return resolution, from, to
}

func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("history: build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("history: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("history: http status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("history: decode response: %w", err)
	}
	return nil
}
