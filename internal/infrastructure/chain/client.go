package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	markets "github.com/ZephyrTrading/mango-v3-service/internal/domain/entity/markets"
	interfaces "github.com/ZephyrTrading/mango-v3-service/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

const defaultTimeout = 10 * time.Second

// Client reads live resting orders from the on-chain account reader.
// The reader owns account decoding; this side only sees flat order
// snapshots keyed by internal market name.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

var _ interfaces.OrderSource = (*Client)(nil)

// NewClient builds an order source for the reader rooted at baseURL.
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

// Orders fetches the current order snapshot, filtered to one internal
// market name when given, all markets otherwise.
func (c *Client) Orders(ctx context.Context, internalName string) ([]markets.OrderInfo, error) {
	endpoint := c.baseURL + "/orders"
	if internalName != "" {
		endpoint += "?market=" + url.QueryEscape(internalName)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("chain: build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chain: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("chain: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("chain: http status %d: %s", resp.StatusCode, string(body))
	}

	var orders []markets.OrderInfo
	if err := json.Unmarshal(body, &orders); err != nil {
		return nil, fmt.Errorf("chain: decode response: %w", err)
	}
	return orders, nil
}
