// @title           Mango Markets Data API
// @version         1.0
// @description     Exchange-style REST API over on-chain market data
// @BasePath        /api

package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	appmarkets "github.com/ZephyrTrading/mango-v3-service/internal/application/service/markets"
	domain "github.com/ZephyrTrading/mango-v3-service/internal/domain/entity/markets"
	interfaces "github.com/ZephyrTrading/mango-v3-service/internal/domain/interfaces"
	"github.com/ZephyrTrading/mango-v3-service/internal/infrastructure/catalog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const marketsBasePath = "/api/markets"

func init() {
	// Price/size fields go on the wire as JSON numbers, matching the
	// exchange-style schema the API mimics.
	decimal.MarshalJSONWithoutQuotes = true
}

type Handler struct {
	router     *gin.Engine
	aggregator *appmarkets.Service
	catalog    interfaces.MarketCatalog
	orders     interfaces.OrderSource
	history    interfaces.HistoryGateway
	cache      *redis.Client
	cacheTTL   time.Duration
	logger     *logrus.Logger
}

func NewHandler(aggregator *appmarkets.Service, cat interfaces.MarketCatalog, orders interfaces.OrderSource, history interfaces.HistoryGateway, cache *redis.Client, cacheTTL time.Duration, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	router := gin.New()
	router.Use(gin.Recovery())

	h := &Handler{
		router:     router,
		aggregator: aggregator,
		catalog:    cat,
		orders:     orders,
		history:    history,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
	h.registerRoutes()
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.Use(h.requestLogger())
	h.router.GET("/api/health", h.health)

	md := h.router.Group(marketsBasePath)
	{
		md.GET("", h.getMarkets)
		md.GET("/:market_name", h.getMarket)
		md.GET("/:market_name/orderbook", h.getOrderBook)
		md.GET("/:market_name/trades", h.getTrades)

		candles := md.Group("/:market_name/candles")
		if h.cache != nil {
			// Candle queries are floored to minute boundaries upstream,
			// so a short TTL cache never serves a stale bucket shape.
			// Markets, orderbook and trades are always computed fresh.
			candles.Use(h.cacheMiddleware())
		}
		candles.GET("", h.getCandles)
	}
}

// Envelope helpers

type fieldError struct {
	Msg   string `json:"msg"`
	Param string `json:"param,omitempty"`
}

func writeResult(c *gin.Context, result any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

func writeErrors(c *gin.Context, status int, errs ...fieldError) {
	c.JSON(status, gin.H{"success": false, "errors": errs})
}

// writeUpstreamError maps collaborator failures: unknown market names are
// client input problems, everything else is a server-side upstream failure.
func (h *Handler) writeUpstreamError(c *gin.Context, err error) {
	if errors.Is(err, catalog.ErrMarketNotFound) {
		writeErrors(c, http.StatusBadRequest, fieldError{Msg: err.Error(), Param: "market_name"})
		return
	}
	h.logger.WithError(err).WithField("path", c.FullPath()).Error("upstream failure")
	writeErrors(c, http.StatusInternalServerError, fieldError{Msg: err.Error()})
}

// health reports process liveness
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	writeResult(c, gin.H{"status": "ok"})
}

// marketError is the per-market failure marker inside an aggregate list.
type marketError struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// getMarkets aggregates all markets
// @Summary      List markets
// @Description  Aggregate live book, last trade and statistics for every market
// @Tags         markets
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /markets [get]
func (h *Handler) getMarkets(c *gin.Context) {
	results := h.aggregator.AggregateAll(c.Request.Context())
	out := make([]any, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			out = append(out, marketError{Name: r.Name, Error: r.Err.Error()})
			continue
		}
		out = append(out, r.Market)
	}
	writeResult(c, out)
}

// getMarket aggregates a single market
// @Summary      Get market
// @Description  Aggregate one market by external name
// @Tags         markets
// @Produce      json
// @Param        market_name  path      string  true  "Market name"
// @Success      200          {object}  map[string]interface{}
// @Failure      400          {object}  map[string]interface{}
// @Failure      500          {object}  map[string]interface{}
// @Router       /markets/{market_name} [get]
func (h *Handler) getMarket(c *gin.Context) {
	market, err := h.aggregator.AggregateOne(c.Request.Context(), c.Param("market_name"))
	if err != nil {
		h.writeUpstreamError(c, err)
		return
	}
	writeResult(c, []*domain.NormalizedMarket{market})
}

// getOrderBook returns the depth-limited two-sided book
// @Summary      Get order book
// @Tags         markets
// @Produce      json
// @Param        market_name  path      string  true   "Market name"
// @Param        depth        query     int     false  "Book depth [20,100], default 20"
// @Success      200          {object}  map[string]interface{}
// @Failure      400          {object}  map[string]interface{}
// @Failure      500          {object}  map[string]interface{}
// @Router       /markets/{market_name}/orderbook [get]
func (h *Handler) getOrderBook(c *gin.Context) {
	cfg, err := h.catalog.Find(c.Param("market_name"))
	if err != nil {
		h.writeUpstreamError(c, err)
		return
	}
	depth, ferr := parseDepth(c)
	if ferr != nil {
		writeErrors(c, http.StatusBadRequest, *ferr)
		return
	}
	orders, err := h.orders.Orders(c.Request.Context(), cfg.Name)
	if err != nil {
		h.writeUpstreamError(c, err)
		return
	}
	writeResult(c, domain.BuildBook(orders, depth))
}

// getTrades returns recent trades for a market
// @Summary      Get trades
// @Tags         markets
// @Produce      json
// @Param        market_name  path      string  true  "Market name"
// @Success      200          {object}  map[string]interface{}
// @Failure      400          {object}  map[string]interface{}
// @Failure      500          {object}  map[string]interface{}
// @Router       /markets/{market_name}/trades [get]
func (h *Handler) getTrades(c *gin.Context) {
	cfg, err := h.catalog.Find(c.Param("market_name"))
	if err != nil {
		h.writeUpstreamError(c, err)
		return
	}
	trades, err := h.history.Trades(c.Request.Context(), cfg.Address)
	if err != nil {
		h.writeUpstreamError(c, err)
		return
	}
	writeResult(c, trades)
}

// getCandles returns OHLCV buckets for a market
// @Summary      Get candles
// @Tags         markets
// @Produce      json
// @Param        market_name  path      string  true  "Market name"
// @Param        resolution   query     int     true  "Bucket resolution in seconds"
// @Param        start_time   query     int     true  "Range start, epoch seconds"
// @Param        end_time     query     int     true  "Range end, epoch seconds"
// @Success      200          {object}  map[string]interface{}
// @Failure      400          {object}  map[string]interface{}
// @Failure      500          {object}  map[string]interface{}
// @Router       /markets/{market_name}/candles [get]
func (h *Handler) getCandles(c *gin.Context) {
	cfg, err := h.catalog.Find(c.Param("market_name"))
	if err != nil {
		h.writeUpstreamError(c, err)
		return
	}
	resolution, ferr := parseInt64Query(c, "resolution")
	if ferr == nil && resolution <= 0 {
		ferr = &fieldError{Msg: "resolution must be positive", Param: "resolution"}
	}
	if ferr != nil {
		writeErrors(c, http.StatusBadRequest, *ferr)
		return
	}
	start, ferr := parseInt64Query(c, "start_time")
	if ferr != nil {
		writeErrors(c, http.StatusBadRequest, *ferr)
		return
	}
	end, ferr := parseInt64Query(c, "end_time")
	if ferr != nil {
		writeErrors(c, http.StatusBadRequest, *ferr)
		return
	}

	candles, err := h.history.Candles(c.Request.Context(), interfaces.CandleQuery{
		Symbol:     cfg.Name,
		Resolution: resolution,
		From:       time.Unix(start, 0).UTC(),
		To:         time.Unix(end, 0).UTC(),
	})
	if err != nil {
		h.writeUpstreamError(c, err)
		return
	}
	writeResult(c, candles)
}

// Query helpers

func parseDepth(c *gin.Context) (int, *fieldError) {
	value := c.Query("depth")
	if value == "" {
		return domain.DefaultBookDepth, nil
	}
	depth, err := strconv.Atoi(value)
	if err != nil {
		return 0, &fieldError{Msg: "depth must be an integer", Param: "depth"}
	}
	if depth < domain.MinBookDepth || depth > domain.MaxBookDepth {
		return 0, &fieldError{
			Msg:   fmt.Sprintf("depth must be between %d and %d", domain.MinBookDepth, domain.MaxBookDepth),
			Param: "depth",
		}
	}
	return depth, nil
}

func parseInt64Query(c *gin.Context, key string) (int64, *fieldError) {
	value := c.Query(key)
	if value == "" {
		return 0, &fieldError{Msg: key + " query param required", Param: key}
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, &fieldError{Msg: key + " must be an integer", Param: key}
	}
	return parsed, nil
}

// Middleware

// requestLogger tags every request with an id and logs the outcome.
func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Writer.Header().Set("X-Request-Id", requestID)

		c.Next()

		h.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		}).Info("request")
	}
}

// cacheMiddleware caches GET responses in Redis.
func (h *Handler) cacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.cache == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := h.cacheKey(c)
		ctx := c.Request.Context()

		if cached, err := h.cache.Get(ctx, key).Result(); err == nil {
			c.Data(http.StatusOK, "application/json", []byte(cached))
			c.Abort()
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: c.Writer,
			status:         http.StatusOK,
			body:           &bytes.Buffer{},
		}
		c.Writer = recorder

		c.Next()

		if recorder.status >= 200 && recorder.status < 300 && recorder.body.Len() > 0 {
			_ = h.cache.Set(ctx, key, recorder.body.Bytes(), h.cacheTTL).Err()
		}
	}
}

type responseRecorder struct {
	gin.ResponseWriter
	body   *bytes.Buffer
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(data []byte) (int, error) {
	if len(data) > 0 {
		r.body.Write(data)
	}
	return r.ResponseWriter.Write(data)
}

func (h *Handler) cacheKey(c *gin.Context) string {
	return fmt.Sprintf("cache:%s:%s?%s", c.Request.Method, c.Request.URL.Path, c.Request.URL.RawQuery)
}
