package history

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	interfaces "github.com/ZephyrTrading/mango-v3-service/internal/domain/interfaces"

	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.Handler) (*httptest.Server, *Client) {
	server := httptest.NewServer(handler)
	return server, NewClient(server.URL, time.Second, nil)
}

func TestStats(t *testing.T) {
	server, client := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/stats/BTC-PERP", r.URL.Path)
		w.Write([]byte(`{"s":"ok","quoteVolume24h":1234.5,"volumeUsd24h":1200,"change1h":0.01,"change24h":-0.02,"changeBod":0.005}`))
	}))
	defer server.Close()

	stats, err := client.Stats(context.Background(), "BTC-PERP")
	require.NoError(t, err)
	require.NotNil(t, stats)
	require.Equal(t, "1234.5", stats.QuoteVolume24h.String())
	require.Equal(t, "-0.02", stats.Change24h.String())
}

func TestStatsSentinel(t *testing.T) {
	server, client := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"s":"error"}`))
	}))
	defer server.Close()

	stats, err := client.Stats(context.Background(), "BTC/WUSDC")
	require.NoError(t, err)
	require.Nil(t, stats)
}

func TestTrades(t *testing.T) {
	server, client := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/trades/address/perpaddr111", r.URL.Path)
		w.Write([]byte(`{"s":"ok","data":[
			{"id":"9","price":50100.5,"side":"buy","size":0.2,"time":1640995200000},
			{"id":"8","price":50000,"side":"sell","size":0.1,"time":1640995140000}
		]}`))
	}))
	defer server.Close()

	trades, err := client.Trades(context.Background(), "perpaddr111")
	require.NoError(t, err)
	require.Len(t, trades, 2)
	// Upstream order (most recent first) is preserved.
	require.Equal(t, "9", trades[0].ID)
	require.Equal(t, "50100.5", trades[0].Price.String())
	require.Equal(t, int64(1640995200), trades[0].Timestamp.Unix())
}

func TestTradesSentinel(t *testing.T) {
	server, client := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"s":"error"}`))
	}))
	defer server.Close()

	trades, err := client.Trades(context.Background(), "perpaddr111")
	require.NoError(t, err)
	require.NotNil(t, trades)
	require.Empty(t, trades)
}

func TestCandlesFloorsToMinuteBoundaries(t *testing.T) {
	var gotQuery map[string]string
	server, client := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tv/history", r.URL.Path)
		q := r.URL.Query()
		gotQuery = map[string]string{
			"symbol":     q.Get("symbol"),
			"resolution": q.Get("resolution"),
			"from":       q.Get("from"),
			"to":         q.Get("to"),
		}
		w.Write([]byte(`{"s":"ok","t":[60],"o":[1],"h":[2],"l":[0.5],"c":[1.5],"v":[10]}`))
	}))
	defer server.Close()

	_, err := client.Candles(context.Background(), interfaces.CandleQuery{
		Symbol:     "BTC-PERP",
		Resolution: 60,
		From:       time.Unix(61, 0),
		To:         time.Unix(125, 0),
	})
	require.NoError(t, err)
	require.Equal(t, "BTC-PERP", gotQuery["symbol"])
	require.Equal(t, "60", gotQuery["resolution"])
	require.Equal(t, "60", gotQuery["from"])
	require.Equal(t, "120", gotQuery["to"])
}

func TestCandlesRawSkipsAlignment(t *testing.T) {
	var gotQuery map[string]string
	server, client := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"resolution": q.Get("resolution"),
			"from":       q.Get("from"),
			"to":         q.Get("to"),
		}
		w.Write([]byte(`{"s":"ok","t":[],"o":[],"h":[],"l":[],"c":[],"v":[]}`))
	}))
	defer server.Close()

	_, err := client.Candles(context.Background(), interfaces.CandleQuery{
		Symbol:     "BTC-PERP",
		Resolution: 10,
		From:       time.Unix(61, 0),
		To:         time.Unix(125, 0),
		Raw:        true,
	})
	require.NoError(t, err)
	require.Equal(t, "10", gotQuery["resolution"])
	require.Equal(t, "61", gotQuery["from"])
	require.Equal(t, "125", gotQuery["to"])
}

func TestCandlesClampsSubMinuteResolution(t *testing.T) {
	var gotResolution string
	server, client := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotResolution = r.URL.Query().Get("resolution")
		w.Write([]byte(`{"s":"ok","t":[],"o":[],"h":[],"l":[],"c":[],"v":[]}`))
	}))
	defer server.Close()

	_, err := client.Candles(context.Background(), interfaces.CandleQuery{
		Symbol:     "BTC-PERP",
		Resolution: 10,
		From:       time.Unix(0, 0),
		To:         time.Unix(600, 0),
	})
	require.NoError(t, err)
	require.Equal(t, "60", gotResolution)
}

func TestCandlesParsesAndSorts(t *testing.T) {
	server, client := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"s":"ok","t":[120,60],"o":[2,1],"h":[3,2],"l":[1.5,0.5],"c":[2.5,1.5],"v":[20,10]}`))
	}))
	defer server.Close()

	candles, err := client.Candles(context.Background(), interfaces.CandleQuery{
		Symbol:     "BTC-PERP",
		Resolution: 60,
		From:       time.Unix(60, 0),
		To:         time.Unix(180, 0),
	})
	require.NoError(t, err)
	require.Len(t, candles, 2)
	require.Equal(t, int64(60), candles[0].Time)
	require.Equal(t, int64(120), candles[1].Time)
	require.Equal(t, "1.5", candles[0].Close.String())
}

func TestCandlesSentinel(t *testing.T) {
	server, client := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"s":"error"}`))
	}))
	defer server.Close()

	candles, err := client.Candles(context.Background(), interfaces.CandleQuery{
		Symbol:     "BTC-PERP",
		Resolution: 60,
		From:       time.Unix(0, 0),
		To:         time.Unix(60, 0),
	})
	require.NoError(t, err)
	require.NotNil(t, candles)
	require.Empty(t, candles)
}

func TestCandlesRejectsUnevenArrays(t *testing.T) {
	server, client := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"s":"ok","t":[60,120],"o":[1],"h":[2],"l":[0.5],"c":[1.5],"v":[10]}`))
	}))
	defer server.Close()

	_, err := client.Candles(context.Background(), interfaces.CandleQuery{
		Symbol:     "BTC-PERP",
		Resolution: 60,
		From:       time.Unix(0, 0),
		To:         time.Unix(120, 0),
	})
	require.Error(t, err)
}

func TestHTTPErrorPropagates(t *testing.T) {
	server, client := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := client.Stats(context.Background(), "BTC-PERP")
	require.Error(t, err)

	_, err = client.Trades(context.Background(), "perpaddr111")
	require.Error(t, err)
}
