package eventservices

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/option-chain/src/eventmodels"
)

const sessionCookie = "nsit"

func readFixture(t *testing.T) []byte {
	body, err := os.ReadFile("testdata/nse_option_chain.json")
	require.NoError(t, err)
	return body
}

func newTestFetcher(t *testing.T, baseURL string, maxRetries int) *NSEOptionFetcher {
	fetcher, err := NewNSEOptionFetcher(NSEOptionFetcherConfig{
		BaseURL:       baseURL,
		Timeout:       5 * time.Second,
		MaxRetries:    maxRetries,
		BackoffFactor: time.Millisecond,
	})
	require.NoError(t, err)
	return fetcher
}

func TestNewNSEOptionFetcher(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		fetcher, err := NewNSEOptionFetcher(NSEOptionFetcherConfig{})
		require.NoError(t, err)

		assert.Equal(t, NSEOptionChainIndicesURL, fetcher.BaseURL)
		assert.Equal(t, 30*time.Second, fetcher.Timeout)
		assert.Equal(t, 3, fetcher.MaxRetries)
		assert.Equal(t, time.Second, fetcher.BackoffFactor)
		assert.Contains(t, fetcher.Headers.Get("User-Agent"), "Mozilla")
		assert.NotEmpty(t, fetcher.Headers.Get("Accept-Language"))
		assert.Empty(t, fetcher.Headers.Get("Accept-Encoding"))
	})

	t.Run("custom parameters", func(t *testing.T) {
		fetcher, err := NewNSEOptionFetcher(NSEOptionFetcherConfig{Timeout: 60 * time.Second, MaxRetries: 5})
		require.NoError(t, err)

		assert.Equal(t, 60*time.Second, fetcher.Timeout)
		assert.Equal(t, 5, fetcher.MaxRetries)
	})

	t.Run("non-positive retries use the default", func(t *testing.T) {
		fetcher, err := NewNSEOptionFetcher(NSEOptionFetcherConfig{MaxRetries: -1})
		require.NoError(t, err)

		assert.Equal(t, DefaultMaxRetries, fetcher.MaxRetries)
	})
}

func TestNSEOptionFetcher_FetchOptionChain(t *testing.T) {
	fixture := readFixture(t)

	t.Run("success", func(t *testing.T) {
		var calls int32
		var cookieOnSecondCall string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			n := atomic.AddInt32(&calls, 1)

			assert.Equal(t, "NIFTY", r.URL.Query().Get("symbol"))
			assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")

			if n == 1 {
				http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "session", Path: "/"})
			} else if c, err := r.Cookie(sessionCookie); err == nil {
				cookieOnSecondCall = c.Value
			}

			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.Write(fixture)
		}))
		defer server.Close()

		chain, err := newTestFetcher(t, server.URL, 3).FetchOptionChain(context.Background(), "nifty")
		require.NoError(t, err)

		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
		assert.Equal(t, "session", cookieOnSecondCall)
		assert.Equal(t, eventmodels.StockSymbol("NIFTY"), chain.Security)
		assert.Equal(t, 21250.0, chain.UnderlyingPrice)
		assert.Len(t, chain.Records, 4)
		assert.Len(t, chain.Expiries, 2)
		assert.Equal(t, []float64{21000, 21500, 23000}, chain.Strikes)
	})

	t.Run("request failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		baseURL := server.URL
		server.Close()

		chain, err := newTestFetcher(t, baseURL, 1).FetchOptionChain(context.Background(), "NIFTY")
		assert.Nil(t, chain)
		require.Error(t, err)

		var reqErr eventmodels.RequestError
		assert.True(t, errors.As(err, &reqErr))
	})

	t.Run("invalid response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"invalid": "data"}`))
		}))
		defer server.Close()

		chain, err := newTestFetcher(t, server.URL, 1).FetchOptionChain(context.Background(), "NIFTY")
		assert.Nil(t, chain)
		assert.ErrorIs(t, err, eventmodels.ErrInvalidResponse)
	})

	t.Run("malformed json", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"records": [`))
		}))
		defer server.Close()

		_, err := newTestFetcher(t, server.URL, 1).FetchOptionChain(context.Background(), "NIFTY")
		assert.ErrorIs(t, err, eventmodels.ErrInvalidResponse)
	})

	t.Run("non-json response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<html>Resource not found</html>`))
		}))
		defer server.Close()

		_, err := newTestFetcher(t, server.URL, 1).FetchOptionChain(context.Background(), "NIFTY")
		assert.ErrorIs(t, err, eventmodels.ErrNonJSONResponse)
	})

	t.Run("retries on service unavailable", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.Write(fixture)
		}))
		defer server.Close()

		chain, err := newTestFetcher(t, server.URL, 3).FetchOptionChain(context.Background(), "NIFTY")
		require.NoError(t, err)

		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
		assert.Len(t, chain.Records, 4)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := newTestFetcher(t, server.URL, 2).FetchOptionChain(context.Background(), "NIFTY")
		require.Error(t, err)

		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		_, err := newTestFetcher(t, server.URL, 3).FetchOptionChain(context.Background(), "NIFTY")
		require.Error(t, err)

		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("blank symbol", func(t *testing.T) {
		_, err := newTestFetcher(t, "http://127.0.0.1:0", 1).FetchOptionChain(context.Background(), "  ")
		assert.ErrorIs(t, err, eventmodels.ErrSymbolRequired)
	})
}

func TestFileOptionFetcher_FetchOptionChain(t *testing.T) {
	chain, err := NewFileOptionFetcher("testdata/nse_option_chain.json").FetchOptionChain(context.Background(), "nifty")
	require.NoError(t, err)

	assert.Equal(t, eventmodels.StockSymbol("NIFTY"), chain.Security)
	assert.Len(t, chain.Records, 4)

	_, err = NewFileOptionFetcher("testdata/missing.json").FetchOptionChain(context.Background(), "NIFTY")
	assert.Error(t, err)
}
