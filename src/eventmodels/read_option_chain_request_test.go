package eventmodels

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadOptionChainRequest_ParseHTTPRequest(t *testing.T) {
	t.Run("path and query parameters", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/options/nifty/charts/skew.png?oi_cutoff=250&expiry_index=2&strike=21000.5&unknown=1", nil)
		r = mux.SetURLVars(r, map[string]string{"symbol": "nifty", "chart": "skew"})

		req := &ReadOptionChainRequest{}
		require.NoError(t, req.ParseHTTPRequest(r))
		require.NoError(t, req.Validate(r))

		assert.Equal(t, StockSymbol("NIFTY"), req.Symbol)
		assert.Equal(t, VolatilitySkewChart, req.Chart)
		assert.Equal(t, 250, req.GetOICutoff())
		assert.Equal(t, 2, req.ExpiryIndex)
		require.NotNil(t, req.Strike)
		assert.Equal(t, 21000.5, *req.Strike)
	})

	t.Run("defaults", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/options/NIFTY/summary", nil)
		r = mux.SetURLVars(r, map[string]string{"symbol": "NIFTY"})

		req := &ReadOptionChainRequest{}
		require.NoError(t, req.ParseHTTPRequest(r))
		require.NoError(t, req.Validate(r))

		assert.Equal(t, DefaultAnalysisOICutoff, req.GetOICutoff())
		assert.Equal(t, 0, req.ExpiryIndex)
		assert.Nil(t, req.Strike)
	})

	t.Run("invalid query value", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/options/NIFTY/summary?expiry_index=abc", nil)
		r = mux.SetURLVars(r, map[string]string{"symbol": "NIFTY"})

		assert.Error(t, (&ReadOptionChainRequest{}).ParseHTTPRequest(r))
	})
}

func TestReadOptionChainRequest_Validate(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	negative := -1

	assert.ErrorIs(t, (&ReadOptionChainRequest{}).Validate(r), ErrSymbolRequired)
	assert.Error(t, (&ReadOptionChainRequest{Symbol: "NIFTY", OICutoff: &negative}).Validate(r))
	assert.Error(t, (&ReadOptionChainRequest{Symbol: "NIFTY", ExpiryIndex: -1}).Validate(r))
	assert.ErrorIs(t, (&ReadOptionChainRequest{Symbol: "NIFTY", Chart: "candles"}).Validate(r), ErrUnsupportedChartType)
	assert.NoError(t, (&ReadOptionChainRequest{Symbol: "NIFTY", Chart: OpenInterestChart}).Validate(r))
}
