package eventservices

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/option-chain/src/charts"
	"github.com/jiaming2012/option-chain/src/eventmodels"
)

type fakeFetcher struct {
	chain   *eventmodels.OptionChain
	err     error
	symbols []eventmodels.StockSymbol
}

func (f *fakeFetcher) FetchOptionChain(ctx context.Context, symbol eventmodels.StockSymbol) (*eventmodels.OptionChain, error) {
	f.symbols = append(f.symbols, symbol)
	return f.chain, f.err
}

func newFixtureFetcher(t *testing.T) *fakeFetcher {
	chain, err := NewFileOptionFetcher("testdata/nse_option_chain.json").FetchOptionChain(context.Background(), "NIFTY")
	require.NoError(t, err)
	return &fakeFetcher{chain: chain}
}

func TestOptionChainAnalyzer_NoData(t *testing.T) {
	analyzer := NewOptionChainAnalyzer(&fakeFetcher{}, charts.NewRenderer(t.TempDir()))
	ctx := context.Background()

	assert.Nil(t, analyzer.CurrentChain())

	_, err := analyzer.GetSummary()
	assert.ErrorIs(t, err, eventmodels.ErrNoOptionChainLoaded)

	_, err = analyzer.PlotVolatilitySkew(ctx, 0)
	assert.ErrorIs(t, err, eventmodels.ErrNoOptionChainLoaded)

	_, err = analyzer.PlotTermStructure(ctx, nil)
	assert.ErrorIs(t, err, eventmodels.ErrNoOptionChainLoaded)

	_, err = analyzer.PlotOpenInterestAnalysis(ctx, 0)
	assert.ErrorIs(t, err, eventmodels.ErrNoOptionChainLoaded)
}

func TestOptionChainAnalyzer_AnalyzeSymbol(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		fetcher := newFixtureFetcher(t)
		analyzer := NewOptionChainAnalyzer(fetcher, charts.NewRenderer(t.TempDir()))

		chain, err := analyzer.AnalyzeSymbol(ctx, "NIFTY", eventmodels.DefaultAnalysisOICutoff)
		require.NoError(t, err)

		assert.Equal(t, []eventmodels.StockSymbol{"NIFTY"}, fetcher.symbols)
		assert.Equal(t, eventmodels.StockSymbol("NIFTY"), chain.Security)
		assert.Len(t, chain.Records, 3)
		assert.Same(t, chain, analyzer.CurrentChain())
	})

	t.Run("fetch failure", func(t *testing.T) {
		fetcher := &fakeFetcher{err: errors.New("network error")}
		analyzer := NewOptionChainAnalyzer(fetcher, charts.NewRenderer(t.TempDir()))

		chain, err := analyzer.AnalyzeSymbol(ctx, "INVALID", eventmodels.DefaultAnalysisOICutoff)
		assert.Error(t, err)
		assert.Nil(t, chain)
		assert.Nil(t, analyzer.CurrentChain())
		assert.Equal(t, []eventmodels.StockSymbol{"INVALID"}, fetcher.symbols)
	})

	t.Run("failure keeps the previous chain", func(t *testing.T) {
		fetcher := newFixtureFetcher(t)
		analyzer := NewOptionChainAnalyzer(fetcher, charts.NewRenderer(t.TempDir()))

		previous, err := analyzer.AnalyzeSymbol(ctx, "NIFTY", eventmodels.DefaultAnalysisOICutoff)
		require.NoError(t, err)

		fetcher.err = errors.New("network error")
		_, err = analyzer.AnalyzeSymbol(ctx, "NIFTY", eventmodels.DefaultAnalysisOICutoff)
		assert.Error(t, err)
		assert.Same(t, previous, analyzer.CurrentChain())
	})

	t.Run("nothing above the cutoff", func(t *testing.T) {
		analyzer := NewOptionChainAnalyzer(newFixtureFetcher(t), charts.NewRenderer(t.TempDir()))

		_, err := analyzer.AnalyzeSymbol(ctx, "NIFTY", 100000)
		assert.ErrorIs(t, err, eventmodels.ErrEmptyOptionChain)
		assert.Nil(t, analyzer.CurrentChain())
	})
}

func TestOptionChainAnalyzer_GetSummary(t *testing.T) {
	analyzer := NewOptionChainAnalyzer(newFixtureFetcher(t), charts.NewRenderer(t.TempDir()))

	_, err := analyzer.AnalyzeSymbol(context.Background(), "NIFTY", eventmodels.DefaultAnalysisOICutoff)
	require.NoError(t, err)

	summary, err := analyzer.GetSummary()
	require.NoError(t, err)

	assert.Equal(t, eventmodels.StockSymbol("NIFTY"), summary.Security)
	assert.Equal(t, 21250.0, summary.UnderlyingPrice)
	assert.Equal(t, 21000.0, summary.ATMStrike)
	assert.Equal(t, 3, summary.TotalRecords)
	assert.Equal(t, 2, summary.ExpiriesCount)
	assert.Equal(t, 3300, summary.TotalCallOI)
	assert.Equal(t, 5000, summary.TotalPutOI)
}

func TestOptionChainAnalyzer_Plots(t *testing.T) {
	ctx := context.Background()
	outDir := t.TempDir()

	analyzer := NewOptionChainAnalyzer(newFixtureFetcher(t), charts.NewRenderer(outDir))
	_, err := analyzer.AnalyzeSymbol(ctx, "NIFTY", eventmodels.DefaultAnalysisOICutoff)
	require.NoError(t, err)

	assertFile := func(t *testing.T, path string) {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}

	t.Run("volatility skew", func(t *testing.T) {
		path, err := analyzer.PlotVolatilitySkew(ctx, 0)
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(outDir, "nifty_volatility_skew_exp0.png"), path)
		assertFile(t, path)
	})

	t.Run("term structure at the ATM strike", func(t *testing.T) {
		path, err := analyzer.PlotTermStructure(ctx, nil)
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(outDir, "nifty_term_structure_21000.png"), path)
		assertFile(t, path)
	})

	t.Run("term structure at a given strike", func(t *testing.T) {
		strike := 21500.0
		path, err := analyzer.PlotTermStructure(ctx, &strike)
		require.NoError(t, err)
		assertFile(t, path)
	})

	t.Run("open interest", func(t *testing.T) {
		path, err := analyzer.PlotOpenInterestAnalysis(ctx, 1)
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(outDir, "nifty_open_interest_exp1.png"), path)
		assertFile(t, path)
	})

	t.Run("unknown expiry index", func(t *testing.T) {
		_, err := analyzer.PlotVolatilitySkew(ctx, 5)
		assert.ErrorIs(t, err, eventmodels.ErrExpiryIndexNotFound)

		_, err = analyzer.PlotOpenInterestAnalysis(ctx, -1)
		assert.ErrorIs(t, err, eventmodels.ErrExpiryIndexNotFound)
	})

	t.Run("unknown strike", func(t *testing.T) {
		strike := 12345.0
		_, err := analyzer.PlotTermStructure(ctx, &strike)
		assert.ErrorIs(t, err, eventmodels.ErrStrikeNotFound)
	})

	t.Run("strike without traded records", func(t *testing.T) {
		strike := 23000.0
		require.True(t, analyzer.CurrentChain().HasStrike(strike))

		_, err := analyzer.PlotTermStructure(ctx, &strike)
		assert.ErrorIs(t, err, eventmodels.ErrNoTradedStrikeData)
		assert.False(t, errors.Is(err, eventmodels.ErrStrikeNotFound))
	})
}
