package eventmodels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOptionChainSummary(t *testing.T) {
	t.Run("summary values", func(t *testing.T) {
		summary, err := NewOptionChainSummary(newSampleChain(t))
		require.NoError(t, err)

		assert.Equal(t, StockSymbol("NIFTY"), summary.Security)
		assert.Equal(t, 21250.0, summary.UnderlyingPrice)
		assert.Equal(t, 21000.0, summary.ATMStrike)
		assert.Equal(t, 3, summary.TotalRecords)
		assert.Equal(t, 2, summary.ExpiriesCount)
		assert.Equal(t, 2, summary.StrikesCount)
		assert.Equal(t, 3300, summary.TotalCallOI)
		assert.Equal(t, 5000, summary.TotalPutOI)
		assert.Equal(t, 21500.0, summary.MaxCallOIStrike)
		assert.Equal(t, 21000.0, summary.MaxPutOIStrike)
		assert.InDelta(t, 5000.0/3300.0, summary.PutCallRatio, 1e-9)
		assert.InDelta(t, 45.5/3, summary.MeanCallIV, 1e-9)
		assert.InDelta(t, 47.0/3, summary.MeanPutIV, 1e-9)
	})

	t.Run("zero iv is excluded from the means", func(t *testing.T) {
		records := sampleRecords()
		records[2].CallIV = 0

		chain, err := NewOptionChain("NIFTY", 21250, records)
		require.NoError(t, err)

		summary, err := NewOptionChainSummary(chain)
		require.NoError(t, err)
		assert.InDelta(t, 14.75, summary.MeanCallIV, 1e-9)
	})

	t.Run("no call open interest", func(t *testing.T) {
		chain, err := NewOptionChain("NIFTY", 100, []OptionRecord{{Expiry: janExpiry, Strike: 100, PutOI: 10}})
		require.NoError(t, err)

		summary, err := NewOptionChainSummary(chain)
		require.NoError(t, err)
		assert.Equal(t, 0.0, summary.PutCallRatio)
		assert.Equal(t, 0.0, summary.MeanCallIV)
	})

	t.Run("empty chain", func(t *testing.T) {
		_, err := NewOptionChainSummary(nil)
		assert.ErrorIs(t, err, ErrEmptyOptionChain)

		_, err = NewOptionChainSummary(newSampleChain(t).FilterByOI(10000))
		assert.ErrorIs(t, err, ErrEmptyOptionChain)
	})
}

func TestOptionChainSummary_String(t *testing.T) {
	summary, err := NewOptionChainSummary(newSampleChain(t))
	require.NoError(t, err)

	display := summary.String()

	assert.Contains(t, display, "Option Chain Summary:")
	assert.Contains(t, display, "NIFTY")
	assert.Contains(t, display, "21,250.00")
	assert.Contains(t, display, "5,000")
}

func TestRecordsTable(t *testing.T) {
	records := sampleRecords()

	display := RecordsTable(records, 2)
	assert.Contains(t, display, "25-Jan-2024")
	assert.NotContains(t, display, "29-Feb-2024")

	display = RecordsTable(records, 0)
	assert.Contains(t, display, "29-Feb-2024")
}
