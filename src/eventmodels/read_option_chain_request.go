package eventmodels

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
)

type ChartType string

const (
	VolatilitySkewChart ChartType = "skew"
	TermStructureChart  ChartType = "term-structure"
	OpenInterestChart   ChartType = "open-interest"
)

func (c ChartType) Validate() error {
	if c != VolatilitySkewChart && c != TermStructureChart && c != OpenInterestChart {
		return fmt.Errorf("ChartType: Validate: %s: %w", c, ErrUnsupportedChartType)
	}

	return nil
}

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return decoder
}

type ReadOptionChainRequest struct {
	Symbol      StockSymbol `schema:"-"`
	Chart       ChartType   `schema:"-"`
	OICutoff    *int        `schema:"oi_cutoff"`
	ExpiryIndex int         `schema:"expiry_index"`
	Strike      *float64    `schema:"strike"`
}

func (o *ReadOptionChainRequest) GetOICutoff() int {
	if o.OICutoff == nil {
		return DefaultAnalysisOICutoff
	}

	return *o.OICutoff
}

func (o *ReadOptionChainRequest) Validate(r *http.Request) error {
	if err := o.Symbol.Validate(); err != nil {
		return fmt.Errorf("ReadOptionChainRequest: Validate: %w", err)
	}

	if o.OICutoff != nil && *o.OICutoff < 0 {
		return fmt.Errorf("ReadOptionChainRequest: Validate: oi_cutoff must be non-negative")
	}

	if o.ExpiryIndex < 0 {
		return fmt.Errorf("ReadOptionChainRequest: Validate: expiry_index must be non-negative")
	}

	if o.Chart != "" {
		if err := o.Chart.Validate(); err != nil {
			return fmt.Errorf("ReadOptionChainRequest: Validate: %w", err)
		}
	}

	return nil
}

func (o *ReadOptionChainRequest) ParseHTTPRequest(r *http.Request) error {
	vars := mux.Vars(r)
	o.Symbol = NewStockSymbol(vars["symbol"])
	o.Chart = ChartType(vars["chart"])

	if err := queryDecoder.Decode(o, r.URL.Query()); err != nil {
		return fmt.Errorf("ReadOptionChainRequest: ParseHTTPRequest: decode: %w", err)
	}

	return nil
}

// PngChart is a rendered chart served as image/png instead of JSON.
type PngChart struct {
	io.WriterTo
}
