package eventmodels

import (
	"encoding/json"
	"strings"
)

// StockSymbol identifies the security an option chain belongs to, e.g. NIFTY or BANKNIFTY.
type StockSymbol string

func (s StockSymbol) String() string {
	return strings.ToUpper(string(s))
}

func (s StockSymbol) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s StockSymbol) Validate() error {
	if strings.TrimSpace(string(s)) == "" {
		return ErrSymbolRequired
	}

	return nil
}

func NewStockSymbol(s string) StockSymbol {
	return StockSymbol(strings.ToUpper(strings.TrimSpace(s)))
}
