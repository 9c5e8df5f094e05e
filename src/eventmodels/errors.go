package eventmodels

import "fmt"

var (
	ErrEmptyOptionChain     = fmt.Errorf("option chain data cannot be empty")
	ErrDuplicateRecord      = fmt.Errorf("duplicate expiry/strike pair in option chain")
	ErrNegativeValue        = fmt.Errorf("open interest and implied volatility must be non-negative")
	ErrExpiryIndexNotFound  = fmt.Errorf("expiry index not found")
	ErrStrikeNotFound       = fmt.Errorf("strike not found")
	ErrNoTradedStrikeData   = fmt.Errorf("no traded records for strike")
	ErrNoValidIVData        = fmt.Errorf("no valid implied volatility data")
	ErrNoOptionChainLoaded  = fmt.Errorf("no option chain data available, analyze a symbol first")
	ErrInvalidResponse      = fmt.Errorf("invalid option chain response")
	ErrNonJSONResponse      = fmt.Errorf("option chain endpoint returned a non-json response")
	ErrSymbolRequired       = fmt.Errorf("symbol is required")
	ErrUnsupportedChartType = fmt.Errorf("unsupported chart type")
)
