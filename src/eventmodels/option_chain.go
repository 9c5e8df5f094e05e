package eventmodels

import (
	"fmt"
	"math"
	"sort"
	"time"
)

const (
	DefaultOICutoff         = 50
	DefaultAnalysisOICutoff = 100
)

// OptionChain is the normalized option chain of one security, built once per fetch.
// Expiries and Strikes hold the distinct values observed in the fetched response and
// are kept as-is by FilterByOI so that expiry indices stay stable across views.
type OptionChain struct {
	Security        StockSymbol    `json:"security"`
	UnderlyingPrice float64        `json:"underlying_price"`
	Records         []OptionRecord `json:"records"`
	Expiries        []time.Time    `json:"expiries"`
	Strikes         []float64      `json:"strikes"`
}

func NewOptionChain(security StockSymbol, underlyingPrice float64, records []OptionRecord) (*OptionChain, error) {
	if len(records) == 0 {
		return nil, ErrEmptyOptionChain
	}

	seen := make(map[OptionRecordKey]struct{}, len(records))
	expirySet := make(map[int64]time.Time)
	strikeSet := make(map[float64]struct{})

	for _, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("NewOptionChain: %w", err)
		}

		if _, found := seen[r.Key()]; found {
			return nil, fmt.Errorf("NewOptionChain: %s @ %.2f: %w", r.Expiry.Format("2006-01-02"), r.Strike, ErrDuplicateRecord)
		}
		seen[r.Key()] = struct{}{}

		expirySet[r.Expiry.Unix()] = r.Expiry
		strikeSet[r.Strike] = struct{}{}
	}

	expiries := make([]time.Time, 0, len(expirySet))
	for _, exp := range expirySet {
		expiries = append(expiries, exp)
	}

	sort.Slice(expiries, func(i, j int) bool {
		return expiries[i].Before(expiries[j])
	})

	strikes := make([]float64, 0, len(strikeSet))
	for strike := range strikeSet {
		strikes = append(strikes, strike)
	}

	sort.Float64s(strikes)

	data := make([]OptionRecord, len(records))
	copy(data, records)

	return &OptionChain{
		Security:        security,
		UnderlyingPrice: underlyingPrice,
		Records:         data,
		Expiries:        expiries,
		Strikes:         strikes,
	}, nil
}

// ATMStrike returns the strike closest to the underlying price. Ties go to the lower strike.
func (c *OptionChain) ATMStrike() (float64, error) {
	if len(c.Strikes) == 0 {
		return 0, fmt.Errorf("OptionChain.ATMStrike: %w", ErrEmptyOptionChain)
	}

	atm := c.Strikes[0]
	minDiff := math.Abs(c.UnderlyingPrice - atm)
	for _, strike := range c.Strikes[1:] {
		diff := math.Abs(c.UnderlyingPrice - strike)
		if diff < minDiff {
			atm = strike
			minDiff = diff
		}
	}

	return atm, nil
}

func (c *OptionChain) ExpiryAt(index int) (time.Time, error) {
	if index < 0 || index >= len(c.Expiries) {
		return time.Time{}, fmt.Errorf("OptionChain.ExpiryAt: %d: %w", index, ErrExpiryIndexNotFound)
	}

	return c.Expiries[index], nil
}

func (c *OptionChain) HasStrike(strike float64) bool {
	i := sort.SearchFloat64s(c.Strikes, strike)
	return i < len(c.Strikes) && c.Strikes[i] == strike
}

// FilterByOI keeps the records where either side has open interest strictly above cutoff.
// The result may hold no records.
func (c *OptionChain) FilterByOI(cutoff int) *OptionChain {
	var filtered []OptionRecord
	for _, r := range c.Records {
		if r.CallOI > cutoff || r.PutOI > cutoff {
			filtered = append(filtered, r)
		}
	}

	return &OptionChain{
		Security:        c.Security,
		UnderlyingPrice: c.UnderlyingPrice,
		Records:         filtered,
		Expiries:        c.Expiries,
		Strikes:         c.Strikes,
	}
}

// GroupByExpiry filters by cutoff and groups the records by expiry index. Every expiry
// index of the chain is present, with an empty slice when nothing survived the filter.
func (c *OptionChain) GroupByExpiry(cutoff int) map[int][]OptionRecord {
	filtered := c.FilterByOI(cutoff)

	indexByExpiry := make(map[int64]int, len(c.Expiries))
	groups := make(map[int][]OptionRecord, len(c.Expiries))
	for i, exp := range c.Expiries {
		indexByExpiry[exp.Unix()] = i
		groups[i] = []OptionRecord{}
	}

	for _, r := range filtered.Records {
		i, found := indexByExpiry[r.Expiry.Unix()]
		if !found {
			continue
		}

		groups[i] = append(groups[i], r)
	}

	for i := range groups {
		sortByStrike(groups[i])
	}

	return groups
}

// GroupByStrike filters by cutoff and groups the records by strike, keeping only rows
// where both the call and the put have traded. Strikes left without rows are omitted.
func (c *OptionChain) GroupByStrike(cutoff int) map[float64][]OptionRecord {
	filtered := c.FilterByOI(cutoff)

	groups := make(map[float64][]OptionRecord)
	for _, r := range filtered.Records {
		if r.CallLTP <= 0 || r.PutLTP <= 0 {
			continue
		}

		groups[r.Strike] = append(groups[r.Strike], r)
	}

	for strike := range groups {
		sortByExpiry(groups[strike])
	}

	return groups
}

func sortByStrike(records []OptionRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Strike < records[j].Strike
	})
}

func sortByExpiry(records []OptionRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Expiry.Before(records[j].Expiry)
	})
}
