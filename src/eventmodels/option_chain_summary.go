package eventmodels

import (
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type OptionChainSummary struct {
	Security        StockSymbol `json:"security"`
	UnderlyingPrice float64     `json:"underlying_price"`
	ATMStrike       float64     `json:"atm_strike"`
	TotalRecords    int         `json:"total_records"`
	ExpiriesCount   int         `json:"expiries_count"`
	StrikesCount    int         `json:"strikes_count"`
	TotalCallOI     int         `json:"total_call_oi"`
	TotalPutOI      int         `json:"total_put_oi"`
	MaxCallOIStrike float64     `json:"max_call_oi_strike"`
	MaxPutOIStrike  float64     `json:"max_put_oi_strike"`
	PutCallRatio    float64     `json:"put_call_ratio"`
	MeanCallIV      float64     `json:"mean_call_iv"`
	MeanPutIV       float64     `json:"mean_put_iv"`
}

func NewOptionChainSummary(chain *OptionChain) (*OptionChainSummary, error) {
	if chain == nil || len(chain.Records) == 0 {
		return nil, ErrEmptyOptionChain
	}

	atm, err := chain.ATMStrike()
	if err != nil {
		return nil, fmt.Errorf("NewOptionChainSummary: %w", err)
	}

	var callOI, putOI, callIV, putIV []float64
	maxCall, maxPut := chain.Records[0], chain.Records[0]
	for _, r := range chain.Records {
		callOI = append(callOI, float64(r.CallOI))
		putOI = append(putOI, float64(r.PutOI))

		if r.CallIV > 0 {
			callIV = append(callIV, r.CallIV)
		}

		if r.PutIV > 0 {
			putIV = append(putIV, r.PutIV)
		}

		if r.CallOI > maxCall.CallOI {
			maxCall = r
		}

		if r.PutOI > maxPut.PutOI {
			maxPut = r
		}
	}

	totalCallOI, err := stats.Sum(callOI)
	if err != nil {
		return nil, fmt.Errorf("NewOptionChainSummary: call oi: %w", err)
	}

	totalPutOI, err := stats.Sum(putOI)
	if err != nil {
		return nil, fmt.Errorf("NewOptionChainSummary: put oi: %w", err)
	}

	summary := &OptionChainSummary{
		Security:        chain.Security,
		UnderlyingPrice: chain.UnderlyingPrice,
		ATMStrike:       atm,
		TotalRecords:    len(chain.Records),
		ExpiriesCount:   len(chain.Expiries),
		StrikesCount:    len(chain.Strikes),
		TotalCallOI:     int(totalCallOI),
		TotalPutOI:      int(totalPutOI),
		MaxCallOIStrike: maxCall.Strike,
		MaxPutOIStrike:  maxPut.Strike,
	}

	if totalCallOI > 0 {
		summary.PutCallRatio = totalPutOI / totalCallOI
	}

	// stats.Mean returns EmptyInputErr when no side has a quoted IV; the mean stays zero.
	if mean, err := stats.Mean(callIV); err == nil {
		summary.MeanCallIV = mean
	}

	if mean, err := stats.Mean(putIV); err == nil {
		summary.MeanPutIV = mean
	}

	return summary, nil
}

func (s *OptionChainSummary) String() string {
	display := &strings.Builder{}
	p := message.NewPrinter(language.English)

	table := tablewriter.NewWriter(display)
	table.SetHeader([]string{"Field", "Value"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	table.AppendBulk([][]string{
		{"Security", s.Security.String()},
		{"Underlying Price", p.Sprintf("%.2f", s.UnderlyingPrice)},
		{"ATM Strike", p.Sprintf("%.2f", s.ATMStrike)},
		{"Total Records", p.Sprintf("%d", s.TotalRecords)},
		{"Expiries Count", p.Sprintf("%d", s.ExpiriesCount)},
		{"Strikes Count", p.Sprintf("%d", s.StrikesCount)},
		{"Total Call OI", p.Sprintf("%d", s.TotalCallOI)},
		{"Total Put OI", p.Sprintf("%d", s.TotalPutOI)},
		{"Max Call OI Strike", p.Sprintf("%.2f", s.MaxCallOIStrike)},
		{"Max Put OI Strike", p.Sprintf("%.2f", s.MaxPutOIStrike)},
		{"Put/Call OI Ratio", fmt.Sprintf("%.3f", s.PutCallRatio)},
		{"Mean Call IV", fmt.Sprintf("%.2f%%", s.MeanCallIV)},
		{"Mean Put IV", fmt.Sprintf("%.2f%%", s.MeanPutIV)},
	})

	display.WriteString("Option Chain Summary:\n")
	table.Render()

	return display.String()
}

// RecordsTable renders at most limit records in the exchange layout. A limit <= 0 renders all.
func RecordsTable(records []OptionRecord, limit int) string {
	display := &strings.Builder{}
	p := message.NewPrinter(language.English)

	table := tablewriter.NewWriter(display)
	table.SetHeader([]string{"Expiry", "Call OI", "Call C_OI", "Call IV", "Call LTP", "Strike", "Put LTP", "Put IV", "Put C_OI", "Put OI"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	if limit <= 0 || limit > len(records) {
		limit = len(records)
	}

	for _, r := range records[:limit] {
		table.Append([]string{
			r.Expiry.Format("02-Jan-2006"),
			p.Sprintf("%d", r.CallOI),
			p.Sprintf("%d", r.CallChangeOI),
			fmt.Sprintf("%.2f", r.CallIV),
			p.Sprintf("%.2f", r.CallLTP),
			p.Sprintf("%.2f", r.Strike),
			p.Sprintf("%.2f", r.PutLTP),
			fmt.Sprintf("%.2f", r.PutIV),
			p.Sprintf("%d", r.PutChangeOI),
			p.Sprintf("%d", r.PutOI),
		})
	}

	table.Render()

	return display.String()
}
