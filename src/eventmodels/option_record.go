package eventmodels

import (
	"fmt"
	"time"
)

// OptionRecord is one row of an option chain: the call and put side of a single
// expiry/strike pair. Column order follows the usual exchange layout with calls on
// the left and puts on the right of the strike.
type OptionRecord struct {
	Expiry       time.Time `json:"expiry" csv:"Expiry"`
	CallOI       int       `json:"call_oi" csv:"Call OI"`
	CallChangeOI int       `json:"call_change_oi" csv:"Call C_OI"`
	CallIV       float64   `json:"call_iv" csv:"Call IV"`
	CallLTP      float64   `json:"call_ltp" csv:"Call LTP"`
	Strike       float64   `json:"strike" csv:"Strike"`
	PutLTP       float64   `json:"put_ltp" csv:"Put LTP"`
	PutIV        float64   `json:"put_iv" csv:"Put IV"`
	PutChangeOI  int       `json:"put_change_oi" csv:"Put C_OI"`
	PutOI        int       `json:"put_oi" csv:"Put OI"`
}

type OptionLeg struct {
	OpenInterest         int
	ChangeInOpenInterest int
	ImpliedVolatility    float64
	LastPrice            float64
}

func (r OptionRecord) Leg(optionType OptionType) OptionLeg {
	if optionType == Put {
		return OptionLeg{
			OpenInterest:         r.PutOI,
			ChangeInOpenInterest: r.PutChangeOI,
			ImpliedVolatility:    r.PutIV,
			LastPrice:            r.PutLTP,
		}
	}

	return OptionLeg{
		OpenInterest:         r.CallOI,
		ChangeInOpenInterest: r.CallChangeOI,
		ImpliedVolatility:    r.CallIV,
		LastPrice:            r.CallLTP,
	}
}

func (r OptionRecord) Key() OptionRecordKey {
	return OptionRecordKey{Expiry: r.Expiry.Unix(), Strike: r.Strike}
}

// HasIV reports whether both sides carry a positive implied volatility.
func (r OptionRecord) HasIV() bool {
	return r.CallIV > 0 && r.PutIV > 0
}

func (r OptionRecord) Validate() error {
	if r.CallOI < 0 || r.PutOI < 0 || r.CallIV < 0 || r.PutIV < 0 {
		return fmt.Errorf("OptionRecord: Validate: %s @ %.2f: %w", r.Expiry.Format("2006-01-02"), r.Strike, ErrNegativeValue)
	}

	return nil
}

type OptionRecordKey struct {
	Expiry int64
	Strike float64
}
