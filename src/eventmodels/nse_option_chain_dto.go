package eventmodels

import (
	"fmt"
	"time"
)

const NSEExpiryDateLayout = "02-Jan-2006"

type NSEOptionChainResponseDTO struct {
	Records *NSEOptionChainRecordsDTO `json:"records"`
}

type NSEOptionChainRecordsDTO struct {
	ExpiryDates     []string                 `json:"expiryDates"`
	Data            []NSEOptionChainEntryDTO `json:"data"`
	Timestamp       string                   `json:"timestamp"`
	UnderlyingValue float64                  `json:"underlyingValue"`
	StrikePrices    []float64                `json:"strikePrices"`
}

type NSEOptionChainEntryDTO struct {
	StrikePrice float64          `json:"strikePrice"`
	ExpiryDate  string           `json:"expiryDate"`
	CE          *NSEOptionLegDTO `json:"CE,omitempty"`
	PE          *NSEOptionLegDTO `json:"PE,omitempty"`
}

type NSEOptionLegDTO struct {
	StrikePrice          float64 `json:"strikePrice"`
	ExpiryDate           string  `json:"expiryDate"`
	Underlying           string  `json:"underlying"`
	Identifier           string  `json:"identifier"`
	OpenInterest         float64 `json:"openInterest"`
	ChangeInOpenInterest float64 `json:"changeinOpenInterest"`
	TotalTradedVolume    float64 `json:"totalTradedVolume"`
	ImpliedVolatility    float64 `json:"impliedVolatility"`
	LastPrice            float64 `json:"lastPrice"`
	UnderlyingValue      float64 `json:"underlyingValue"`
}

func (d *NSEOptionChainResponseDTO) Validate() error {
	if d.Records == nil || d.Records.Data == nil {
		return fmt.Errorf("NSEOptionChainResponseDTO: Validate: missing records.data: %w", ErrInvalidResponse)
	}

	return nil
}

// UnderlyingPrice takes the first put quote's underlying value, then the records level
// value, then the first call quote's value.
func (d *NSEOptionChainResponseDTO) UnderlyingPrice() float64 {
	for _, entry := range d.Records.Data {
		if entry.PE != nil && entry.PE.UnderlyingValue > 0 {
			return entry.PE.UnderlyingValue
		}
	}

	if d.Records.UnderlyingValue > 0 {
		return d.Records.UnderlyingValue
	}

	for _, entry := range d.Records.Data {
		if entry.CE != nil && entry.CE.UnderlyingValue > 0 {
			return entry.CE.UnderlyingValue
		}
	}

	return 0
}

func (d *NSEOptionChainEntryDTO) ToModel() (OptionRecord, error) {
	expiry, err := time.Parse(NSEExpiryDateLayout, d.ExpiryDate)
	if err != nil {
		return OptionRecord{}, fmt.Errorf("NSEOptionChainEntryDTO: ToModel: failed to parse expiry %q: %w", d.ExpiryDate, err)
	}

	record := OptionRecord{
		Expiry: expiry,
		Strike: d.StrikePrice,
	}

	if d.CE != nil {
		record.CallOI = int(d.CE.OpenInterest)
		record.CallChangeOI = int(d.CE.ChangeInOpenInterest)
		record.CallIV = d.CE.ImpliedVolatility
		record.CallLTP = d.CE.LastPrice
	}

	if d.PE != nil {
		record.PutOI = int(d.PE.OpenInterest)
		record.PutChangeOI = int(d.PE.ChangeInOpenInterest)
		record.PutIV = d.PE.ImpliedVolatility
		record.PutLTP = d.PE.LastPrice
	}

	return record, nil
}

func (d *NSEOptionChainResponseDTO) ToModel(symbol StockSymbol) (*OptionChain, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	records := make([]OptionRecord, 0, len(d.Records.Data))
	for _, entry := range d.Records.Data {
		record, err := entry.ToModel()
		if err != nil {
			return nil, fmt.Errorf("NSEOptionChainResponseDTO: ToModel: %w", err)
		}

		records = append(records, record)
	}

	chain, err := NewOptionChain(symbol, d.UnderlyingPrice(), records)
	if err != nil {
		return nil, fmt.Errorf("NSEOptionChainResponseDTO: ToModel: %w", err)
	}

	return chain, nil
}
