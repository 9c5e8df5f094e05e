package eventmodels

type OptionYAML struct {
	Symbol      string   `yaml:"symbol"`
	OICutoff    *int     `yaml:"oiCutoff,omitempty"`
	ExpiryIndex *int     `yaml:"expiryIndex,omitempty"`
	Strike      *float64 `yaml:"strike,omitempty"`
}

func (o OptionYAML) GetOICutoff() int {
	if o.OICutoff == nil {
		return DefaultAnalysisOICutoff
	}

	return *o.OICutoff
}

func (o OptionYAML) GetExpiryIndex() int {
	if o.ExpiryIndex == nil {
		return 0
	}

	return *o.ExpiryIndex
}
