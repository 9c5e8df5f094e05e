package eventmodels

import (
	"fmt"
	"strings"
)

type OptionsConfigYAML struct {
	Defaults OptionYAML   `yaml:"defaults"`
	Options  []OptionYAML `yaml:"options"`
}

func (o *OptionsConfigYAML) GetOption(symbol StockSymbol) (*OptionYAML, error) {
	sym1 := strings.ToLower(string(symbol))
	for _, option := range o.Options {
		sym2 := strings.ToLower(option.Symbol)
		if sym1 == sym2 {
			return &option, nil
		}
	}

	return nil, fmt.Errorf("OptionsConfigYAML: option not found")
}

// Resolve merges the per-symbol entry over the defaults section.
func (o *OptionsConfigYAML) Resolve(symbol StockSymbol) OptionYAML {
	resolved := o.Defaults
	resolved.Symbol = symbol.String()

	option, err := o.GetOption(symbol)
	if err != nil {
		return resolved
	}

	if option.OICutoff != nil {
		resolved.OICutoff = option.OICutoff
	}

	if option.ExpiryIndex != nil {
		resolved.ExpiryIndex = option.ExpiryIndex
	}

	if option.Strike != nil {
		resolved.Strike = option.Strike
	}

	return resolved
}
