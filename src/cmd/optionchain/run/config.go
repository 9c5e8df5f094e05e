package run

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jiaming2012/option-chain/src/eventmodels"
	"github.com/jiaming2012/option-chain/src/eventservices"
	"github.com/jiaming2012/option-chain/src/utils"
)

func LoadOptionsConfig(path string) (*eventmodels.OptionsConfigYAML, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadOptionsConfig: failed to read options config: %w", err)
	}

	var optionsConfig eventmodels.OptionsConfigYAML
	if err := yaml.Unmarshal(data, &optionsConfig); err != nil {
		return nil, fmt.Errorf("LoadOptionsConfig: failed to unmarshal options config: %w", err)
	}

	return &optionsConfig, nil
}

// NSEConfigFromEnv reads NSE_BASE_URL, NSE_TIMEOUT_SECONDS and NSE_MAX_RETRIES. Unset
// values fall back to the fetcher defaults.
func NSEConfigFromEnv() (eventservices.NSEOptionFetcherConfig, error) {
	timeout, err := utils.GetEnvSeconds("NSE_TIMEOUT_SECONDS", eventservices.DefaultFetchTimeout)
	if err != nil {
		return eventservices.NSEOptionFetcherConfig{}, fmt.Errorf("NSEConfigFromEnv: %w", err)
	}

	maxRetries, err := utils.GetEnvInt("NSE_MAX_RETRIES", eventservices.DefaultMaxRetries)
	if err != nil {
		return eventservices.NSEOptionFetcherConfig{}, fmt.Errorf("NSEConfigFromEnv: %w", err)
	}

	return eventservices.NSEOptionFetcherConfig{
		BaseURL:    utils.GetEnvOrDefault("NSE_BASE_URL", eventservices.NSEOptionChainIndicesURL),
		Timeout:    timeout,
		MaxRetries: maxRetries,
	}, nil
}
