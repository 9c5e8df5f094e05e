package eventservices

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jiaming2012/option-chain/src/charts"
	"github.com/jiaming2012/option-chain/src/eventmodels"
)

// OptionChainAnalyzer ties a fetcher to a chart renderer and remembers the last chain
// it analyzed so that plots and summaries can be requested afterwards.
type OptionChainAnalyzer struct {
	fetcher      OptionChainFetcher
	renderer     *charts.Renderer
	currentChain *eventmodels.OptionChain
}

func NewOptionChainAnalyzer(fetcher OptionChainFetcher, renderer *charts.Renderer) *OptionChainAnalyzer {
	return &OptionChainAnalyzer{
		fetcher:  fetcher,
		renderer: renderer,
	}
}

func (a *OptionChainAnalyzer) CurrentChain() *eventmodels.OptionChain {
	return a.currentChain
}

// AnalyzeSymbol fetches the chain and keeps the records with either side's open interest
// above oiCutoff. The current chain is only replaced on success.
func (a *OptionChainAnalyzer) AnalyzeSymbol(ctx context.Context, symbol eventmodels.StockSymbol, oiCutoff int) (*eventmodels.OptionChain, error) {
	ctx, span := otel.Tracer("OptionChainAnalyzer").Start(ctx, "OptionChainAnalyzer.AnalyzeSymbol")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol.String()), attribute.Int("oi_cutoff", oiCutoff))

	logger := log.WithContext(ctx)
	logger.Infof("Fetching option chain data for %s", symbol)

	chain, err := a.fetcher.FetchOptionChain(ctx, symbol)
	if err != nil {
		logger.Errorf("Failed to fetch data for %s", symbol)
		return nil, fmt.Errorf("OptionChainAnalyzer.AnalyzeSymbol: %w", err)
	}

	atm, err := chain.ATMStrike()
	if err != nil {
		return nil, fmt.Errorf("OptionChainAnalyzer.AnalyzeSymbol: %w", err)
	}

	logger.Infof("Successfully fetched data for %s", chain.Security)
	logger.Infof("Underlying price: %.2f", chain.UnderlyingPrice)
	logger.Infof("ATM strike: %.2f", atm)
	logger.Infof("Available expiries: %d", len(chain.Expiries))
	logger.Infof("Available strikes: %d", len(chain.Strikes))

	filtered := chain.FilterByOI(oiCutoff)
	logger.Infof("After OI filter (%d): %d records", oiCutoff, len(filtered.Records))

	if len(filtered.Records) == 0 {
		return nil, fmt.Errorf("OptionChainAnalyzer.AnalyzeSymbol: oi cutoff %d: %w", oiCutoff, eventmodels.ErrEmptyOptionChain)
	}

	a.currentChain = filtered

	return filtered, nil
}

func (a *OptionChainAnalyzer) requireChain(op string) (*eventmodels.OptionChain, error) {
	if a.currentChain == nil {
		log.Errorf("No option chain data available. Run AnalyzeSymbol() first.")
		return nil, fmt.Errorf("OptionChainAnalyzer.%s: %w", op, eventmodels.ErrNoOptionChainLoaded)
	}

	return a.currentChain, nil
}

func (a *OptionChainAnalyzer) PlotVolatilitySkew(ctx context.Context, expiryIndex int) (string, error) {
	chain, err := a.requireChain("PlotVolatilitySkew")
	if err != nil {
		return "", err
	}

	chart, err := BuildVolatilitySkew(ctx, a.renderer, chain, expiryIndex)
	if err != nil {
		return "", fmt.Errorf("OptionChainAnalyzer.PlotVolatilitySkew: %w", err)
	}

	return a.renderer.Save(chartFilename(chain, fmt.Sprintf("volatility_skew_exp%d", expiryIndex)), chart)
}

// PlotTermStructure plots the strike, defaulting to the ATM strike when strike is nil.
func (a *OptionChainAnalyzer) PlotTermStructure(ctx context.Context, strike *float64) (string, error) {
	chain, err := a.requireChain("PlotTermStructure")
	if err != nil {
		return "", err
	}

	chart, target, err := BuildTermStructure(ctx, a.renderer, chain, strike)
	if err != nil {
		return "", fmt.Errorf("OptionChainAnalyzer.PlotTermStructure: %w", err)
	}

	return a.renderer.Save(chartFilename(chain, fmt.Sprintf("term_structure_%.0f", target)), chart)
}

func (a *OptionChainAnalyzer) PlotOpenInterestAnalysis(ctx context.Context, expiryIndex int) (string, error) {
	chain, err := a.requireChain("PlotOpenInterestAnalysis")
	if err != nil {
		return "", err
	}

	chart, err := BuildOpenInterestAnalysis(ctx, a.renderer, chain, expiryIndex)
	if err != nil {
		return "", fmt.Errorf("OptionChainAnalyzer.PlotOpenInterestAnalysis: %w", err)
	}

	return a.renderer.Save(chartFilename(chain, fmt.Sprintf("open_interest_exp%d", expiryIndex)), chart)
}

func (a *OptionChainAnalyzer) GetSummary() (*eventmodels.OptionChainSummary, error) {
	chain, err := a.requireChain("GetSummary")
	if err != nil {
		return nil, err
	}

	summary, err := eventmodels.NewOptionChainSummary(chain)
	if err != nil {
		return nil, fmt.Errorf("OptionChainAnalyzer.GetSummary: %w", err)
	}

	return summary, nil
}

func chartFilename(chain *eventmodels.OptionChain, name string) string {
	return fmt.Sprintf("%s_%s.png", strings.ToLower(chain.Security.String()), name)
}
