package eventservices

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jiaming2012/option-chain/src/charts"
	"github.com/jiaming2012/option-chain/src/eventmodels"
)

func BuildVolatilitySkew(ctx context.Context, renderer *charts.Renderer, chain *eventmodels.OptionChain, expiryIndex int) (io.WriterTo, error) {
	_, span := otel.Tracer("charts").Start(ctx, "BuildVolatilitySkew")
	defer span.End()
	span.SetAttributes(attribute.Int("expiry_index", expiryIndex))

	records, found := chain.GroupByExpiry(eventmodels.DefaultOICutoff)[expiryIndex]
	if !found {
		return nil, fmt.Errorf("BuildVolatilitySkew: expiry index %d: %w", expiryIndex, eventmodels.ErrExpiryIndexNotFound)
	}

	title := fmt.Sprintf("%s - Volatility Skew (%s)", chain.Security, chain.Expiries[expiryIndex].Format("02-Jan-2006"))

	chart, err := renderer.VolatilitySkew(records, chain.UnderlyingPrice, title)
	if err != nil {
		return nil, fmt.Errorf("BuildVolatilitySkew: expiry index %d: %w", expiryIndex, err)
	}

	return chart, nil
}

// BuildTermStructure plots the given strike, or the ATM strike when strike is nil, and
// returns the strike it used.
func BuildTermStructure(ctx context.Context, renderer *charts.Renderer, chain *eventmodels.OptionChain, strike *float64) (io.WriterTo, float64, error) {
	_, span := otel.Tracer("charts").Start(ctx, "BuildTermStructure")
	defer span.End()

	var target float64
	if strike != nil {
		target = *strike
	} else {
		atm, err := chain.ATMStrike()
		if err != nil {
			return nil, 0, fmt.Errorf("BuildTermStructure: %w", err)
		}

		target = atm
	}

	span.SetAttributes(attribute.Float64("strike", target))

	if !chain.HasStrike(target) {
		return nil, target, fmt.Errorf("BuildTermStructure: strike %.2f: %w", target, eventmodels.ErrStrikeNotFound)
	}

	records, found := chain.GroupByStrike(eventmodels.DefaultOICutoff)[target]
	if !found {
		return nil, target, fmt.Errorf("BuildTermStructure: strike %.2f: %w", target, eventmodels.ErrNoTradedStrikeData)
	}

	title := fmt.Sprintf("%s - Term Structure (Strike: %.2f)", chain.Security, target)

	chart, err := renderer.TermStructure(records, target, title)
	if err != nil {
		return nil, target, fmt.Errorf("BuildTermStructure: %w", err)
	}

	return chart, target, nil
}

func BuildOpenInterestAnalysis(ctx context.Context, renderer *charts.Renderer, chain *eventmodels.OptionChain, expiryIndex int) (io.WriterTo, error) {
	_, span := otel.Tracer("charts").Start(ctx, "BuildOpenInterestAnalysis")
	defer span.End()
	span.SetAttributes(attribute.Int("expiry_index", expiryIndex))

	records, found := chain.GroupByExpiry(eventmodels.DefaultOICutoff)[expiryIndex]
	if !found {
		return nil, fmt.Errorf("BuildOpenInterestAnalysis: expiry index %d: %w", expiryIndex, eventmodels.ErrExpiryIndexNotFound)
	}

	title := fmt.Sprintf("%s - Open Interest Distribution (%s)", chain.Security, chain.Expiries[expiryIndex].Format("02-Jan-2006"))

	chart, err := renderer.OpenInterest(records, chain.UnderlyingPrice, title)
	if err != nil {
		return nil, fmt.Errorf("BuildOpenInterestAnalysis: expiry index %d: %w", expiryIndex, err)
	}

	return chart, nil
}
