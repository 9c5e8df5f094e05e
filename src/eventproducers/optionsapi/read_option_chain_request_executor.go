package optionsapi

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jiaming2012/option-chain/src/charts"
	"github.com/jiaming2012/option-chain/src/eventmodels"
	"github.com/jiaming2012/option-chain/src/eventservices"
)

const DefaultChainTTL = 5 * time.Minute

type atmStrikeDTO struct {
	Security        eventmodels.StockSymbol `json:"security"`
	UnderlyingPrice float64                 `json:"underlying_price"`
	ATMStrike       float64                 `json:"atm_strike"`
}

// ReadOptionChainRequestExecutor serves API reads from fetched chains. Unfiltered chains
// are cached per symbol so that several views of one symbol cost a single fetch.
type ReadOptionChainRequestExecutor struct {
	Fetcher  eventservices.OptionChainFetcher
	Renderer *charts.Renderer
	chains   *cache.Cache
}

func NewReadOptionChainRequestExecutor(fetcher eventservices.OptionChainFetcher, renderer *charts.Renderer, ttl time.Duration) *ReadOptionChainRequestExecutor {
	if ttl <= 0 {
		ttl = DefaultChainTTL
	}

	return &ReadOptionChainRequestExecutor{
		Fetcher:  fetcher,
		Renderer: renderer,
		chains:   cache.New(ttl, 2*ttl),
	}
}

func (s *ReadOptionChainRequestExecutor) loadChain(ctx context.Context, req *eventmodels.ReadOptionChainRequest) (*eventmodels.OptionChain, error) {
	ctx, span := otel.Tracer("optionsapi").Start(ctx, "ReadOptionChainRequestExecutor.loadChain")
	defer span.End()

	key := req.Symbol.String()
	span.SetAttributes(attribute.String("symbol", key))

	var chain *eventmodels.OptionChain
	if cached, found := s.chains.Get(key); found {
		chain = cached.(*eventmodels.OptionChain)
		span.SetAttributes(attribute.Bool("cache_hit", true))
	} else {
		fetched, err := s.Fetcher.FetchOptionChain(ctx, req.Symbol)
		if err != nil {
			return nil, fmt.Errorf("loadChain: %w", err)
		}

		s.chains.SetDefault(key, fetched)
		chain = fetched
	}

	filtered := chain.FilterByOI(req.GetOICutoff())
	if len(filtered.Records) == 0 {
		return nil, fmt.Errorf("loadChain: oi cutoff %d: %w", req.GetOICutoff(), eventmodels.ErrEmptyOptionChain)
	}

	log.WithContext(ctx).Debugf("loadChain: %s has %d records after oi filter", key, len(filtered.Records))

	return filtered, nil
}

func (s *ReadOptionChainRequestExecutor) ServeSummary(ctx context.Context, req *eventmodels.ReadOptionChainRequest) (interface{}, error) {
	chain, err := s.loadChain(ctx, req)
	if err != nil {
		return nil, err
	}

	return eventmodels.NewOptionChainSummary(chain)
}

func (s *ReadOptionChainRequestExecutor) ServeChain(ctx context.Context, req *eventmodels.ReadOptionChainRequest) (interface{}, error) {
	return s.loadChain(ctx, req)
}

func (s *ReadOptionChainRequestExecutor) ServeATMStrike(ctx context.Context, req *eventmodels.ReadOptionChainRequest) (interface{}, error) {
	chain, err := s.loadChain(ctx, req)
	if err != nil {
		return nil, err
	}

	atm, err := chain.ATMStrike()
	if err != nil {
		return nil, err
	}

	return &atmStrikeDTO{
		Security:        chain.Security,
		UnderlyingPrice: chain.UnderlyingPrice,
		ATMStrike:       atm,
	}, nil
}

func (s *ReadOptionChainRequestExecutor) ServeChart(ctx context.Context, req *eventmodels.ReadOptionChainRequest) (interface{}, error) {
	chain, err := s.loadChain(ctx, req)
	if err != nil {
		return nil, err
	}

	switch req.Chart {
	case eventmodels.VolatilitySkewChart:
		chart, err := eventservices.BuildVolatilitySkew(ctx, s.Renderer, chain, req.ExpiryIndex)
		if err != nil {
			return nil, err
		}
		return eventmodels.PngChart{WriterTo: chart}, nil
	case eventmodels.TermStructureChart:
		chart, _, err := eventservices.BuildTermStructure(ctx, s.Renderer, chain, req.Strike)
		if err != nil {
			return nil, err
		}
		return eventmodels.PngChart{WriterTo: chart}, nil
	case eventmodels.OpenInterestChart:
		chart, err := eventservices.BuildOpenInterestAnalysis(ctx, s.Renderer, chain, req.ExpiryIndex)
		if err != nil {
			return nil, err
		}
		return eventmodels.PngChart{WriterTo: chart}, nil
	default:
		return nil, fmt.Errorf("ServeChart: %s: %w", req.Chart, eventmodels.ErrUnsupportedChartType)
	}
}
