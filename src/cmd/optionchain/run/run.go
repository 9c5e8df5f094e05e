package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/option-chain/src/charts"
	"github.com/jiaming2012/option-chain/src/eventmodels"
	"github.com/jiaming2012/option-chain/src/eventservices"
	"github.com/jiaming2012/option-chain/src/utils"
)

const (
	SymbolPrompt   = "For what security do you want an option chain?"
	PreviewRecords = 10
)

type RunArgs struct {
	Symbol          string
	OICutoff        *int
	ExpiryIndex     *int
	Strike          *float64
	ChartOutDir     string
	CsvOutDir       string
	FromFile        string
	FromCsv         string
	UnderlyingPrice float64
	ConfigPath      string
	NSE             eventservices.NSEOptionFetcherConfig
	Stdin           io.Reader
	Stdout          io.Writer
}

type RunResult struct {
	Summary    *eventmodels.OptionChainSummary
	ChartPaths []string
	CsvPath    string
}

func NewFetcher(args RunArgs) (eventservices.OptionChainFetcher, error) {
	switch {
	case args.FromFile != "" && args.FromCsv != "":
		return nil, fmt.Errorf("NewFetcher: --from-file and --from-csv are mutually exclusive")
	case args.FromFile != "":
		return eventservices.NewFileOptionFetcher(args.FromFile), nil
	case args.FromCsv != "":
		return &eventservices.CsvOptionFetcher{Path: args.FromCsv, UnderlyingPrice: args.UnderlyingPrice}, nil
	default:
		return eventservices.NewNSEOptionFetcher(args.NSE)
	}
}

func readSymbol(args RunArgs) (eventmodels.StockSymbol, error) {
	input := args.Symbol
	if strings.TrimSpace(input) == "" {
		fmt.Fprintln(args.Stdout, SymbolPrompt)
		if err := utils.ReadLine(args.Stdin, &input); err != nil {
			return "", fmt.Errorf("readSymbol: %w", err)
		}
	}

	symbol := eventmodels.NewStockSymbol(input)
	if err := symbol.Validate(); err != nil {
		return "", fmt.Errorf("readSymbol: %w", err)
	}

	return symbol, nil
}

// resolveOptions merges flags over the yaml config entry for the symbol.
func resolveOptions(args RunArgs, symbol eventmodels.StockSymbol) (eventmodels.OptionYAML, error) {
	resolved := eventmodels.OptionYAML{Symbol: symbol.String()}

	if args.ConfigPath != "" {
		config, err := LoadOptionsConfig(args.ConfigPath)
		if err != nil {
			return resolved, err
		}

		resolved = config.Resolve(symbol)
	}

	if args.OICutoff != nil {
		resolved.OICutoff = args.OICutoff
	}

	if args.ExpiryIndex != nil {
		resolved.ExpiryIndex = args.ExpiryIndex
	}

	if args.Strike != nil {
		resolved.Strike = args.Strike
	}

	return resolved, nil
}

func Run(ctx context.Context, args RunArgs) (*RunResult, error) {
	symbol, err := readSymbol(args)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	options, err := resolveOptions(args, symbol)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	fetcher, err := NewFetcher(args)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	analyzer := eventservices.NewOptionChainAnalyzer(fetcher, charts.NewRenderer(args.ChartOutDir))

	chain, err := analyzer.AnalyzeSymbol(ctx, symbol, options.GetOICutoff())
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	summary, err := analyzer.GetSummary()
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	fmt.Fprintln(args.Stdout, summary.String())

	result := &RunResult{Summary: summary}

	expiryIndex := options.GetExpiryIndex()
	plots := []func() (string, error){
		func() (string, error) { return analyzer.PlotVolatilitySkew(ctx, expiryIndex) },
		func() (string, error) { return analyzer.PlotTermStructure(ctx, options.Strike) },
		func() (string, error) { return analyzer.PlotOpenInterestAnalysis(ctx, expiryIndex) },
	}

	for _, plotFn := range plots {
		chartPath, err := plotFn()
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, fmt.Errorf("Run: %w", err)
			}

			log.Warnf("Run: skipping chart: %v", err)
			continue
		}

		result.ChartPaths = append(result.ChartPaths, chartPath)
	}

	fmt.Fprintf(args.Stdout, "\nFirst %d rows of option chain data:\n", PreviewRecords)
	fmt.Fprintln(args.Stdout, eventmodels.RecordsTable(chain.Records, PreviewRecords))

	if args.CsvOutDir != "" {
		csvPath, err := eventservices.ExportOptionChainToCsv(args.CsvOutDir, chain, time.Now())
		if err != nil {
			return nil, fmt.Errorf("Run: %w", err)
		}

		result.CsvPath = csvPath
	}

	return result, nil
}
