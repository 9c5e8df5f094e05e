package eventservices

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/option-chain/src/eventmodels"
)

func ExportOptionChainToCsv(outDir string, chain *eventmodels.OptionChain, now time.Time) (string, error) {
	if chain == nil || len(chain.Records) == 0 {
		return "", fmt.Errorf("ExportOptionChainToCsv: %w", eventmodels.ErrEmptyOptionChain)
	}

	filename := fmt.Sprintf("%s_option_chain_%s.csv", strings.ToLower(chain.Security.String()), now.Format("2006-01-02_15-04-05"))
	outFilePath := filepath.Join(outDir, filename)

	// Create directory if it doesn't exist
	if _, err := os.Stat(outDir); os.IsNotExist(err) {
		if err := os.MkdirAll(outDir, os.ModePerm); err != nil {
			return "", fmt.Errorf("ExportOptionChainToCsv: failed to create directory: %w", err)
		}
	}

	file, err := os.Create(outFilePath)
	if err != nil {
		return "", fmt.Errorf("ExportOptionChainToCsv: failed to create file: %w", err)
	}
	defer file.Close()

	records := chain.Records
	if err := gocsv.MarshalFile(&records, file); err != nil {
		return "", fmt.Errorf("ExportOptionChainToCsv: failed to write to file: %w", err)
	}

	log.Infof("exported %d option chain records to %s", len(records), outFilePath)

	return outFilePath, nil
}

func ImportOptionChainFromCsv(inFilePath string, symbol eventmodels.StockSymbol, underlyingPrice float64) (*eventmodels.OptionChain, error) {
	file, err := os.Open(inFilePath)
	if err != nil {
		return nil, fmt.Errorf("ImportOptionChainFromCsv: failed to open file: %w", err)
	}
	defer file.Close()

	var records []eventmodels.OptionRecord
	if err := gocsv.UnmarshalFile(file, &records); err != nil {
		return nil, fmt.Errorf("ImportOptionChainFromCsv: failed to parse file: %w", err)
	}

	chain, err := eventmodels.NewOptionChain(symbol, underlyingPrice, records)
	if err != nil {
		return nil, fmt.Errorf("ImportOptionChainFromCsv: %w", err)
	}

	return chain, nil
}

// CsvOptionFetcher serves a chain previously written by ExportOptionChainToCsv. The csv
// carries no underlying price, so it is supplied by the caller.
type CsvOptionFetcher struct {
	Path            string
	UnderlyingPrice float64
}

func (f *CsvOptionFetcher) FetchOptionChain(ctx context.Context, symbol eventmodels.StockSymbol) (*eventmodels.OptionChain, error) {
	chain, err := ImportOptionChainFromCsv(f.Path, eventmodels.NewStockSymbol(string(symbol)), f.UnderlyingPrice)
	if err != nil {
		return nil, fmt.Errorf("CsvOptionFetcher.FetchOptionChain: %w", err)
	}

	log.WithContext(ctx).Infof("loaded %d option chain records from %s", len(chain.Records), f.Path)

	return chain, nil
}
