package eventservices

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/option-chain/src/eventmodels"
)

// FileOptionFetcher reads a previously saved NSE option chain response from disk.
type FileOptionFetcher struct {
	Path string
}

func NewFileOptionFetcher(path string) *FileOptionFetcher {
	return &FileOptionFetcher{Path: path}
}

func (f *FileOptionFetcher) FetchOptionChain(ctx context.Context, symbol eventmodels.StockSymbol) (*eventmodels.OptionChain, error) {
	symbol = eventmodels.NewStockSymbol(string(symbol))

	body, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("FileOptionFetcher.FetchOptionChain: failed to read %s: %w", f.Path, err)
	}

	chain, err := ParseNSEOptionChain(body, symbol)
	if err != nil {
		return nil, fmt.Errorf("FileOptionFetcher.FetchOptionChain: %w", err)
	}

	log.WithContext(ctx).Infof("loaded %d option chain records for %s from %s", len(chain.Records), symbol, f.Path)

	return chain, nil
}
