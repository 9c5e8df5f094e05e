package eventservices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jiaming2012/option-chain/src/eventmodels"
)

// NSEOptionChainIndicesURL is the static indices endpoint. NSE moved to dynamic endpoints
// with extra session checks, so live requests against it are expected to fail.
const NSEOptionChainIndicesURL = "https://www.nseindia.com/api/option-chain-indices"

const (
	DefaultFetchTimeout  = 30 * time.Second
	DefaultMaxRetries    = 3
	DefaultBackoffFactor = time.Second

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/97.0.4692.99 Safari/537.36"
)

type OptionChainFetcher interface {
	FetchOptionChain(ctx context.Context, symbol eventmodels.StockSymbol) (*eventmodels.OptionChain, error)
}

type NSEOptionFetcherConfig struct {
	BaseURL       string
	Timeout       time.Duration
	MaxRetries    int
	BackoffFactor time.Duration
}

type NSEOptionFetcher struct {
	BaseURL       string
	Timeout       time.Duration
	MaxRetries    int
	BackoffFactor time.Duration
	Headers       http.Header
	client        *http.Client
	attempts      metric.Int64Counter
}

type nseResponse struct {
	Body        []byte
	ContentType string
}

func NewNSEOptionFetcher(cfg NSEOptionFetcherConfig) (*NSEOptionFetcher, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = NSEOptionChainIndicesURL
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultFetchTimeout
	}

	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}

	if cfg.BackoffFactor <= 0 {
		cfg.BackoffFactor = DefaultBackoffFactor
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("NewNSEOptionFetcher: failed to create cookie jar: %w", err)
	}

	attempts, err := otel.Meter("eventservices").Int64Counter(
		"nse.fetch.attempts",
		metric.WithDescription("HTTP attempts made against the NSE option chain endpoint"),
	)
	if err != nil {
		return nil, fmt.Errorf("NewNSEOptionFetcher: failed to create counter: %w", err)
	}

	// Accept-Encoding is left to the transport so gzip bodies are decoded transparently.
	headers := http.Header{}
	headers.Set("User-Agent", browserUserAgent)
	headers.Set("Accept-Language", "en-US,en;q=0.9")
	headers.Set("Accept", "application/json, text/plain, */*")

	return &NSEOptionFetcher{
		BaseURL:       cfg.BaseURL,
		Timeout:       cfg.Timeout,
		MaxRetries:    cfg.MaxRetries,
		BackoffFactor: cfg.BackoffFactor,
		Headers:       headers,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Jar:       jar,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		attempts: attempts,
	}, nil
}

// FetchOptionChain primes the session cookies with a first request, then reads the
// option chain with a second one.
func (f *NSEOptionFetcher) FetchOptionChain(ctx context.Context, symbol eventmodels.StockSymbol) (*eventmodels.OptionChain, error) {
	symbol = eventmodels.NewStockSymbol(string(symbol))
	if err := symbol.Validate(); err != nil {
		return nil, fmt.Errorf("NSEOptionFetcher.FetchOptionChain: %w", err)
	}

	tracer := otel.Tracer("NSEOptionFetcher")
	ctx, span := tracer.Start(ctx, "NSEOptionFetcher.FetchOptionChain", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	requestID := uuid.New()
	span.SetAttributes(attribute.String("symbol", symbol.String()), attribute.String("request_id", requestID.String()))

	logger := log.WithContext(ctx).WithFields(log.Fields{
		"request_id": requestID,
		"symbol":     symbol,
	})

	logger.Warnf("NSE API endpoint is deprecated. Fetching %s is expected to fail: NSE now serves option chains from dynamic endpoints with additional session checks", symbol)

	fail := func(err error) (*eventmodels.OptionChain, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Errorf("failed to fetch option chain: %v", err)
		return nil, eventmodels.NewRequestError(requestID, err)
	}

	endpoint, err := f.endpoint(symbol)
	if err != nil {
		return fail(fmt.Errorf("NSEOptionFetcher.FetchOptionChain: %w", err))
	}

	if _, err := f.get(ctx, endpoint, logger); err != nil {
		return fail(fmt.Errorf("NSEOptionFetcher.FetchOptionChain: initial request: %w", err))
	}

	res, err := f.get(ctx, endpoint, logger)
	if err != nil {
		return fail(fmt.Errorf("NSEOptionFetcher.FetchOptionChain: option chain request: %w", err))
	}

	if !strings.Contains(res.ContentType, "application/json") {
		return fail(fmt.Errorf("NSEOptionFetcher.FetchOptionChain: content-type %q: %w", res.ContentType, eventmodels.ErrNonJSONResponse))
	}

	chain, err := ParseNSEOptionChain(res.Body, symbol)
	if err != nil {
		return fail(fmt.Errorf("NSEOptionFetcher.FetchOptionChain: %w", err))
	}

	logger.Infof("fetched %d option chain records", len(chain.Records))

	return chain, nil
}

func (f *NSEOptionFetcher) endpoint(symbol eventmodels.StockSymbol) (string, error) {
	u, err := url.Parse(f.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", f.BaseURL, err)
	}

	q := u.Query()
	q.Set("symbol", symbol.String())
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func (f *NSEOptionFetcher) get(ctx context.Context, endpoint string, logger *log.Entry) (*nseResponse, error) {
	var result *nseResponse
	attempt := 0

	operation := func() error {
		attempt++
		f.attempts.Add(ctx, 1)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		req.Header = f.Headers.Clone()

		res, err := f.client.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer res.Body.Close()

		body, err := io.ReadAll(res.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		if isRetryableStatus(res.StatusCode) {
			return fmt.Errorf("http status %s", res.Status)
		}

		if res.StatusCode >= http.StatusBadRequest {
			return backoff.Permanent(fmt.Errorf("http status %s", res.Status))
		}

		result = &nseResponse{
			Body:        body,
			ContentType: res.Header.Get("Content-Type"),
		}

		return nil
	}

	notify := func(err error, wait time.Duration) {
		logger.Warnf("attempt %d of %d failed: %v, retrying in %v", attempt, f.MaxRetries+1, err, wait)
	}

	if err := backoff.RetryNotify(operation, f.newBackOff(ctx), notify); err != nil {
		return nil, err
	}

	return result, nil
}

// newBackOff waits BackoffFactor, 2*BackoffFactor, 4*BackoffFactor... between attempts.
func (f *NSEOptionFetcher) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.BackoffFactor
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(f.MaxRetries)), ctx)
}

func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}

	return false
}

func ParseNSEOptionChain(body []byte, symbol eventmodels.StockSymbol) (*eventmodels.OptionChain, error) {
	var dto eventmodels.NSEOptionChainResponseDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("ParseNSEOptionChain: failed to decode json: %v: %w", err, eventmodels.ErrInvalidResponse)
	}

	chain, err := dto.ToModel(symbol)
	if err != nil {
		return nil, fmt.Errorf("ParseNSEOptionChain: %w", err)
	}

	return chain, nil
}
