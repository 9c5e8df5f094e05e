package run

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jiaming2012/option-chain/src/charts"
	"github.com/jiaming2012/option-chain/src/eventproducers/optionsapi"
	"github.com/jiaming2012/option-chain/src/eventservices"
)

const shutdownTimeout = 10 * time.Second

type ServeArgs struct {
	Port     string
	Fetcher  eventservices.OptionChainFetcher
	CacheTTL time.Duration
}

func NewRouter(fetcher eventservices.OptionChainFetcher, cacheTTL time.Duration) *mux.Router {
	router := mux.NewRouter()

	executor := optionsapi.NewReadOptionChainRequestExecutor(fetcher, charts.NewRenderer(""), cacheTTL)
	optionsapi.SetupHandler(router, executor)

	return router
}

// Serve blocks until ctx is cancelled, then shuts the server down.
func Serve(ctx context.Context, args ServeArgs) error {
	srv := &http.Server{
		Handler: otelhttp.NewHandler(NewRouter(args.Fetcher, args.CacheTTL), "option-chain"),
		Addr:    fmt.Sprintf(":%s", args.Port),
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)

	// Start web server
	go func() {
		log.Infof("listening on :%s", args.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("Serve: failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("Serve: shutdown: %w", err)
	}

	log.Info("Serve: gracefully stopped!")

	return nil
}
