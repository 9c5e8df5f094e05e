package optionsapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jiaming2012/option-chain/src/eventmodels"
	"github.com/jiaming2012/option-chain/src/eventproducers/api"
)

func handle(router *mux.Router, pattern string, serve api.ServeFunc[*eventmodels.ReadOptionChainRequest]) {
	handlerFunc := func(w http.ResponseWriter, r *http.Request) {
		api.ApiRequestHandler(&eventmodels.ReadOptionChainRequest{}, serve, w, r)
	}

	// Configure the "http.route" for the HTTP instrumentation.
	handler := otelhttp.WithRouteTag(pattern, http.HandlerFunc(handlerFunc))
	router.Handle(pattern, handler).Methods(http.MethodGet)
}

// SetupHandler registers the /options routes on the root router. A subrouter would turn
// method mismatches into 404s.
func SetupHandler(router *mux.Router, executor *ReadOptionChainRequestExecutor) {
	handle(router, "/options/{symbol}/summary", executor.ServeSummary)
	handle(router, "/options/{symbol}/chain", executor.ServeChain)
	handle(router, "/options/{symbol}/atm", executor.ServeATMStrike)
	handle(router, "/options/{symbol}/charts/{chart:[a-z-]+}.png", executor.ServeChart)
}
