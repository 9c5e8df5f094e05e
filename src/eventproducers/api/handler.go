package api

import (
	"context"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/option-chain/src/eventmodels"
)

type ApiRequest interface {
	ParseHTTPRequest(r *http.Request) error
	Validate(r *http.Request) error
}

// ServeFunc produces the response for an already parsed and validated request.
type ServeFunc[Request ApiRequest] func(ctx context.Context, req Request) (interface{}, error)

func ApiRequestHandler[Request ApiRequest](req Request, serve ServeFunc[Request], w http.ResponseWriter, r *http.Request) {
	if err := req.ParseHTTPRequest(r); err != nil {
		if respErr := SetErrorResponse("parser", 400, err, w); respErr != nil {
			log.Errorf("ApiRequestHandler: failed to parse http parameters: %v", respErr)
		}
		return
	}

	if err := req.Validate(r); err != nil {
		if respErr := SetErrorResponse("validation", 400, err, w); respErr != nil {
			log.Errorf("ApiRequestHandler: failed to validate http request: %v", respErr)
		}
		return
	}

	result, err := serve(r.Context(), req)
	if err != nil {
		webErr := eventmodels.ToWebError(err)

		requestID := ""
		var reqErr eventmodels.RequestError
		if errors.As(err, &reqErr) {
			requestID = reqErr.RequestID().String()
		}

		log.WithContext(r.Context()).WithField("request_id", requestID).Errorf("ApiRequestHandler: %v", err)

		if respErr := SetErrorResponseWithID("req", webErr.StatusCode, err, requestID, w); respErr != nil {
			log.Errorf("ApiRequestHandler: failed to set error response: %v", respErr)
		}
		return
	}

	switch v := result.(type) {
	case eventmodels.PngChart:
		if err := SetPngResponse(v, w); err != nil {
			log.Errorf("ApiRequestHandler: failed to set png response: %v", err)
		}
	default:
		if err := SetResponse(&result, w); err != nil {
			log.Errorf("ApiRequestHandler: failed to set response: %v", err)
		}
	}
}
