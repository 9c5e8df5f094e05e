package eventmodels

import (
	"errors"
	"net/http"
)

type WebError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *WebError) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}

	return e.Message
}

func (e *WebError) Unwrap() error {
	return e.Cause
}

func NewWebError(statusCode int, message string, cause error) *WebError {
	return &WebError{
		StatusCode: statusCode,
		Message:    message,
		Cause:      cause,
	}
}

// ToWebError maps analysis errors onto the status an API client should see.
func ToWebError(err error) *WebError {
	var webErr *WebError
	if errors.As(err, &webErr) {
		return webErr
	}

	switch {
	case errors.Is(err, ErrSymbolRequired), errors.Is(err, ErrUnsupportedChartType):
		return NewWebError(http.StatusBadRequest, "bad request", err)
	case errors.Is(err, ErrExpiryIndexNotFound), errors.Is(err, ErrStrikeNotFound), errors.Is(err, ErrNoTradedStrikeData), errors.Is(err, ErrNoValidIVData), errors.Is(err, ErrEmptyOptionChain):
		return NewWebError(http.StatusNotFound, "not found", err)
	case errors.Is(err, ErrInvalidResponse), errors.Is(err, ErrNonJSONResponse):
		return NewWebError(http.StatusBadGateway, "upstream error", err)
	default:
		return NewWebError(http.StatusInternalServerError, "internal error", err)
	}
}
