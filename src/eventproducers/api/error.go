package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type errorResponse struct {
	Type      string `json:"type"`
	Msg       string `json:"msg"`
	RequestID string `json:"request_id,omitempty"`
}

func NewErrorResponse(errType string, message string) *errorResponse {
	return &errorResponse{
		Type: errType,
		Msg:  message,
	}
}

func SetResponse[T any](obj *T, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)

	if err := json.NewEncoder(w).Encode(obj); err != nil {
		return fmt.Errorf("SetResponse: encode: %w", err)
	}

	return nil
}

func SetPngResponse(chart io.WriterTo, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(200)

	if _, err := chart.WriteTo(w); err != nil {
		return fmt.Errorf("SetPngResponse: write: %w", err)
	}

	return nil
}

func SetErrorResponse(errType string, statusCode int, err error, w http.ResponseWriter) error {
	return SetErrorResponseWithID(errType, statusCode, err, "", w)
}

func SetErrorResponseWithID(errType string, statusCode int, err error, requestID string, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := NewErrorResponse(errType, err.Error())
	resp.RequestID = requestID
	if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
		return encodeErr
	}

	return nil
}
