package eventmodels

import "github.com/google/uuid"

// RequestError ties a fetch failure to the request id that was logged for it.
type RequestError interface {
	error
	RequestID() uuid.UUID
	Unwrap() error
}

type requestError struct {
	ID  uuid.UUID
	Err error
}

func (e requestError) Error() string {
	return e.Err.Error()
}

func (e requestError) RequestID() uuid.UUID {
	return e.ID
}

func (e requestError) Unwrap() error {
	return e.Err
}

func NewRequestError(id uuid.UUID, err error) RequestError {
	return &requestError{
		ID:  id,
		Err: err,
	}
}
