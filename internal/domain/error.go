package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrEndpointNotFound   = errors.New("Endpoint not found")
	ErrPaymentDeclined    = errors.New("payment declined")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrValidation         = errors.New("validation failed")
	ErrAttemptPending     = errors.New("payment attempt already pending")
	ErrAttemptFinished    = errors.New("payment attempt already finished")
	ErrNoPlanSelected     = errors.New("no plan selected")
)
