package types

import "errors"

var (
	// ErrDataUnavailable: the price source failed or returned too little history.
	ErrDataUnavailable = errors.New("price data unavailable")
	// ErrClassificationUnparseable: the model reply lacks the expected fields.
	ErrClassificationUnparseable = errors.New("classification reply unparseable")
	// ErrProviderTimeout: an external call exceeded its time bound.
	ErrProviderTimeout = errors.New("provider timeout")
)
