package models

import "errors"

var (
	ErrValidation          = errors.New("required field is missing or invalid")
	ErrNoMatchingSuppliers = errors.New("no matching suppliers found for this category and city")
	ErrInvalidTransition   = errors.New("rfq status does not allow the requested transition")
	ErrNotAuthorized       = errors.New("provided user has no permission for this operation")
	ErrDuplicateBid        = errors.New("supplier already submitted a bid for this rfq")
	ErrNoRFQ               = errors.New("requested rfq does not exist")
	ErrBidNotFound         = errors.New("requested bid does not exist")
	ErrUpstreamUnavailable = errors.New("ai service request failed")
	ErrUnparseableResponse = errors.New("ai service returned output that could not be parsed")
)
