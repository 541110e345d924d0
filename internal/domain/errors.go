package domain

import "errors"

var (
	ErrMalformedIdentity = errors.New("malformed connection identity")
	ErrUnknownLinkState  = errors.New("unknown link state")
	ErrInvalidTransition = errors.New("invalid connection state transition")
	ErrSendFailure       = errors.New("fragment send failed")
	ErrConnectionClosed  = errors.New("connection closed")
)
