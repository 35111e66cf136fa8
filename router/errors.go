package router

import "errors"

var (
	// ErrUnknownToken is returned when token_in or token_out is not present
	// in the liquidity graph.
	ErrUnknownToken = errors.New("router: unknown token")
	// ErrInvalidAmount is returned when amount_in is not a positive integer.
	ErrInvalidAmount = errors.New("router: amount_in must be positive")
	// ErrCancelled is returned when the caller's context is cancelled before
	// find_routes completes; the result is always empty.
	ErrCancelled = errors.New("router: cancelled")
)
