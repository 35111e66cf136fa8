package search

import "errors"

var (
	// ErrUnknownToken is returned when token_in or token_out is not present
	// in the graph snapshot being searched.
	ErrUnknownToken = errors.New("search: unknown token")
	// ErrCancelled is returned when ctx is done before the search completes.
	ErrCancelled = errors.New("search: cancelled")
)
