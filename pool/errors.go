package pool

import "errors"

// ErrInvalidPool is returned by Validate, and by the liquidity graph's
// UpsertPool, for a malformed pool. Malformed pools are never silently
// accepted.
var ErrInvalidPool = errors.New("pool: invalid pool")
