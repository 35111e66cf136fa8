package token

import "errors"

// ErrInvalidToken is returned by Validate when a token's fields are out of
// bounds.
var ErrInvalidToken = errors.New("token: invalid token")
