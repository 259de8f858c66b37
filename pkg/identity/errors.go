package identity

import "errors"

// ErrBadResponse is returned when the identity service replies with a body
// that does not follow its contract (not JSON, or missing fields).
var ErrBadResponse = errors.New("identity: malformed response")
