package service

import "errors"

// ErrCartUnavailable means the cart snapshot could not be read. The request
// fails rather than serving an empty cart that would overwrite the snapshot.
var ErrCartUnavailable = errors.New("cart storage unavailable")
