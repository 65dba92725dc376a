package cart

import "errors"

var (
	ErrInvalidQuantity  = errors.New("quantity must be a positive integer")
	ErrMissingProductID = errors.New("product has no id")
)
