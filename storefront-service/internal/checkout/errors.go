package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart        = errors.New("cart is empty, nothing to checkout")
	ErrPaymentCancelled = errors.New("payment was not completed")
	ErrSubmissionFailed = errors.New("order submission failed")
	// ErrOrderRejected is a success:false answer to an order submission.
	ErrOrderRejected = errors.New("order rejected by backend")
	// ErrReferenceReused is a payment reference already spent on a
	// different cart, or on a checkout that completed.
	ErrReferenceReused = errors.New("payment reference already used")
)

// SubmissionError names the submission that stopped the checkout. The
// submissions before it were placed and are not rolled back.
type SubmissionError struct {
	Key string
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("order submission %s failed: %v", e.Key, e.Err)
}

func (e *SubmissionError) Unwrap() []error {
	return []error{ErrSubmissionFailed, e.Err}
}
