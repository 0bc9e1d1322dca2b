package order

import "errors"

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrEmptyCart             = errors.New("cart is empty")
	ErrInvalidPayment        = errors.New("invalid payment method")
	ErrCheckoutValidation    = errors.New("checkout validation failed")
	ErrOrderSubmissionFailed = errors.New("order submission failed")
	ErrSubmissionInProgress  = errors.New("order submission already in progress")
)
