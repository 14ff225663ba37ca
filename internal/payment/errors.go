package payment

import "errors"

var (
	ErrMissingPaymentID  = errors.New("payment id is required")
	ErrAmountBelowFee    = errors.New("payment amount is below the registration fee")
	ErrUnknownCategory   = errors.New("unknown vendor category")
	ErrInvalidSignature  = errors.New("invalid payment signature")
	ErrPaymentNotSettled = errors.New("payment is not captured or authorized")
	ErrAmountMismatch    = errors.New("gateway amount is lower than the receipt amount")
	ErrGatewayFailure    = errors.New("payment gateway request failed")
)
