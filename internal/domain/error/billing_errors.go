// Package error defines domain-specific errors for the card billing engine.
package error

import "errors"

// Billing domain errors.
var (
	// ErrCardNotFound is returned when a credit card is not found or does not
	// belong to the requesting user.
	ErrCardNotFound = errors.New("credit card not found")

	// ErrInvoiceNotFound is returned when an invoice is not found in the system.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrPurchaseNotFound is returned when a purchase is not found in the system.
	ErrPurchaseNotFound = errors.New("purchase not found")

	// ErrNotAuthorizedToModifyPurchase is returned when the user does not own
	// the card the purchase was billed against.
	ErrNotAuthorizedToModifyPurchase = errors.New("not authorized to modify purchase")

	// ErrCreditLimitExceeded is returned when a purchase value exceeds the
	// card's available credit.
	ErrCreditLimitExceeded = errors.New("credit limit exceeded")

	// ErrInvoiceNotOwnedByCard is returned when the target invoice does not
	// belong to the given card.
	ErrInvoiceNotOwnedByCard = errors.New("invoice does not belong to card")

	// ErrInvalidInstallments is returned when the installment count is below 1.
	ErrInvalidInstallments = errors.New("invalid installment count")

	// ErrInvalidPurchaseValue is returned when the purchase value is zero or negative.
	ErrInvalidPurchaseValue = errors.New("invalid purchase value")

	// ErrInvalidCardLimit is returned when the card limit is negative.
	ErrInvalidCardLimit = errors.New("invalid card limit")

	// ErrInvalidCycleDay is returned when a closing or due day is outside 1-31.
	ErrInvalidCycleDay = errors.New("invalid billing cycle day")

	// ErrInvalidPaymentAmount is returned when an explicit paid amount is not
	// greater than the amount already paid.
	ErrInvalidPaymentAmount = errors.New("invalid payment amount")

	// ErrInvalidInvoiceStatus is returned when a payment request carries an
	// unsupported status value.
	ErrInvalidInvoiceStatus = errors.New("invalid invoice status")
)

// BillingErrorCode defines error codes for billing errors.
// Format: BIL-XXYYYY where XX is category and YYYY is specific error.
type BillingErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeCardNotFound          BillingErrorCode = "BIL-010001"
	ErrCodeInvoiceNotFound       BillingErrorCode = "BIL-010002"
	ErrCodePurchaseNotFound      BillingErrorCode = "BIL-010003"
	ErrCodeNotAuthorizedPurchase BillingErrorCode = "BIL-010004"
	ErrCodeInvoiceNotOwned       BillingErrorCode = "BIL-010005"
	ErrCodeInvalidInstallments   BillingErrorCode = "BIL-010006"
	ErrCodeInvalidPurchaseValue  BillingErrorCode = "BIL-010007"
	ErrCodeInvalidCardLimit      BillingErrorCode = "BIL-010008"
	ErrCodeInvalidCycleDay       BillingErrorCode = "BIL-010009"
	ErrCodeInvalidPaymentAmount  BillingErrorCode = "BIL-010010"
	ErrCodeInvalidInvoiceStatus  BillingErrorCode = "BIL-010011"
	ErrCodeMissingBillingFields  BillingErrorCode = "BIL-010012"

	// Business rule errors (02XXXX)
	ErrCodeCreditLimitExceeded BillingErrorCode = "BIL-020001"

	// Throttling errors (03XXXX)
	ErrCodeTooManyRequests BillingErrorCode = "BIL-030001"
)

// BillingError represents a billing error with code and message.
type BillingError struct {
	Code    BillingErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *BillingError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *BillingError) Unwrap() error {
	return e.Err
}

// NewBillingError creates a new BillingError with the given code and message.
func NewBillingError(code BillingErrorCode, message string, err error) *BillingError {
	return &BillingError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
