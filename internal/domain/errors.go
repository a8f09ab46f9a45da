package domain

import "errors"

var (
	// Creation-time validation.
	ErrUserRequired         = errors.New("user_id is required")
	ErrItemsRequired        = errors.New("order must contain at least one item")
	ErrItemQtyInvalid       = errors.New("item qty must be greater than zero")
	ErrItemPriceInvalid     = errors.New("item price must be non-negative")
	ErrAmountNegative       = errors.New("money fields must be non-negative")
	ErrTotalMismatch        = errors.New("total must equal items + tax + shipping")
	ErrPaymentMethodInvalid = errors.New("unknown payment method")

	// Lookup / persistence.
	ErrOrderNotFound = errors.New("order not found")

	// Payment confirmation.
	ErrMissingPaymentFields = errors.New("missing required payment fields")
	ErrVerificationFailed   = errors.New("payment signature verification failed")
	ErrStaffOnly            = errors.New("staff privileges required")

	// Lifecycle preconditions. IsPaid/IsShipped/IsDelivered only ever go
	// false -> true, in that order.
	ErrAlreadyPaid      = errors.New("order is already paid")
	ErrNotPaid          = errors.New("order is not paid yet")
	ErrAlreadyShipped   = errors.New("order is already shipped")
	ErrNotShipped       = errors.New("order is not shipped yet")
	ErrAlreadyDelivered = errors.New("order is already delivered")

	// Gateway adapter.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)
