package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethod is the closed set of ways an order can be paid.
type PaymentMethod string

const (
	// PaymentMethodRazorpay requires a signed gateway confirmation before
	// the order may become paid.
	PaymentMethodRazorpay PaymentMethod = "razorpay"
	// PaymentMethodCOD is settled out-of-band; payment is confirmed by a
	// staff actor, no gateway fields exist to verify.
	PaymentMethodCOD PaymentMethod = "cod"
)

// OrderItem is a snapshot of a catalog position at purchase time.
// Later catalog edits must not retroactively change historical orders.
type OrderItem struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	PriceMinor int64  `json:"price_minor"`
	Qty        int32  `json:"qty"`
	Image      string `json:"image"`
}

// ShippingAddress is snapshotted at creation like the items.
type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// PaymentResult is a closed record written only by the verified payment
// transition. Unverified client fields never land here.
type PaymentResult struct {
	PaymentID  string `json:"payment_id"`
	Status     string `json:"status"`
	UpdateTime string `json:"update_time"`
	Email      string `json:"email"`
}

type Order struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	UserEmail string    `json:"user_email"`

	Items    []OrderItem     `json:"items"`
	Shipping ShippingAddress `json:"shipping"`

	// All money is in minor currency units (paise).
	Currency      string `json:"currency"`
	ItemsMinor    int64  `json:"items_minor"`
	TaxMinor      int64  `json:"tax_minor"`
	ShippingMinor int64  `json:"shipping_minor"`
	TotalMinor    int64  `json:"total_minor"`

	PaymentMethod PaymentMethod `json:"payment_method"`
	// GatewayOrderID is assigned by the payment gateway when the method
	// requires online payment; empty otherwise or when the gateway call
	// failed at creation time.
	GatewayOrderID string `json:"gateway_order_id,omitempty"`

	IsPaid        bool          `json:"is_paid"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
	PaymentResult PaymentResult `json:"payment_result"`

	IsShipped   bool       `json:"is_shipped"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	IsDelivered bool       `json:"is_delivered"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// ValidateInvariants checks the creation-time invariants and returns every
// violation found. Prices are fixed here once and never recomputed later.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.UserID == "" {
		errs = append(errs, ErrUserRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	for _, it := range o.Items {
		if it.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if it.PriceMinor < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
	}
	if o.ItemsMinor < 0 || o.TaxMinor < 0 || o.ShippingMinor < 0 || o.TotalMinor < 0 {
		errs = append(errs, ErrAmountNegative)
	}
	if o.TotalMinor != o.ItemsMinor+o.TaxMinor+o.ShippingMinor {
		errs = append(errs, ErrTotalMismatch)
	}
	switch o.PaymentMethod {
	case PaymentMethodRazorpay, PaymentMethodCOD:
	default:
		errs = append(errs, ErrPaymentMethodInvalid)
	}

	return errs
}

// RequiresGatewayVerification reports whether a payment confirmation for
// this order must carry a valid gateway signature.
func (o *Order) RequiresGatewayVerification() bool {
	return o.PaymentMethod == PaymentMethodRazorpay
}

// MarkPaid advances Created -> Paid. IsPaid only ever goes false -> true;
// a second confirmation is rejected, it never re-saves over verified state.
func (o *Order) MarkPaid(at time.Time, res PaymentResult) error {
	if o.IsPaid {
		return ErrAlreadyPaid
	}
	o.IsPaid = true
	o.PaidAt = &at
	o.PaymentResult = res
	return nil
}

// MarkShipped advances Paid -> Shipped. Shipping an unpaid order is rejected.
func (o *Order) MarkShipped(at time.Time) error {
	if !o.IsPaid {
		return ErrNotPaid
	}
	if o.IsShipped {
		return ErrAlreadyShipped
	}
	o.IsShipped = true
	o.ShippedAt = &at
	return nil
}

// MarkDelivered advances Shipped -> Delivered, the terminal state.
func (o *Order) MarkDelivered(at time.Time) error {
	if !o.IsShipped {
		return ErrNotShipped
	}
	if o.IsDelivered {
		return ErrAlreadyDelivered
	}
	o.IsDelivered = true
	o.DeliveredAt = &at
	return nil
}
