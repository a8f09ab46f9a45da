package gateway

import "context"

// Gateway is the single capability the core needs from the payment provider:
// pre-create a remote payment order and hand back its opaque identifier.
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error)
}
