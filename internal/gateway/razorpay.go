package gateway

import (
	"context"
	"fmt"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/sethvargo/go-retry"

	"github.com/navanithaadhav/Herbal-Hot/internal/domain"
	"github.com/navanithaadhav/Herbal-Hot/internal/logger"
)

// RazorpayGateway creates payment orders through the Razorpay REST API.
// The key secret stays inside the SDK client and is never logged.
type RazorpayGateway struct {
	client  *razorpay.Client
	timeout time.Duration
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{
		client:  razorpay.NewClient(keyID, keySecret),
		timeout: 5 * time.Second,
	}
}

// CreateOrder asks Razorpay for a payment order. Transient failures are
// retried with exponential backoff, the whole call bounded by ctx plus a
// local cap so a hung gateway cannot stall order creation.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	data := map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}

	var remoteID string
	backoff := retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		body, err := g.create(ctx, data)
		if err != nil {
			logger.Warn("razorpay order create failed", "receipt", receipt, "err", err)
			return retry.RetryableError(err)
		}
		id, ok := body["id"].(string)
		if ok && id != "" {
			remoteID = id
			return nil
		}
		// A 2xx without an id is a contract violation, retrying won't help.
		return fmt.Errorf("razorpay response has no order id")
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	return remoteID, nil
}

// create runs the ctx-less SDK call on its own goroutine so the caller's
// deadline still applies even if the HTTP request hangs.
func (g *RazorpayGateway) create(ctx context.Context, data map[string]interface{}) (map[string]interface{}, error) {
	type result struct {
		body map[string]interface{}
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		body, err := g.client.Order.Create(data, nil)
		ch <- result{body: body, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.body, r.err
	}
}

var _ Gateway = (*RazorpayGateway)(nil)
