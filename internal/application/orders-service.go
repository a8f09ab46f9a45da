package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/navanithaadhav/Herbal-Hot/internal/domain"
	"github.com/navanithaadhav/Herbal-Hot/internal/gateway"
	"github.com/navanithaadhav/Herbal-Hot/internal/logger"
	"github.com/navanithaadhav/Herbal-Hot/internal/metrics"
	"github.com/navanithaadhav/Herbal-Hot/internal/repository"
	"github.com/navanithaadhav/Herbal-Hot/internal/signature"
)

// Lifecycle events emitted on the orders topic. Downstream collaborators
// (notification service, analytics) consume these; this service never does.
const (
	EventOrderCreated   = "order.created"
	EventOrderPaid      = "order.paid"
	EventOrderShipped   = "order.shipped"
	EventOrderDelivered = "order.delivered"
)

// EventPublisher pushes lifecycle events to interested collaborators.
// Publishing is always best-effort; a broker outage never fails a request.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event string, o *domain.Order) error
}

// Actor is the authenticated caller as established by the edge.
type Actor struct {
	UserID  string
	Email   string
	IsStaff bool
}

// CreateOrderInput carries everything the checkout flow collected.
// Prices arrive pre-computed and are snapshotted as-is after the
// total = items + tax + shipping check.
type CreateOrderInput struct {
	Items         []domain.OrderItem
	Shipping      domain.ShippingAddress
	PaymentMethod domain.PaymentMethod
	ItemsMinor    int64
	TaxMinor      int64
	ShippingMinor int64
	TotalMinor    int64
}

// ConfirmPaymentInput is the client-supplied payment confirmation payload.
// Nothing here is trusted until the signature checks out.
type ConfirmPaymentInput struct {
	PaymentID      string
	GatewayOrderID string
	Signature      string
	Status         string
	UpdateTime     string
	Email          string
}

type OrdersService struct {
	repo     repository.OrderRepo
	gw       gateway.Gateway
	verifier *signature.Verifier
	events   EventPublisher
	metrics  *metrics.Metrics
	currency string
}

func NewOrdersService(
	repo repository.OrderRepo,
	gw gateway.Gateway,
	verifier *signature.Verifier,
	events EventPublisher,
	m *metrics.Metrics,
	currency string,
) *OrdersService {
	return &OrdersService{
		repo:     repo,
		gw:       gw,
		verifier: verifier,
		events:   events,
		metrics:  m,
		currency: currency,
	}
}

// CreateOrder persists a new order and, for gateway-paid orders, asks the
// gateway for a remote payment order. The gateway call failing is non-fatal:
// the order is kept without a remote reference and checkout proceeds.
func (s *OrdersService) CreateOrder(ctx context.Context, actor Actor, in CreateOrderInput) (*domain.Order, error) {
	now := time.Now().UTC()
	o := &domain.Order{
		ID:            uuid.New(),
		UserID:        actor.UserID,
		UserEmail:     actor.Email,
		Items:         in.Items,
		Shipping:      in.Shipping,
		Currency:      s.currency,
		ItemsMinor:    in.ItemsMinor,
		TaxMinor:      in.TaxMinor,
		ShippingMinor: in.ShippingMinor,
		TotalMinor:    in.TotalMinor,
		PaymentMethod: in.PaymentMethod,
		CreatedAt:     now,
	}

	if errs := o.ValidateInvariants(); len(errs) > 0 {
		return nil, errs[0]
	}

	if err := s.repo.AddOrder(ctx, o); err != nil {
		logger.Warn("create order: store failed", "err", err)
		return nil, err
	}

	if o.RequiresGatewayVerification() {
		remoteID, err := s.gw.CreateOrder(ctx, o.TotalMinor, o.Currency, o.ID.String())
		if err != nil {
			// Checkout must not hard-fail on gateway trouble; the client
			// retries payment later against an order without a remote ref.
			s.metrics.GatewayError()
			logger.Warn("create order: gateway create failed", "order", o.ID, "err", err)
		} else {
			o.GatewayOrderID = remoteID
			if err := s.repo.SetGatewayOrderID(ctx, o.ID, remoteID); err != nil {
				logger.Warn("create order: saving gateway ref failed", "order", o.ID, "err", err)
			}
		}
	}

	s.publish(ctx, EventOrderCreated, o)
	s.metrics.Transition("created")
	return o, nil
}

// ConfirmPayment advances Created -> Paid.
//
// Gateway-paid orders demand all three confirmation fields and a valid
// HMAC signature; nothing is mutated on any failure. COD orders skip
// verification entirely and instead require a staff actor.
func (s *OrdersService) ConfirmPayment(ctx context.Context, actor Actor, orderID uuid.UUID, in ConfirmPaymentInput) (*domain.Order, error) {
	o, err := s.repo.GetOrderById(ctx, orderID)
	if err != nil {
		return nil, err
	}

	result := domain.PaymentResult{
		Status:     "COMPLETED",
		UpdateTime: time.Now().UTC().Format(time.RFC3339),
		Email:      o.UserEmail,
	}

	if o.RequiresGatewayVerification() {
		if strings.TrimSpace(in.PaymentID) == "" ||
			strings.TrimSpace(in.GatewayOrderID) == "" ||
			strings.TrimSpace(in.Signature) == "" {
			return nil, domain.ErrMissingPaymentFields
		}
		// The signature must be checked against the gateway reference stored
		// on this order at creation time. A genuine signature from some other
		// order must not pay this one, and an order that never got a gateway
		// reference has nothing to verify against.
		if o.GatewayOrderID == "" || in.GatewayOrderID != o.GatewayOrderID {
			s.metrics.VerificationFailed()
			logger.Error("payment confirmation for wrong gateway order",
				"order", o.ID, "payment_id", in.PaymentID)
			return nil, domain.ErrVerificationFailed
		}
		if !s.verifier.Verify(o.GatewayOrderID, in.PaymentID, in.Signature) {
			s.metrics.VerificationFailed()
			logger.Error("payment signature mismatch", "order", o.ID, "payment_id", in.PaymentID)
			return nil, domain.ErrVerificationFailed
		}
		result.PaymentID = in.PaymentID
	} else {
		if !actor.IsStaff {
			return nil, domain.ErrStaffOnly
		}
	}

	// Only now do the optional status fields get copied into trusted state.
	if in.Status != "" {
		result.Status = in.Status
	}
	if in.UpdateTime != "" {
		result.UpdateTime = in.UpdateTime
	}
	if in.Email != "" {
		result.Email = in.Email
	}

	if err := o.MarkPaid(time.Now().UTC(), result); err != nil {
		return nil, err
	}
	if err := s.repo.SavePaid(ctx, o); err != nil {
		return nil, err
	}

	s.publish(ctx, EventOrderPaid, o)
	s.metrics.Transition("paid")
	return o, nil
}

// MarkShipped advances Paid -> Shipped. Staff only; shipping before payment
// is rejected.
func (s *OrdersService) MarkShipped(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	o, err := s.repo.GetOrderById(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.MarkShipped(time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.repo.SaveShipped(ctx, o); err != nil {
		return nil, err
	}

	s.publish(ctx, EventOrderShipped, o)
	s.metrics.Transition("shipped")
	return o, nil
}

// MarkDelivered advances Shipped -> Delivered. Staff only.
func (s *OrdersService) MarkDelivered(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	o, err := s.repo.GetOrderById(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.MarkDelivered(time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.repo.SaveDelivered(ctx, o); err != nil {
		return nil, err
	}

	s.publish(ctx, EventOrderDelivered, o)
	s.metrics.Transition("delivered")
	return o, nil
}

// GetByID returns the order if the actor owns it or is staff.
func (s *OrdersService) GetByID(ctx context.Context, actor Actor, orderID uuid.UUID) (*domain.Order, error) {
	o, err := s.repo.GetOrderById(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff && o.UserID != actor.UserID {
		// Don't leak existence of other users' orders.
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

func (s *OrdersService) ListMine(ctx context.Context, actor Actor) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, actor.UserID)
}

func (s *OrdersService) ListRecent(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	return s.repo.ListRecent(ctx, limit)
}

func (s *OrdersService) publish(ctx context.Context, event string, o *domain.Order) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderEvent(ctx, event, o); err != nil {
		logger.Warn("event publish failed", "event", event, "order", o.ID, "err", err)
	}
}
