package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/navanithaadhav/Herbal-Hot/internal/domain"
)

// MockOrderRepo is a configurable in-memory OrderRepo for tests. It applies
// the same conditional-update guards as the Postgres implementation and
// counts calls so tests can assert "no mutation happened".
type MockOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*domain.Order

	AddErr  error
	GetErr  error
	SaveErr error

	AddCalls           int
	SavePaidCalls      int
	SaveShippedCalls   int
	SaveDeliveredCalls int
}

func NewMockOrderRepo() *MockOrderRepo {
	return &MockOrderRepo{orders: make(map[uuid.UUID]*domain.Order)}
}

// Seed stores an order directly, bypassing counters.
func (m *MockOrderRepo) Seed(o *domain.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.orders[o.ID] = &cp
}

func (m *MockOrderRepo) AddOrder(ctx context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddCalls++
	if m.AddErr != nil {
		return m.AddErr
	}
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *MockOrderRepo) GetOrderById(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *MockOrderRepo) SetGatewayOrderID(ctx context.Context, id uuid.UUID, gatewayOrderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.GatewayOrderID = gatewayOrderID
	return nil
}

func (m *MockOrderRepo) SavePaid(ctx context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SavePaidCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	stored, ok := m.orders[o.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if stored.IsPaid {
		return domain.ErrAlreadyPaid
	}
	stored.IsPaid = true
	stored.PaidAt = o.PaidAt
	stored.PaymentResult = o.PaymentResult
	return nil
}

func (m *MockOrderRepo) SaveShipped(ctx context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveShippedCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	stored, ok := m.orders[o.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if !stored.IsPaid {
		return domain.ErrNotPaid
	}
	if stored.IsShipped {
		return domain.ErrAlreadyShipped
	}
	stored.IsShipped = true
	stored.ShippedAt = o.ShippedAt
	return nil
}

func (m *MockOrderRepo) SaveDelivered(ctx context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveDeliveredCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	stored, ok := m.orders[o.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if !stored.IsShipped {
		return domain.ErrNotShipped
	}
	if stored.IsDelivered {
		return domain.ErrAlreadyDelivered
	}
	stored.IsDelivered = true
	stored.DeliveredAt = o.DeliveredAt
	return nil
}

func (m *MockOrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *MockOrderRepo) ListRecent(ctx context.Context, limit int) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.orders {
		out = append(out, *o)
	}
	// Newest first, like the ORDER BY created_at DESC in the SQL repo.
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Stored returns the persisted state of an order, for assertions.
func (m *MockOrderRepo) Stored(id uuid.UUID) *domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil
	}
	cp := *o
	return &cp
}

var _ OrderRepo = (*MockOrderRepo)(nil)
