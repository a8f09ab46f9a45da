package gateway

import "context"

// MockGateway returns a canned remote order id or error and counts calls.
type MockGateway struct {
	RemoteID string
	Err      error

	CreateCalls int
	LastAmount  int64
}

func NewMockGateway() *MockGateway {
	return &MockGateway{RemoteID: "order_mock_1"}
}

func (m *MockGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error) {
	m.CreateCalls++
	m.LastAmount = amountMinor
	if m.Err != nil {
		return "", m.Err
	}
	return m.RemoteID, nil
}

var _ Gateway = (*MockGateway)(nil)
