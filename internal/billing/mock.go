package billing

import (
	"context"
	"fmt"
	"sync"
)

// MockGateway is a gateway for tests. It succeeds unless ProcessPaymentFunc
// says otherwise.
type MockGateway struct {
	GatewayName string
	Methods     []string

	// ProcessPaymentFunc allows customizing the charge outcome.
	ProcessPaymentFunc func(ctx context.Context, req PaymentRequest) (*PaymentResult, error)

	mu sync.Mutex
	// CallLog tracks charges for test assertions.
	CallLog []string
}

func NewMockGateway(name string, methods ...string) *MockGateway {
	return &MockGateway{GatewayName: name, Methods: methods}
}

func (m *MockGateway) Name() string { return m.GatewayName }

func (m *MockGateway) Supports(method string) bool {
	for _, s := range m.Methods {
		if s == method {
			return true
		}
	}
	return false
}

func (m *MockGateway) ProcessPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	m.mu.Lock()
	m.CallLog = append(m.CallLog, fmt.Sprintf("ProcessPayment(%s, %s)", req.OrderID, req.Amount.StringFixed(2)))
	m.mu.Unlock()

	if m.ProcessPaymentFunc != nil {
		return m.ProcessPaymentFunc(ctx, req)
	}
	return &PaymentResult{Success: true, TransactionID: "mock_" + req.OrderID.String(), Message: "ok"}, nil
}

// Calls returns the number of ProcessPayment invocations.
func (m *MockGateway) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CallLog)
}
