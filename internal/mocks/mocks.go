// Package mocks holds testify mocks of the core service interfaces.
package mocks

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"phonestore-crm/internal/core"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, in core.CreateOrderInput) (*core.Order, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.Order), args.Error(1)
}

func (m *MockOrderService) UpdateOrder(ctx context.Context, orderID int, in core.UpdateOrderInput) (*core.UpdateOrderResult, error) {
	args := m.Called(ctx, orderID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.UpdateOrderResult), args.Error(1)
}

func (m *MockOrderService) DeleteOrder(ctx context.Context, orderID, actorID int) error {
	args := m.Called(ctx, orderID, actorID)
	return args.Error(0)
}

func (m *MockOrderService) GetOrder(ctx context.Context, orderID int) (*core.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.Order), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, f core.OrderFilter) ([]core.Order, int, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]core.Order), args.Int(1), args.Error(2)
}

type MockDebtLedger struct {
	mock.Mock
}

func (m *MockDebtLedger) AppendTx(ctx context.Context, tx pgx.Tx, entries []core.DebtAdjustment) error {
	args := m.Called(ctx, tx, entries)
	return args.Error(0)
}

func (m *MockDebtLedger) Adjust(ctx context.Context, adj core.DebtAdjustment) (*core.DebtAdjustment, error) {
	args := m.Called(ctx, adj)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.DebtAdjustment), args.Error(1)
}

func (m *MockDebtLedger) Summary(ctx context.Context, userID int) (*core.DebtSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.DebtSummary), args.Error(1)
}

func (m *MockDebtLedger) History(ctx context.Context, userID int) ([]core.DebtAdjustment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]core.DebtAdjustment), args.Error(1)
}

func (m *MockDebtLedger) Outstanding(ctx context.Context) ([]core.ClientDebt, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]core.ClientDebt), args.Error(1)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) ListProducts(ctx context.Context, f core.ProductFilter) ([]core.Product, int, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]core.Product), args.Int(1), args.Error(2)
}

func (m *MockProductService) GetProduct(ctx context.Context, id int) (*core.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.Product), args.Error(1)
}

func (m *MockProductService) CreateProduct(ctx context.Context, in core.ProductInput) (*core.Product, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.Product), args.Error(1)
}

func (m *MockProductService) UpdateProduct(ctx context.Context, id int, in core.ProductInput) (*core.Product, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.Product), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*core.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, userID int) (*core.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context, role string, page, limit int) ([]core.User, int, error) {
	args := m.Called(ctx, role, page, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]core.User), args.Int(1), args.Error(2)
}

func (m *MockUserService) CreateUser(ctx context.Context, in core.UserInput) (*core.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.User), args.Error(1)
}

type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) Revenue(ctx context.Context, userID int) (*core.Revenue, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.Revenue), args.Error(1)
}

func (m *MockReportingService) OrderCounts(ctx context.Context, userID int) (*core.OrderCounts, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.OrderCounts), args.Error(1)
}

func (m *MockReportingService) UserStats(ctx context.Context, userID int) (*core.UserStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.UserStats), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, data any) error {
	args := m.Called(ctx, routingKey, data)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}
