package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oms/backend/internal/domain/billing"
	"github.com/oms/backend/internal/domain/order"
	"github.com/oms/backend/internal/domain/shared"
)

type mockInvoiceRepo struct {
	mock.Mock
}

func (m *mockInvoiceRepo) Save(ctx context.Context, inv *billing.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *mockInvoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Invoice, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockInvoiceRepo) ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error) {
	args := m.Called(ctx, invoiceNumber)
	return args.Bool(0), args.Error(1)
}

func (m *mockInvoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) Save(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *mockOrderRepo) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	args := m.Called(ctx, orderNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *mockOrderRepo) FindByOrderNoForUpdate(ctx context.Context, orderNo string) (*order.Order, error) {
	args := m.Called(ctx, orderNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *mockOrderRepo) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *mockOrderRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockOrderRepo) ExistsByOrderNo(ctx context.Context, orderNo string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, orderNo, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockOrderRepo) CountByStatus(ctx context.Context) (map[order.OrderStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[order.OrderStatus]int64), args.Error(1)
}

func testOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder(order.CompanySHHT, "SHHT-0009-25/26", "ORD-9", uuid.New(), uuid.New(), uuid.New(), decimal.Zero, "", order.StatusShortClosed)
	require.NoError(t, err)
	return o
}

func TestInvoiceService_Issue(t *testing.T) {
	invoiceRepo := new(mockInvoiceRepo)
	orderRepo := new(mockOrderRepo)
	svc := NewInvoiceService(invoiceRepo, orderRepo)

	o := testOrder(t)
	billedBy := uuid.New()
	date := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	invoiceRepo.On("ExistsByInvoiceNumber", mock.Anything, "INV-77").Return(false, nil)
	invoiceRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Invoice")).Return(nil)

	resp, err := svc.Issue(context.Background(), o.ID, "INV-77", date, billedBy)

	require.NoError(t, err)
	assert.Equal(t, "INV-77", resp.InvoiceNumber)
	assert.Equal(t, o.ID, resp.OrderID)
	assert.Equal(t, billedBy, resp.BilledBy)
	invoiceRepo.AssertExpectations(t)
}

func TestInvoiceService_Issue_DanglingOrder(t *testing.T) {
	invoiceRepo := new(mockInvoiceRepo)
	orderRepo := new(mockOrderRepo)
	svc := NewInvoiceService(invoiceRepo, orderRepo)

	orderID := uuid.New()
	orderRepo.On("FindByID", mock.Anything, orderID).Return(nil, shared.ErrNotFound)

	_, err := svc.Issue(context.Background(), orderID, "INV-77", time.Now(), uuid.New())

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
	invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestInvoiceService_Issue_DuplicateNumber(t *testing.T) {
	invoiceRepo := new(mockInvoiceRepo)
	orderRepo := new(mockOrderRepo)
	svc := NewInvoiceService(invoiceRepo, orderRepo)

	o := testOrder(t)
	orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	invoiceRepo.On("ExistsByInvoiceNumber", mock.Anything, "INV-77").Return(true, nil)

	_, err := svc.Issue(context.Background(), o.ID, "INV-77", time.Now(), uuid.New())

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "DUPLICATE_INVOICE_NUMBER", domainErr.Code)
	invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestInvoiceService_List_Defaults(t *testing.T) {
	invoiceRepo := new(mockInvoiceRepo)
	orderRepo := new(mockOrderRepo)
	svc := NewInvoiceService(invoiceRepo, orderRepo)

	invoiceRepo.On("FindAll", mock.Anything, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 1 && f.PageSize == 20
	})).Return([]billing.Invoice{}, nil)
	invoiceRepo.On("Count", mock.Anything, mock.Anything).Return(int64(0), nil)

	_, total, err := svc.List(context.Background(), 0, 0)

	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	invoiceRepo.AssertExpectations(t)
}
