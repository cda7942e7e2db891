package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	orderapp "github.com/oms/backend/internal/application/order"
	"github.com/oms/backend/internal/domain/billing"
	"github.com/oms/backend/internal/domain/numbering"
	"github.com/oms/backend/internal/domain/order"
	"github.com/oms/backend/internal/domain/shared"
	"github.com/oms/backend/internal/interfaces/http/dto"
	"github.com/oms/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockOrderRepository implements order.Repository for testing
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	args := m.Called(ctx, orderNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNoForUpdate(ctx context.Context, orderNo string) (*order.Order, error) {
	args := m.Called(ctx, orderNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) ExistsByOrderNo(ctx context.Context, orderNo string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, orderNo, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) CountByStatus(ctx context.Context) (map[order.OrderStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[order.OrderStatus]int64), args.Error(1)
}

// MockInvoiceRepository implements billing.Repository for testing
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Save(ctx context.Context, inv *billing.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Invoice, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error) {
	args := m.Called(ctx, invoiceNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSequenceAllocator implements numbering.SequenceAllocator for testing
type MockSequenceAllocator struct {
	mock.Mock
}

func (m *MockSequenceAllocator) Reserve(ctx context.Context, companyCode string) (numbering.Reservation, error) {
	args := m.Called(ctx, companyCode)
	return args.Get(0).(numbering.Reservation), args.Error(1)
}

// MockReferenceChecker implements order.ReferenceChecker for testing
type MockReferenceChecker struct {
	mock.Mock
}

func (m *MockReferenceChecker) ClientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockReferenceChecker) ContactPersonExists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockReferenceChecker) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type orderHandlerFixture struct {
	orderRepo   *MockOrderRepository
	invoiceRepo *MockInvoiceRepository
	sequences   *MockSequenceAllocator
	refs        *MockReferenceChecker
	actor       uuid.UUID
	engine      *gin.Engine
}

func newOrderHandlerFixture() *orderHandlerFixture {
	f := &orderHandlerFixture{
		orderRepo:   new(MockOrderRepository),
		invoiceRepo: new(MockInvoiceRepository),
		sequences:   new(MockSequenceAllocator),
		refs:        new(MockReferenceChecker),
		actor:       uuid.New(),
	}

	txScope := orderapp.NewNoOpTransactionScope(f.orderRepo, f.invoiceRepo)
	service := orderapp.NewOrderService(f.orderRepo, f.sequences, f.refs, txScope)
	h := NewOrderHandler(service)

	f.engine = gin.New()
	f.engine.Use(func(c *gin.Context) {
		c.Set(middleware.JWTUserIDKey, f.actor.String())
	})
	api := f.engine.Group("/api/v1")
	h.RegisterRoutes(api)
	return f
}

func (f *orderHandlerFixture) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func newPendingOrder(t *testing.T, orderNo string) *order.Order {
	t.Helper()
	o, err := order.NewOrder(
		order.CompanySHHT,
		"SHHT-0001-25/26",
		orderNo,
		uuid.New(),
		uuid.New(),
		uuid.New(),
		decimal.NewFromInt(1500),
		"",
		"",
	)
	require.NoError(t, err)
	return o
}

func TestOrderHandler_Create(t *testing.T) {
	f := newOrderHandlerFixture()

	f.refs.On("ClientExists", mock.Anything, mock.Anything).Return(true, nil)
	f.refs.On("ContactPersonExists", mock.Anything, mock.Anything).Return(true, nil)
	f.refs.On("UserExists", mock.Anything, mock.Anything).Return(true, nil)
	f.orderRepo.On("ExistsByOrderNo", mock.Anything, "PO-1001", uuid.Nil).Return(false, nil)
	f.sequences.On("Reserve", mock.Anything, "SHHT").
		Return(numbering.Reservation{Prefix: "SHHT", Number: 42, Postfix: "25/26", DocumentNumber: "SHHT-0042-25/26"}, nil)
	f.orderRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	w := f.do(http.MethodPost, "/api/v1/orders", gin.H{
		"company":           "SHHT",
		"order_no":          "PO-1001",
		"client_id":         uuid.New().String(),
		"contact_person_id": uuid.New().String(),
		"checked_by":        uuid.New().String(),
		"total_amount":      "1500",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "SHHT-0042-25/26", data["so_no"])
	assert.Equal(t, "pending", data["status"])
	f.orderRepo.AssertExpectations(t)
}

func TestOrderHandler_Create_InvalidBody(t *testing.T) {
	f := newOrderHandlerFixture()

	w := f.do(http.MethodPost, "/api/v1/orders", gin.H{"company": "SHHT"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
}

func TestOrderHandler_Create_DuplicateOrderNo(t *testing.T) {
	f := newOrderHandlerFixture()

	f.refs.On("ClientExists", mock.Anything, mock.Anything).Return(true, nil)
	f.refs.On("ContactPersonExists", mock.Anything, mock.Anything).Return(true, nil)
	f.refs.On("UserExists", mock.Anything, mock.Anything).Return(true, nil)
	f.orderRepo.On("ExistsByOrderNo", mock.Anything, "PO-1001", uuid.Nil).Return(true, nil)

	w := f.do(http.MethodPost, "/api/v1/orders", gin.H{
		"company":           "SHHT",
		"order_no":          "PO-1001",
		"client_id":         uuid.New().String(),
		"contact_person_id": uuid.New().String(),
		"checked_by":        uuid.New().String(),
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeAlreadyExists, resp.Error.Code)
}

func TestOrderHandler_Create_UnknownCompany(t *testing.T) {
	f := newOrderHandlerFixture()

	w := f.do(http.MethodPost, "/api/v1/orders", gin.H{
		"company":           "ACME",
		"order_no":          "PO-1001",
		"client_id":         uuid.New().String(),
		"contact_person_id": uuid.New().String(),
		"checked_by":        uuid.New().String(),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeInvalidInput, resp.Error.Code)
}

func TestOrderHandler_GetByID_NotFound(t *testing.T) {
	f := newOrderHandlerFixture()

	id := uuid.New()
	f.orderRepo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	w := f.do(http.MethodGet, "/api/v1/orders/"+id.String(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
}

func TestOrderHandler_GetByID_InvalidID(t *testing.T) {
	f := newOrderHandlerFixture()

	w := f.do(http.MethodGet, "/api/v1/orders/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderHandler_GetByOrderNo(t *testing.T) {
	f := newOrderHandlerFixture()

	o := newPendingOrder(t, "PO-2001")
	f.orderRepo.On("FindByOrderNo", mock.Anything, "PO-2001").Return(o, nil)

	w := f.do(http.MethodGet, "/api/v1/orders/by-no/PO-2001", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "PO-2001", data["order_no"])
}

func TestOrderHandler_List(t *testing.T) {
	f := newOrderHandlerFixture()

	orders := []order.Order{*newPendingOrder(t, "PO-1"), *newPendingOrder(t, "PO-2")}
	f.orderRepo.On("FindAll", mock.Anything, mock.Anything).Return(orders, nil)
	f.orderRepo.On("Count", mock.Anything, mock.Anything).Return(int64(2), nil)

	w := f.do(http.MethodGet, "/api/v1/orders?company=SHHT&page=1&page_size=20", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(2), resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.Page)
}

func TestOrderHandler_Delete(t *testing.T) {
	f := newOrderHandlerFixture()

	o := newPendingOrder(t, "PO-3001")
	f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.orderRepo.On("Delete", mock.Anything, o.ID).Return(nil)

	w := f.do(http.MethodDelete, "/api/v1/orders/"+o.ID.String(), nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "PO-3001", data["order_no"])
	f.orderRepo.AssertCalled(t, "Delete", mock.Anything, o.ID)
}

func TestOrderHandler_Transition_Dispatch(t *testing.T) {
	f := newOrderHandlerFixture()

	o := newPendingOrder(t, "PO-4001")
	f.orderRepo.On("FindByOrderNoForUpdate", mock.Anything, "PO-4001").Return(o, nil)
	f.refs.On("UserExists", mock.Anything, mock.Anything).Return(true, nil)
	f.orderRepo.On("Save", mock.Anything, o).Return(nil)

	w := f.do(http.MethodPost, "/api/v1/orders/transition", gin.H{
		"order_no": "PO-4001",
		"status":   "dispatched",
		"extra":    gin.H{"dispatched_by": uuid.New().String()},
	})

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "dispatched", data["status"])
}

func TestOrderHandler_Transition_MissingDispatchedBy(t *testing.T) {
	f := newOrderHandlerFixture()

	o := newPendingOrder(t, "PO-4002")
	f.orderRepo.On("FindByOrderNoForUpdate", mock.Anything, "PO-4002").Return(o, nil)

	w := f.do(http.MethodPost, "/api/v1/orders/transition", gin.H{
		"order_no": "PO-4002",
		"status":   "dispatched",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeMissingRequiredField, resp.Error.Code)
	require.NotNil(t, resp.Error.Details)
	assert.Equal(t, "dispatched_by", resp.Error.Details["field"])
}

func TestOrderHandler_Transition_Invalid(t *testing.T) {
	f := newOrderHandlerFixture()

	o := newPendingOrder(t, "PO-4003")
	f.orderRepo.On("FindByOrderNoForUpdate", mock.Anything, "PO-4003").Return(o, nil)

	// pending orders cannot complete directly
	w := f.do(http.MethodPost, "/api/v1/orders/transition", gin.H{
		"order_no": "PO-4003",
		"status":   "completed",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeInvalidTransition, resp.Error.Code)
	require.NotNil(t, resp.Error.Details)
	assert.Equal(t, "pending", resp.Error.Details["current_status"])
	assert.Equal(t, "completed", resp.Error.Details["requested_status"])
}

func TestOrderHandler_Transition_Invoice(t *testing.T) {
	f := newOrderHandlerFixture()

	o := newPendingOrder(t, "PO-4004")
	require.NoError(t, o.Dispatch(uuid.New(), f.actor))
	require.NoError(t, o.MarkPartialPending())
	require.NoError(t, o.ShortClose())

	f.orderRepo.On("FindByOrderNoForUpdate", mock.Anything, "PO-4004").Return(o, nil)
	f.invoiceRepo.On("ExistsByInvoiceNumber", mock.Anything, "INV-2025-100").Return(false, nil)
	f.invoiceRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.orderRepo.On("Save", mock.Anything, o).Return(nil)

	w := f.do(http.MethodPost, "/api/v1/orders/transition", gin.H{
		"order_no": "PO-4004",
		"status":   "invoiced",
		"extra": gin.H{
			"invoice_number": "INV-2025-100",
			"invoice_date":   "2025-08-31",
		},
	})

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "invoiced", data["status"])
	f.invoiceRepo.AssertExpectations(t)
}

func TestOrderHandler_Transition_DuplicateInvoiceNumber(t *testing.T) {
	f := newOrderHandlerFixture()

	o := newPendingOrder(t, "PO-4005")
	require.NoError(t, o.Dispatch(uuid.New(), f.actor))
	require.NoError(t, o.MarkPartialPending())
	require.NoError(t, o.ShortClose())

	f.orderRepo.On("FindByOrderNoForUpdate", mock.Anything, "PO-4005").Return(o, nil)
	f.invoiceRepo.On("ExistsByInvoiceNumber", mock.Anything, "INV-2025-100").Return(true, nil)

	w := f.do(http.MethodPost, "/api/v1/orders/transition", gin.H{
		"order_no": "PO-4005",
		"status":   "invoiced",
		"extra": gin.H{
			"invoice_number": "INV-2025-100",
			"invoice_date":   "2025-08-31",
		},
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeDuplicateInvoiceNumber, resp.Error.Code)
}

func TestOrderHandler_Transition_Unauthenticated(t *testing.T) {
	f := &orderHandlerFixture{
		orderRepo:   new(MockOrderRepository),
		invoiceRepo: new(MockInvoiceRepository),
		sequences:   new(MockSequenceAllocator),
		refs:        new(MockReferenceChecker),
	}
	txScope := orderapp.NewNoOpTransactionScope(f.orderRepo, f.invoiceRepo)
	service := orderapp.NewOrderService(f.orderRepo, f.sequences, f.refs, txScope)
	h := NewOrderHandler(service)

	// no user id middleware
	f.engine = gin.New()
	api := f.engine.Group("/api/v1")
	h.RegisterRoutes(api)

	w := f.do(http.MethodPost, "/api/v1/orders/transition", gin.H{
		"order_no": "PO-5001",
		"status":   "cancelled",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOrderHandler_AllowedNext(t *testing.T) {
	f := newOrderHandlerFixture()

	o := newPendingOrder(t, "PO-6001")
	f.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

	w := f.do(http.MethodGet, "/api/v1/orders/"+o.ID.String()+"/allowed-next", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "pending", data["current"])
	assert.Equal(t, []interface{}{"dispatched"}, data["allowed"])
}

func TestOrderHandler_StatusSummary(t *testing.T) {
	f := newOrderHandlerFixture()

	f.orderRepo.On("CountByStatus", mock.Anything).Return(map[order.OrderStatus]int64{
		order.StatusPending:   3,
		order.StatusCompleted: 7,
	}, nil)

	w := f.do(http.MethodGet, "/api/v1/orders/summary", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(10), data["total"])
	counts := data["counts"].(map[string]interface{})
	assert.Equal(t, float64(3), counts["pending"])
}
