package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oms/backend/internal/domain/billing"
	"github.com/oms/backend/internal/domain/order"
	"github.com/oms/backend/internal/domain/shared"
)

// InvoiceService issues and reads invoices. Issuance enforces invoice-number
// uniqueness and a live order reference; linking the invoice back onto the
// order is the lifecycle engine's job, not this service's.
type InvoiceService struct {
	invoiceRepo billing.Repository
	orderRepo   order.Repository
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(invoiceRepo billing.Repository, orderRepo order.Repository) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		orderRepo:   orderRepo,
	}
}

// Issue creates an invoice bound to an order
func (s *InvoiceService) Issue(ctx context.Context, orderID uuid.UUID, invoiceNumber string, invoiceDate time.Time, billedBy uuid.UUID) (*InvoiceResponse, error) {
	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		return nil, err
	}

	taken, err := s.invoiceRepo.ExistsByInvoiceNumber(ctx, invoiceNumber)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, billing.NewDuplicateInvoiceNumberError(invoiceNumber)
	}

	inv, err := billing.NewInvoice(orderID, invoiceNumber, invoiceDate, billedBy)
	if err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}

	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// GetByID retrieves an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// GetByOrderID retrieves the invoice bound to an order
func (s *InvoiceService) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// List retrieves invoices with pagination
func (s *InvoiceService) List(ctx context.Context, page, pageSize int) ([]InvoiceResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	filter := shared.DefaultFilter()
	filter.Page = page
	filter.PageSize = pageSize

	invoices, err := s.invoiceRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.invoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		responses = append(responses, ToInvoiceResponse(&invoices[i]))
	}
	return responses, total, nil
}
