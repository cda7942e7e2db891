package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/oms/backend/internal/domain/shared"
)

// Repository defines the persistence operations for invoices
type Repository interface {
	Save(ctx context.Context, inv *Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*Invoice, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Invoice, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
