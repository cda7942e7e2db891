package persistence

import (
	"context"

	"gorm.io/gorm"

	apporder "github.com/oms/backend/internal/application/order"
	"github.com/oms/backend/internal/domain/billing"
	"github.com/oms/backend/internal/domain/order"
)

// GormTransactionScope implements apporder.TransactionScope. Every
// repository handed to the callback shares the same *gorm.DB transaction,
// so a failure anywhere rolls back the whole unit of work.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn inside a single database transaction
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos apporder.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{
			orderRepo:   NewGormOrderRepository(tx),
			invoiceRepo: NewGormInvoiceRepository(tx),
		})
	})
}

type gormTransactionalRepositories struct {
	orderRepo   *GormOrderRepository
	invoiceRepo *GormInvoiceRepository
}

func (r *gormTransactionalRepositories) OrderRepo() order.Repository {
	return r.orderRepo
}

func (r *gormTransactionalRepositories) InvoiceRepo() billing.Repository {
	return r.invoiceRepo
}

var _ apporder.TransactionScope = (*GormTransactionScope)(nil)
