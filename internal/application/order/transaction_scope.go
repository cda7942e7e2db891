package order

import (
	"context"

	"github.com/oms/backend/internal/domain/billing"
	"github.com/oms/backend/internal/domain/order"
)

// TransactionScope provides transactional access to the lifecycle repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically. A status transition and its side effects (invoice
// issuance) always run inside one scope.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories a transition
// touches, all sharing the same underlying transaction.
type TransactionalRepositories interface {
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() order.Repository
	// InvoiceRepo returns the invoice repository scoped to the current transaction
	InvoiceRepo() billing.Repository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful for tests where the repositories are mocks.
type NoOpTransactionScope struct {
	orderRepo   order.Repository
	invoiceRepo billing.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(orderRepo order.Repository, invoiceRepo billing.Repository) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:   orderRepo,
		invoiceRepo: invoiceRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OrderRepo returns the order repository
func (s *NoOpTransactionScope) OrderRepo() order.Repository {
	return s.orderRepo
}

// InvoiceRepo returns the invoice repository
func (s *NoOpTransactionScope) InvoiceRepo() billing.Repository {
	return s.invoiceRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
