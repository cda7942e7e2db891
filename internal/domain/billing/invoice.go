package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/oms/backend/internal/domain/shared"
)

// Invoice is a billing document tied to exactly one order
type Invoice struct {
	shared.BaseEntity
	InvoiceNumber string    `gorm:"uniqueIndex;not null"` // globally unique
	InvoiceDate   time.Time `gorm:"not null"`
	OrderID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"` // exclusive one-to-one back-reference
	BilledBy      uuid.UUID `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates an invoice bound to an order. The lifecycle engine never
// updates an invoice after creation.
func NewInvoice(orderID uuid.UUID, invoiceNumber string, invoiceDate time.Time, billedBy uuid.UUID) (*Invoice, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Order ID cannot be empty")
	}
	if invoiceNumber == "" {
		return nil, shared.NewDomainErrorWithDetails(
			"MISSING_REQUIRED_FIELD",
			"Required field is missing: invoice_number",
			map[string]any{"field": "invoice_number"},
		)
	}
	if invoiceDate.IsZero() {
		return nil, shared.NewDomainErrorWithDetails(
			"MISSING_REQUIRED_FIELD",
			"Required field is missing: invoice_date",
			map[string]any{"field": "invoice_date"},
		)
	}
	if billedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Billing user cannot be empty")
	}

	return &Invoice{
		BaseEntity:    shared.NewBaseEntity(),
		InvoiceNumber: invoiceNumber,
		InvoiceDate:   invoiceDate,
		OrderID:       orderID,
		BilledBy:      billedBy,
	}, nil
}

// NewDuplicateInvoiceNumberError reports a uniqueness violation on issuance
func NewDuplicateInvoiceNumberError(invoiceNumber string) *shared.DomainError {
	return shared.NewDomainErrorWithDetails(
		"DUPLICATE_INVOICE_NUMBER",
		"Invoice number already exists: "+invoiceNumber,
		map[string]any{"invoice_number": invoiceNumber},
	)
}
