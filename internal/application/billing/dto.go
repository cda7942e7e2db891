package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/oms/backend/internal/domain/billing"
)

// IssueInvoiceRequest represents a request to create an invoice directly,
// outside the invoiced transition
type IssueInvoiceRequest struct {
	OrderID       uuid.UUID `json:"order_id" binding:"required"`
	InvoiceNumber string    `json:"invoice_number" binding:"required,min=1,max=100"`
	InvoiceDate   time.Time `json:"invoice_date" binding:"required" time_format:"2006-01-02"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID            uuid.UUID `json:"id"`
	InvoiceNumber string    `json:"invoice_number"`
	InvoiceDate   time.Time `json:"invoice_date"`
	OrderID       uuid.UUID `json:"order_id"`
	BilledBy      uuid.UUID `json:"billed_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToInvoiceResponse converts an invoice to its response representation
func ToInvoiceResponse(inv *billing.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceDate:   inv.InvoiceDate,
		OrderID:       inv.OrderID,
		BilledBy:      inv.BilledBy,
		CreatedAt:     inv.CreatedAt,
	}
}
