package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oms/backend/internal/domain/order"
)

// Extra field keys accepted by the transition endpoint
const (
	ExtraDispatchedBy  = "dispatched_by"
	ExtraInvoiceNumber = "invoice_number"
	ExtraInvoiceDate   = "invoice_date"
)

// InvoiceDateLayout is the wire format for the invoice_date extra field
const InvoiceDateLayout = "2006-01-02"

// CreateOrderRequest represents a request to create a sales order
type CreateOrderRequest struct {
	Company         string          `json:"company" binding:"required"`
	OrderNo         string          `json:"order_no" binding:"required,min=1,max=100"`
	ClientID        uuid.UUID       `json:"client_id" binding:"required"`
	ContactPersonID uuid.UUID       `json:"contact_person_id" binding:"required"`
	CheckedBy       uuid.UUID       `json:"checked_by" binding:"required"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Remark          string          `json:"remark"`
	// Status optionally overrides the pending default. Creation bypasses
	// the transition graph; there is no current status to transition from.
	Status string `json:"status"`
}

// UpdateOrderRequest represents a full-field edit of an order.
// SONo and Company are immutable and deliberately absent.
type UpdateOrderRequest struct {
	OrderNo         string          `json:"order_no" binding:"required,min=1,max=100"`
	ClientID        uuid.UUID       `json:"client_id" binding:"required"`
	ContactPersonID uuid.UUID       `json:"contact_person_id" binding:"required"`
	CheckedBy       uuid.UUID       `json:"checked_by" binding:"required"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Remark          string          `json:"remark"`
}

// TransitionRequest represents a status transition request. The order is
// addressed by its external order_no, not the surrogate id.
type TransitionRequest struct {
	OrderNo string            `json:"order_no" binding:"required"`
	Status  string            `json:"status" binding:"required"`
	Extra   map[string]string `json:"extra"`
}

// OrderListFilter holds list query parameters
type OrderListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Company  string `form:"company"`
	Status   string `form:"status"`
	ClientID string `form:"client_id"`
	Search   string `form:"search"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              uuid.UUID       `json:"id"`
	Company         string          `json:"company"`
	SONo            string          `json:"so_no"`
	OrderNo         string          `json:"order_no"`
	Status          string          `json:"status"`
	ClientID        uuid.UUID       `json:"client_id"`
	ContactPersonID uuid.UUID       `json:"contact_person_id"`
	CheckedBy       uuid.UUID       `json:"checked_by"`
	InitiatedBy     *uuid.UUID      `json:"initiated_by,omitempty"`
	DispatchedBy    *uuid.UUID      `json:"dispatched_by,omitempty"`
	InvoiceID       *uuid.UUID      `json:"invoice_id,omitempty"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Remark          string          `json:"remark,omitempty"`
	DispatchedAt    *time.Time      `json:"dispatched_at,omitempty"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	InvoicedAt      *time.Time      `json:"invoiced_at,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TransitionResponse is the result of a successful status transition
type TransitionResponse struct {
	OrderID uuid.UUID `json:"order_id"`
	Status  string    `json:"status"`
}

// AllowedNextResponse lists the statuses reachable from an order's current one
type AllowedNextResponse struct {
	Current string   `json:"current"`
	Allowed []string `json:"allowed"`
}

// StatusSummaryResponse holds order counts per status
type StatusSummaryResponse struct {
	Counts map[string]int64 `json:"counts"`
	Total  int64            `json:"total"`
}

// ToOrderResponse converts an order aggregate to its response representation
func ToOrderResponse(o *order.Order) OrderResponse {
	return OrderResponse{
		ID:              o.ID,
		Company:         o.Company.String(),
		SONo:            o.SONo,
		OrderNo:         o.OrderNo,
		Status:          o.Status.String(),
		ClientID:        o.ClientID,
		ContactPersonID: o.ContactPersonID,
		CheckedBy:       o.CheckedBy,
		InitiatedBy:     o.InitiatedBy,
		DispatchedBy:    o.DispatchedBy,
		InvoiceID:       o.InvoiceID,
		TotalAmount:     o.TotalAmount,
		Remark:          o.Remark,
		DispatchedAt:    o.DispatchedAt,
		CompletedAt:     o.CompletedAt,
		InvoicedAt:      o.InvoicedAt,
		CancelledAt:     o.CancelledAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
