package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oms/backend/internal/domain/shared"
)

// Company identifies the legal entity an order belongs to. The company code
// doubles as the document-number sequence prefix, so it is immutable after
// creation.
type Company string

const (
	CompanySHHT  Company = "SHHT"
	CompanySHAPL Company = "SHAPL"
)

// ParseCompany normalizes a company code to its canonical uppercase form
func ParseCompany(code string) (Company, error) {
	c := Company(strings.ToUpper(strings.TrimSpace(code)))
	if !c.IsValid() {
		return "", shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown company code: %s", code))
	}
	return c, nil
}

// IsValid checks if the company is a known legal entity
func (c Company) IsValid() bool {
	switch c {
	case CompanySHHT, CompanySHAPL:
		return true
	}
	return false
}

// String returns the company code
func (c Company) String() string {
	return string(c)
}

// Order is the sales order aggregate root
type Order struct {
	shared.BaseAggregateRoot
	Company         Company     `gorm:"type:varchar(10);not null;index"`
	SONo            string      `gorm:"column:so_no;uniqueIndex;not null"` // system-generated document number, immutable
	OrderNo         string      `gorm:"uniqueIndex;not null"`              // caller-supplied external reference
	Status          OrderStatus `gorm:"type:varchar(20);not null;index"`
	ClientID        uuid.UUID   `gorm:"type:uuid;not null;index"`
	ContactPersonID uuid.UUID   `gorm:"type:uuid;not null"`
	CheckedBy       uuid.UUID   `gorm:"type:uuid;not null"` // user who reviewed the order
	InitiatedBy     *uuid.UUID  `gorm:"type:uuid"`          // actor of the dispatch transition
	DispatchedBy    *uuid.UUID  `gorm:"type:uuid"`          // user assigned on dispatch
	InvoiceID       *uuid.UUID  `gorm:"type:uuid"`          // set exactly once, by the invoiced transition
	TotalAmount     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Remark          string
	DispatchedAt    *time.Time
	CompletedAt     *time.Time
	InvoicedAt      *time.Time
	CancelledAt     *time.Time
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new order with the given document number. Status defaults
// to pending; the caller may override it at creation time without graph
// validation; there is no current status to transition from yet.
func NewOrder(company Company, soNo, orderNo string, clientID, contactPersonID, checkedBy uuid.UUID, totalAmount decimal.Decimal, remark string, status OrderStatus) (*Order, error) {
	if !company.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown company code")
	}
	if soNo == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Document number cannot be empty")
	}
	if orderNo == "" {
		return nil, NewMissingFieldError("order_no")
	}
	if clientID == uuid.Nil {
		return nil, NewMissingFieldError("client_id")
	}
	if contactPersonID == uuid.Nil {
		return nil, NewMissingFieldError("contact_person_id")
	}
	if checkedBy == uuid.Nil {
		return nil, NewMissingFieldError("checked_by")
	}
	if totalAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Total amount cannot be negative")
	}
	if status == "" {
		status = StatusPending
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown order status: %s", status))
	}

	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Company:           company,
		SONo:              soNo,
		OrderNo:           orderNo,
		Status:            status,
		ClientID:          clientID,
		ContactPersonID:   contactPersonID,
		CheckedBy:         checkedBy,
		TotalAmount:       totalAmount,
		Remark:            remark,
	}, nil
}

// transitionTo applies the transition-table check and moves the order to the
// target status. All transition methods funnel through here.
func (o *Order) transitionTo(target OrderStatus) error {
	if !o.Status.CanTransitionTo(target) {
		return NewInvalidTransitionError(o.Status, target)
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

// Dispatch moves the order to dispatched, recording the assigned dispatcher
// and the actor who initiated the transition.
func (o *Order) Dispatch(dispatchedBy, actor uuid.UUID) error {
	if dispatchedBy == uuid.Nil {
		return NewMissingFieldError("dispatched_by")
	}
	if err := o.transitionTo(StatusDispatched); err != nil {
		return err
	}
	now := time.Now()
	o.DispatchedBy = &dispatchedBy
	o.InitiatedBy = &actor
	o.DispatchedAt = &now
	return nil
}

// MarkCompleted moves the order to completed
func (o *Order) MarkCompleted() error {
	if err := o.transitionTo(StatusCompleted); err != nil {
		return err
	}
	now := time.Now()
	o.CompletedAt = &now
	return nil
}

// MarkPartialPending moves the order to partial_pending
func (o *Order) MarkPartialPending() error {
	return o.transitionTo(StatusPartialPending)
}

// MarkOutOfStock moves the order to out_of_stock
func (o *Order) MarkOutOfStock() error {
	return o.transitionTo(StatusOutOfStock)
}

// ShortClose moves the order to short_closed
func (o *Order) ShortClose() error {
	return o.transitionTo(StatusShortClosed)
}

// MarkInvoiced moves the order to invoiced and links the issued invoice.
// The invoice row itself is created by the billing issuer in the same
// transaction; this only records the back-reference.
func (o *Order) MarkInvoiced(invoiceID uuid.UUID) error {
	if invoiceID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Invoice ID cannot be empty")
	}
	if err := o.transitionTo(StatusInvoiced); err != nil {
		return err
	}
	now := time.Now()
	o.InvoiceID = &invoiceID
	o.InvoicedAt = &now
	return nil
}

// Cancel moves the order to cancelled
func (o *Order) Cancel() error {
	if err := o.transitionTo(StatusCancelled); err != nil {
		return err
	}
	now := time.Now()
	o.CancelledAt = &now
	return nil
}

// UpdateDetails applies a full-field edit. SONo and Company are immutable;
// order_no uniqueness is re-validated by the application service before this
// is called.
func (o *Order) UpdateDetails(orderNo string, clientID, contactPersonID, checkedBy uuid.UUID, totalAmount decimal.Decimal, remark string) error {
	if orderNo == "" {
		return NewMissingFieldError("order_no")
	}
	if clientID == uuid.Nil {
		return NewMissingFieldError("client_id")
	}
	if contactPersonID == uuid.Nil {
		return NewMissingFieldError("contact_person_id")
	}
	if checkedBy == uuid.Nil {
		return NewMissingFieldError("checked_by")
	}
	if totalAmount.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Total amount cannot be negative")
	}

	o.OrderNo = orderNo
	o.ClientID = clientID
	o.ContactPersonID = contactPersonID
	o.CheckedBy = checkedBy
	o.TotalAmount = totalAmount
	o.Remark = remark
	o.UpdatedAt = time.Now()
	return nil
}
