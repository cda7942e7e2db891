package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oms/backend/internal/domain/shared"
)

func TestNewInvoice(t *testing.T) {
	orderID, billedBy := uuid.New(), uuid.New()
	date := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	inv, err := NewInvoice(orderID, "INV-1", date, billedBy)
	require.NoError(t, err)
	assert.Equal(t, "INV-1", inv.InvoiceNumber)
	assert.Equal(t, orderID, inv.OrderID)
	assert.Equal(t, billedBy, inv.BilledBy)
	assert.Equal(t, date, inv.InvoiceDate)
	assert.NotEqual(t, uuid.Nil, inv.ID)
}

func TestNewInvoice_MissingFields(t *testing.T) {
	date := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := NewInvoice(uuid.New(), "", date, uuid.New())
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "MISSING_REQUIRED_FIELD", domainErr.Code)
	assert.Equal(t, "invoice_number", domainErr.Details["field"])

	_, err = NewInvoice(uuid.New(), "INV-1", time.Time{}, uuid.New())
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "MISSING_REQUIRED_FIELD", domainErr.Code)
	assert.Equal(t, "invoice_date", domainErr.Details["field"])

	_, err = NewInvoice(uuid.Nil, "INV-1", date, uuid.New())
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_INPUT", domainErr.Code)
}

func TestNewDuplicateInvoiceNumberError(t *testing.T) {
	err := NewDuplicateInvoiceNumberError("INV-1")
	assert.Equal(t, "DUPLICATE_INVOICE_NUMBER", err.Code)
	assert.Equal(t, "INV-1", err.Details["invoice_number"])
}
