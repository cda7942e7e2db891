package order

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_IsValid(t *testing.T) {
	for _, s := range AllStatuses {
		assert.True(t, s.IsValid(), "expected %s to be valid", s)
	}
	assert.False(t, OrderStatus("shipped").IsValid())
	assert.False(t, OrderStatus("dispatch").IsValid(), "alternate spellings are not special-cased")
	assert.False(t, OrderStatus("").IsValid())
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	allowed := map[OrderStatus][]OrderStatus{
		StatusPending:        {StatusDispatched},
		StatusDispatched:     {StatusCompleted, StatusPartialPending, StatusOutOfStock},
		StatusPartialPending: {StatusDispatched, StatusShortClosed, StatusCancelled},
		StatusOutOfStock:     {StatusDispatched, StatusCancelled},
		StatusShortClosed:    {StatusInvoiced, StatusCancelled},
		StatusCompleted:      {StatusCancelled},
		StatusInvoiced:       {},
		StatusCancelled:      {},
	}

	// exercise every (from, to) pair against the table
	for _, from := range AllStatuses {
		allowedSet := make(map[OrderStatus]bool)
		for _, to := range allowed[from] {
			allowedSet[to] = true
		}
		for _, to := range AllStatuses {
			t.Run(fmt.Sprintf("%s->%s", from, to), func(t *testing.T) {
				assert.Equal(t, allowedSet[to], from.CanTransitionTo(to))
			})
		}
	}
}

func TestOrderStatus_AllowedNext_MatchesCanTransitionTo(t *testing.T) {
	for _, from := range AllStatuses {
		for _, next := range from.AllowedNext() {
			assert.True(t, from.CanTransitionTo(next))
		}
	}
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusInvoiced.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	for _, s := range []OrderStatus{StatusPending, StatusDispatched, StatusPartialPending, StatusOutOfStock, StatusShortClosed, StatusCompleted} {
		assert.False(t, s.IsTerminal(), "expected %s to be non-terminal", s)
	}
}
