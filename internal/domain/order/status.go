package order

// OrderStatus represents the lifecycle status of a sales order
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusDispatched     OrderStatus = "dispatched"
	StatusPartialPending OrderStatus = "partial_pending"
	StatusOutOfStock     OrderStatus = "out_of_stock"
	StatusShortClosed    OrderStatus = "short_closed"
	StatusInvoiced       OrderStatus = "invoiced"
	StatusCompleted      OrderStatus = "completed"
	StatusCancelled      OrderStatus = "cancelled"
)

// AllStatuses lists every valid order status
var AllStatuses = []OrderStatus{
	StatusPending,
	StatusDispatched,
	StatusPartialPending,
	StatusOutOfStock,
	StatusShortClosed,
	StatusInvoiced,
	StatusCompleted,
	StatusCancelled,
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusDispatched, StatusPartialPending, StatusOutOfStock,
		StatusShortClosed, StatusInvoiced, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// AllowedNext returns the statuses directly reachable from s.
// This is the single canonical transition table; CanTransitionTo and the
// allowed-next read endpoint both derive from it.
func (s OrderStatus) AllowedNext() []OrderStatus {
	switch s {
	case StatusPending:
		return []OrderStatus{StatusDispatched}
	case StatusDispatched:
		return []OrderStatus{StatusCompleted, StatusPartialPending, StatusOutOfStock}
	case StatusPartialPending:
		return []OrderStatus{StatusDispatched, StatusShortClosed, StatusCancelled}
	case StatusOutOfStock:
		return []OrderStatus{StatusDispatched, StatusCancelled}
	case StatusShortClosed:
		return []OrderStatus{StatusInvoiced, StatusCancelled}
	case StatusCompleted:
		return []OrderStatus{StatusCancelled}
	}
	// invoiced and cancelled are terminal
	return nil
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, next := range s.AllowedNext() {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no outbound transitions exist for the status
func (s OrderStatus) IsTerminal() bool {
	return len(s.AllowedNext()) == 0
}
