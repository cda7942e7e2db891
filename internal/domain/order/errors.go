package order

import (
	"fmt"

	"github.com/oms/backend/internal/domain/shared"
)

// NewInvalidTransitionError reports a target status not reachable from the
// current one. Both statuses ride in the details payload so callers can react
// programmatically.
func NewInvalidTransitionError(current, requested OrderStatus) *shared.DomainError {
	return shared.NewDomainErrorWithDetails(
		"INVALID_TRANSITION",
		fmt.Sprintf("Cannot transition order from %s to %s", current, requested),
		map[string]any{
			"current_status":   current.String(),
			"requested_status": requested.String(),
		},
	)
}

// NewMissingFieldError reports a required field absent from the request
func NewMissingFieldError(field string) *shared.DomainError {
	return shared.NewDomainErrorWithDetails(
		"MISSING_REQUIRED_FIELD",
		fmt.Sprintf("Required field is missing: %s", field),
		map[string]any{"field": field},
	)
}
