package numbering

import "context"

// SequenceAllocator reserves document numbers for a company prefix.
//
// Reserve serializes concurrent callers on the same prefix via a row-level
// exclusive lock held for the full read-modify-write, and commits in its own
// transaction: a reserved number is never handed out twice, even when the
// enclosing order insert later fails. Gaps in the sequence are accepted.
type SequenceAllocator interface {
	Reserve(ctx context.Context, companyCode string) (Reservation, error)
}

// CounterRepository gives administrative access to raw counter rows. The
// lifecycle never deletes counters; delete exists as an escape hatch only.
type CounterRepository interface {
	FindByPrefix(ctx context.Context, prefix string) (*Counter, error)
	FindAll(ctx context.Context) ([]Counter, error)
	Delete(ctx context.Context, prefix string) error
}
