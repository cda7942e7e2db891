package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oms/backend/internal/domain/numbering"
	"github.com/oms/backend/internal/domain/shared"
)

// GormSequenceAllocator implements numbering.SequenceAllocator using a
// counter row per prefix, locked with SELECT ... FOR UPDATE for the full
// read-modify-write. Concurrent reservations for the same prefix queue
// behind the lock holder; different prefixes proceed independently.
type GormSequenceAllocator struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormSequenceAllocator creates a new GormSequenceAllocator
func NewGormSequenceAllocator(db *gorm.DB) *GormSequenceAllocator {
	return &GormSequenceAllocator{db: db, now: time.Now}
}

// NewGormSequenceAllocatorWithClock creates an allocator with a fixed clock,
// for testing fiscal rollover.
func NewGormSequenceAllocatorWithClock(db *gorm.DB, now func() time.Time) *GormSequenceAllocator {
	return &GormSequenceAllocator{db: db, now: now}
}

// Reserve reserves the next number for the company prefix. The reservation
// runs in its own transaction and commits before the caller proceeds:
// numbers are never reused even when the enclosing order insert fails.
func (a *GormSequenceAllocator) Reserve(ctx context.Context, companyCode string) (numbering.Reservation, error) {
	prefix := numbering.NormalizePrefix(companyCode)
	if prefix == "" {
		return numbering.Reservation{}, shared.NewDomainError("INVALID_INPUT", "Company code cannot be empty")
	}
	postfix := numbering.FiscalTag(a.now())

	res, err := a.reserve(ctx, prefix, postfix)
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		// two first-ever reservations raced on the lazy insert; the loser
		// retries and finds the committed row
		res, err = a.reserve(ctx, prefix, postfix)
	}
	return res, err
}

func (a *GormSequenceAllocator) reserve(ctx context.Context, prefix, postfix string) (numbering.Reservation, error) {
	var res numbering.Reservation
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var counter numbering.Counter
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("prefix = ?", prefix).
			First(&counter).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			fresh := numbering.NewCounter(prefix, postfix)
			if err := tx.Create(fresh).Error; err != nil {
				return err
			}
			res = numbering.NewReservation(fresh)
			return nil
		}
		if err != nil {
			return err
		}

		counter.Advance(postfix)
		if err := tx.Save(&counter).Error; err != nil {
			return err
		}
		res = numbering.NewReservation(&counter)
		return nil
	})
	if err != nil {
		return numbering.Reservation{}, err
	}
	return res, nil
}

// GormCounterRepository gives administrative access to raw counter rows
type GormCounterRepository struct {
	db *gorm.DB
}

// NewGormCounterRepository creates a new GormCounterRepository
func NewGormCounterRepository(db *gorm.DB) *GormCounterRepository {
	return &GormCounterRepository{db: db}
}

// FindByPrefix finds the counter row for a prefix
func (r *GormCounterRepository) FindByPrefix(ctx context.Context, prefix string) (*numbering.Counter, error) {
	var counter numbering.Counter
	if err := r.db.WithContext(ctx).
		Where("prefix = ?", numbering.NormalizePrefix(prefix)).
		First(&counter).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &counter, nil
}

// FindAll lists all counter rows
func (r *GormCounterRepository) FindAll(ctx context.Context) ([]numbering.Counter, error) {
	var counters []numbering.Counter
	if err := r.db.WithContext(ctx).Order("prefix ASC").Find(&counters).Error; err != nil {
		return nil, err
	}
	return counters, nil
}

// Delete removes a counter row. Administrative escape hatch; the lifecycle
// never calls this.
func (r *GormCounterRepository) Delete(ctx context.Context, prefix string) error {
	result := r.db.WithContext(ctx).
		Where("prefix = ?", numbering.NormalizePrefix(prefix)).
		Delete(&numbering.Counter{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ numbering.SequenceAllocator = (*GormSequenceAllocator)(nil)
var _ numbering.CounterRepository = (*GormCounterRepository)(nil)
