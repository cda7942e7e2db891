package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oms/backend/internal/domain/order"
)

// GormReferenceChecker implements order.ReferenceChecker against the raw
// reference tables. Clients, contact persons and users are managed outside
// this service; only their existence matters here.
type GormReferenceChecker struct {
	db *gorm.DB
}

// NewGormReferenceChecker creates a new GormReferenceChecker
func NewGormReferenceChecker(db *gorm.DB) *GormReferenceChecker {
	return &GormReferenceChecker{db: db}
}

// ClientExists reports whether a client row exists
func (c *GormReferenceChecker) ClientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return c.exists(ctx, "clients", id)
}

// ContactPersonExists reports whether a contact person row exists
func (c *GormReferenceChecker) ContactPersonExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return c.exists(ctx, "contact_persons", id)
}

// UserExists reports whether a user row exists
func (c *GormReferenceChecker) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return c.exists(ctx, "users", id)
}

func (c *GormReferenceChecker) exists(ctx context.Context, table string, id uuid.UUID) (bool, error) {
	var count int64
	if err := c.db.WithContext(ctx).
		Table(table).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ order.ReferenceChecker = (*GormReferenceChecker)(nil)
