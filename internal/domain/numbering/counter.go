// Package numbering owns the per-company document-number sequence. Each
// company code maps to one counter row whose number strictly increases across
// reservations; the fiscal-year postfix is recomputed on rollover.
package numbering

import (
	"fmt"
	"strings"
	"time"

	"github.com/oms/backend/internal/domain/shared"
)

// Counter is the mutable sequence state for one company prefix
type Counter struct {
	shared.BaseEntity
	Prefix  string `gorm:"uniqueIndex;not null"`         // company code, unique key
	Number  int64  `gorm:"not null"`                     // monotonically increasing
	Postfix string `gorm:"type:varchar(10);not null"`    // fiscal-year tag, e.g. "25/26"
}

// TableName returns the table name for GORM
func (Counter) TableName() string {
	return "counters"
}

// NewCounter creates the first counter row for a prefix. The first reserved
// number is 1.
func NewCounter(prefix, postfix string) *Counter {
	return &Counter{
		BaseEntity: shared.NewBaseEntity(),
		Prefix:     prefix,
		Number:     1,
		Postfix:    postfix,
	}
}

// Advance increments the sequence and overwrites a stale fiscal postfix.
// Must only be called while the caller holds the row lock for the prefix.
func (c *Counter) Advance(postfix string) {
	if c.Postfix != postfix {
		c.Postfix = postfix
	}
	c.Number++
	c.UpdatedAt = time.Now()
}

// Reservation is the result of one sequence reservation
type Reservation struct {
	Prefix         string
	Number         int64
	Postfix        string
	DocumentNumber string
}

// NewReservation captures a counter's state as a reservation result
func NewReservation(c *Counter) Reservation {
	return Reservation{
		Prefix:         c.Prefix,
		Number:         c.Number,
		Postfix:        c.Postfix,
		DocumentNumber: FormatDocumentNumber(c.Prefix, c.Number, c.Postfix),
	}
}

// FormatDocumentNumber renders "{PREFIX}-{NUMBER:04d}-{POSTFIX}"
func FormatDocumentNumber(prefix string, number int64, postfix string) string {
	return fmt.Sprintf("%s-%04d-%s", prefix, number, postfix)
}

// NormalizePrefix canonicalizes a company code for use as a sequence key
func NormalizePrefix(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// FiscalTag computes the fiscal-year postfix "{YY}/{YY+1}" for a date
func FiscalTag(at time.Time) string {
	yy := at.Year() % 100
	return fmt.Sprintf("%02d/%02d", yy, (yy+1)%100)
}
