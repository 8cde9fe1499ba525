package event

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrEventFull is returned when an event has no remaining capacity.
var ErrEventFull = errors.New("event is fully booked")

// Ledger is the single authority for event capacity. Nothing else in the
// codebase mutates current_count.
//
// Two concurrent admissions that both read current_count before either
// writes would overbook the event. TryAdmit therefore takes a row-level
// exclusive lock on the event row (SELECT ... FOR UPDATE) inside the
// caller's transaction, serialising read-then-write per event row.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// WithTx binds the ledger to the caller's transaction. Admission must
// commit or roll back together with the booking that triggered it.
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	return &Ledger{db: tx}
}

// lockedRow reads the event row under an exclusive lock. SQLite has no
// FOR UPDATE; its single-writer lock already serialises the read-then-
// write, so the clause is skipped there.
func (l *Ledger) lockedRow(ctx context.Context, eventID uint) (*Event, error) {
	q := l.db.WithContext(ctx)
	if l.db.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var e Event
	err := q.First(&e, eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock event row: %w", err)
	}
	return &e, nil
}

// TryAdmit consumes one unit of capacity, or returns ErrEventFull. The
// check and the increment happen under the same row lock.
func (l *Ledger) TryAdmit(ctx context.Context, eventID uint) error {
	e, err := l.lockedRow(ctx, eventID)
	if err != nil {
		return err
	}

	if e.CurrentCount >= e.Capacity {
		return ErrEventFull
	}

	err = l.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ?", eventID).
		Update("current_count", gorm.Expr("current_count + 1")).Error
	if err != nil {
		return fmt.Errorf("increment current_count: %w", err)
	}
	return nil
}

// Release returns one unit of capacity, flooring at zero. Invoked when a
// booking linked to the event is cancelled.
func (l *Ledger) Release(ctx context.Context, eventID uint) error {
	e, err := l.lockedRow(ctx, eventID)
	if err != nil {
		return err
	}

	if e.CurrentCount == 0 {
		return nil
	}

	err = l.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ?", eventID).
		Update("current_count", gorm.Expr("current_count - 1")).Error
	if err != nil {
		return fmt.Errorf("decrement current_count: %w", err)
	}
	return nil
}
