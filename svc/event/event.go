package event

import (
	"time"

	"github.com/google/uuid"
)

// Status is the event lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Name implements statemachine.State.
func (s Status) Name() string {
	return string(s)
}

// Event is a tenant-scoped event with a finite set of ticket types.
type Event struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Name        string
	Description string
	Status      Status
	StartsAt    time.Time
	EndsAt      time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TicketType is one inventory pool within an event. Capacity nil means
// unlimited. The invariant sold+reserved <= capacity is maintained by the
// registration write path under an exclusive row lock; Version guards
// organizer edits made outside that path.
type TicketType struct {
	ID           uuid.UUID
	EventID      uuid.UUID
	Name         string
	Capacity     *int32
	Sold         int32
	Reserved     int32
	Version      int64
	Active       bool
	SalesStartAt *time.Time
	SalesEndAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Available returns the remaining availability, or -1 when capacity is
// unlimited.
func (t TicketType) Available() int32 {
	if t.Capacity == nil {
		return -1
	}
	remaining := *t.Capacity - t.Sold - t.Reserved
	if remaining < 0 {
		return 0
	}
	return remaining
}

// HasAvailability reports whether one more ticket can be sold.
func (t TicketType) HasAvailability() bool {
	return t.Capacity == nil || t.Sold+t.Reserved < *t.Capacity
}

// SalesOpen reports whether now falls inside the sales window. Nil bounds
// are open-ended.
func (t TicketType) SalesOpen(now time.Time) bool {
	if t.SalesStartAt != nil && now.Before(*t.SalesStartAt) {
		return false
	}
	if t.SalesEndAt != nil && !now.Before(*t.SalesEndAt) {
		return false
	}
	return true
}
