package domain

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Base carries the identity, audit, and soft-delete fields shared by every
// aggregate root. Embed it by value; mutate it through a Stamper.
type Base struct {
	ID           string     `json:"id"`
	Cursor       int64      `json:"cursor"`
	DateCreated  time.Time  `json:"date_created"`
	DateModified time.Time  `json:"date_modified"`
	DateDeleted  *time.Time `json:"date_deleted,omitempty"`

	// IsDirty signals pending changes to interested callers. Transient,
	// never persisted.
	IsDirty bool `json:"-"`
}

// Deleted reports whether the entity has been soft-deleted.
func (b *Base) Deleted() bool {
	return b.DateDeleted != nil
}

// Clock supplies the current time for audit fields.
type Clock interface {
	Now() time.Time
}

// Sequence supplies strictly increasing cursor values.
type Sequence interface {
	Next() int64
}

// IDGenerator produces new globally-unique string identifiers.
type IDGenerator interface {
	NewID() string
}

// SystemClock is the production Clock backed by the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Counter is an atomic, strictly increasing Sequence. Cursor values must
// never repeat within an aggregate, so a wall-clock-derived value is not
// good enough; concurrent writes at the same instant would collide.
type Counter struct {
	n atomic.Int64
}

// NewCounter creates a Counter that hands out values above start.
func NewCounter(start int64) *Counter {
	c := &Counter{}
	c.n.Store(start)
	return c
}

func (c *Counter) Next() int64 {
	return c.n.Add(1)
}

// UUIDGenerator is the production IDGenerator.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// Stamper bundles the clock and cursor sequence used to stamp entities on
// creation and mutation. Services receive one at construction; there is no
// ambient/global time or identity state.
type Stamper struct {
	Clock  Clock
	Cursor Sequence
}

// NewStamper creates a Stamper from explicit dependencies.
func NewStamper(clock Clock, cursor Sequence) Stamper {
	return Stamper{Clock: clock, Cursor: cursor}
}

// NewBase builds the Base for a freshly constructed entity.
func (s Stamper) NewBase(id string) Base {
	now := s.Clock.Now()
	return Base{
		ID:           id,
		Cursor:       s.Cursor.Next(),
		DateCreated:  now,
		DateModified: now,
		IsDirty:      true,
	}
}

// Touch records a mutation: bumps DateModified and assigns a fresh cursor.
func (s Stamper) Touch(b *Base) {
	b.DateModified = s.Clock.Now()
	b.Cursor = s.Cursor.Next()
	b.IsDirty = true
}

// SoftDelete marks the entity deleted and records the mutation.
func (s Stamper) SoftDelete(b *Base) {
	now := s.Clock.Now()
	b.DateDeleted = &now
	s.Touch(b)
}
