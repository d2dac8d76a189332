package domain

import "context"

// Dummy is a minimal aggregate exercising the full pipeline with no special
// invariants. Copy it when adding a new aggregate.
type Dummy struct {
	Base
	Name string `json:"name"`
}

// NewDummy constructs a dummy.
func NewDummy(stamp Stamper, id, name string) *Dummy {
	return &Dummy{
		Base: stamp.NewBase(id),
		Name: name,
	}
}

// Update applies a new name and records the mutation.
func (d *Dummy) Update(stamp Stamper, name string) {
	d.Name = name
	stamp.Touch(&d.Base)
}

// SoftDelete marks the dummy deleted without removing the row.
func (d *Dummy) SoftDelete(stamp Stamper) {
	stamp.SoftDelete(&d.Base)
}

// DummyFilter narrows dummy collection queries.
type DummyFilter struct {
	Name       *string
	Page       Pagination
	Timestamps TimestampFilter
}

// DummyRepository is the persistence contract for the Dummy aggregate.
type DummyRepository interface {
	GetByID(ctx context.Context, id string) (*Dummy, error)
	GetDummies(ctx context.Context, filter DummyFilter) ([]*Dummy, error)
	Create(ctx context.Context, dummy *Dummy) (*Dummy, error)
	Update(ctx context.Context, dummy *Dummy) (*Dummy, error)
	Delete(ctx context.Context, dummy *Dummy) (*Dummy, error)
}
