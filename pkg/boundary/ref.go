package boundary

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Owner serializes access to the values it owns.
// Do runs fn on the owner's execution context and returns its error.
type Owner interface {
	Do(ctx context.Context, fn func() error) error
}

// Handle is the type-erased view of a Ref used by registries and transports.
type Handle interface {
	ID() uuid.UUID
	TypeName() string
	// Snapshot returns a JSON copy of the referenced value taken on the owner.
	Snapshot(ctx context.Context) (json.RawMessage, error)
}

// Ref is a remote reference to a value owned by another execution context.
type Ref[T any] struct {
	id    uuid.UUID
	owner Owner
	value T
}

// Proxy wraps value so that the far side receives a handle rather than a copy.
func Proxy[T any](owner Owner, value T) Ref[T] {
	return Ref[T]{
		id:    uuid.New(),
		owner: owner,
		value: value,
	}
}

// ID returns the handle id.
func (r Ref[T]) ID() uuid.UUID {
	return r.id
}

// TypeName returns the Go type of the referenced value.
func (r Ref[T]) TypeName() string {
	return fmt.Sprintf("%T", r.value)
}

// IsZero reports whether r was never assigned by Proxy.
func (r Ref[T]) IsZero() bool {
	return r.id == uuid.Nil
}

// With runs fn against the live value on the owner's execution context.
func (r Ref[T]) With(ctx context.Context, fn func(T) error) error {
	if r.owner == nil {
		return fmt.Errorf("boundary: ref %s has no owner", r.id)
	}
	return r.owner.Do(ctx, func() error {
		return fn(r.value)
	})
}

// Snapshot marshals the live value on the owner's execution context.
func (r Ref[T]) Snapshot(ctx context.Context) (json.RawMessage, error) {
	var data []byte
	err := r.With(ctx, func(v T) error {
		var err error
		data, err = json.Marshal(v)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("boundary: snapshot %s: %w", r.id, err)
	}
	return data, nil
}

// MarshalJSON encodes the handle, never the referenced value.
func (r Ref[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(Marker{Ref: r.id.String(), Type: r.TypeName()})
}

// Marker is the wire form of a Ref.
type Marker struct {
	Ref  string `json:"$ref"`
	Type string `json:"type"`
}
