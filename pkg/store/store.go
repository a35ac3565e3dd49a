package store

import (
	"context"
	"errors"

	"github.com/yowenter/recordstore/pkg/types"
)

// ErrNotFound is returned when an operation targets a key that is not in
// the store.
var ErrNotFound = errors.New("record not found")

// ErrPersist signals that a mutation has been applied in memory but could
// not be made durable. Callers treat it as a logged side effect, not as a
// failed operation.
var ErrPersist = errors.New("store persistence failed")

// Store is the persistence boundary for records. Implementations must be
// safe for concurrent use.
type Store interface {
	List(ctx context.Context) ([]*types.Record, error)
	Get(ctx context.Context, key string) (*types.Record, error)
	Put(ctx context.Context, rec *types.Record) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}
