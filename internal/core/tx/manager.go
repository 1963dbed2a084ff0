// Package tx defines the transaction contracts used outside the storage layer.
package tx

import (
	"context"
)

// Manager runs fn inside a read-write transaction carried by ctx.
// A call made while ctx already holds a transaction joins it.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager adds snapshot reads. Every query issued through ctx inside
// ReadOnly sees the same committed state, which is what ledger consistency
// checks rely on when they read several movement tables one after another.
//
// A read-write transaction cannot be opened inside ReadOnly; do writes after
// it returns.
type ReadOnlyManager interface {
	Manager
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
