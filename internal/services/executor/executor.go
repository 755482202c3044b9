// Package executor provides the interchangeable trade-execution backends.
// The decision engine depends only on the Executor interface; simulated,
// paper and real variants must be swappable without touching it.
package executor

import (
	"context"

	"github.com/flrnt/averin/internal/domain"
)

// Executor attempts to acquire an asset for a fiat amount. All variants
// report transport problems as a network-failure result so the caller can
// apply one retry policy regardless of backend.
type Executor interface {
	Mode() domain.Mode
	Execute(ctx context.Context, req domain.OrderRequest) domain.ExecutionResult
}
