package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ExecutionStatus tags the outcome of an executor call.
type ExecutionStatus string

const (
	// ExecutionFilled means the venue (or simulator) acquired the asset.
	ExecutionFilled ExecutionStatus = "filled"
	// ExecutionRejected means the order was declined before or by the venue.
	// Rejections are final and never retried.
	ExecutionRejected ExecutionStatus = "rejected"
	// ExecutionNetworkFailure means the venue could not be reached or timed
	// out. Transient: the caller applies the retry policy.
	ExecutionNetworkFailure ExecutionStatus = "network_failure"
)

// ExecutionResult is the tagged outcome of a trade execution attempt.
// Price and Quantity are set only for ExecutionFilled, Reason only for
// ExecutionRejected and Cause only for ExecutionNetworkFailure.
type ExecutionResult struct {
	Status   ExecutionStatus
	Price    decimal.Decimal
	Quantity decimal.Decimal
	Reason   string
	Cause    error
}

// Filled builds a successful execution result.
func Filled(price, quantity decimal.Decimal) ExecutionResult {
	return ExecutionResult{Status: ExecutionFilled, Price: price, Quantity: quantity}
}

// Rejected builds a venue-declined execution result.
func Rejected(reason string) ExecutionResult {
	return ExecutionResult{Status: ExecutionRejected, Reason: reason}
}

// NetworkFailure builds a transient-failure execution result.
func NetworkFailure(cause error) ExecutionResult {
	return ExecutionResult{Status: ExecutionNetworkFailure, Cause: cause}
}

func (r ExecutionResult) String() string {
	switch r.Status {
	case ExecutionFilled:
		return fmt.Sprintf("filled %s @ %s", r.Quantity, r.Price)
	case ExecutionRejected:
		return fmt.Sprintf("rejected: %s", r.Reason)
	case ExecutionNetworkFailure:
		return fmt.Sprintf("network failure: %v", r.Cause)
	default:
		return string(r.Status)
	}
}

// OrderRequest is the executor input for one purchase decision. LastPrice is
// the most recent observed close for the asset; venue-backed executors treat
// it as reference data only, the simulated executor fills at it.
// ClientOrderID is fixed per decision: every retry of the same decision
// carries the same ID, so a venue that saw a timed-out attempt treats the
// retry as the same order.
type OrderRequest struct {
	Asset         string
	FiatAmount    decimal.Decimal
	LastPrice     decimal.Decimal
	ClientOrderID string
}
