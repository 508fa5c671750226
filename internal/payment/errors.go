package payment

import (
	"errors"
	"fmt"
)

// FailureKind classifies payment-flow failures. Each kind is surfaced to
// the user distinctly; none is silently retried.
type FailureKind int

const (
	// FailureProvider is the catch-all for wallet and network failures.
	FailureProvider FailureKind = iota

	// FailureNoRoute means the aggregator found no viable route.
	FailureNoRoute

	// FailureQuoteFailed means the quoting collaborator errored; the
	// underlying error is carried verbatim, never swallowed.
	FailureQuoteFailed

	// FailureUnsupportedDestination means the aggregator does not serve
	// the receiver's network.
	FailureUnsupportedDestination

	// FailureUserRejected means the user declined in the wallet.
	FailureUserRejected

	// FailureInsufficientFunds means the payer's balance does not cover
	// the transfer.
	FailureInsufficientFunds

	// FailureTimedOut means confirmation was not observed within the
	// executor's timeout.
	FailureTimedOut
)

func (k FailureKind) String() string {
	switch k {
	case FailureNoRoute:
		return "no_route_available"
	case FailureQuoteFailed:
		return "quote_failed"
	case FailureUnsupportedDestination:
		return "unsupported_destination_network"
	case FailureUserRejected:
		return "user_rejected"
	case FailureInsufficientFunds:
		return "insufficient_funds"
	case FailureTimedOut:
		return "timed_out"
	default:
		return "provider_error"
	}
}

// Error is a payment-flow failure carrying its kind.
type Error struct {
	Kind FailureKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// FailureOf extracts the kind from err, defaulting to FailureProvider.
func FailureOf(err error) FailureKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return FailureProvider
}

// Sentinels wallet implementations return so the executor can classify
// user-visible failures without vendor knowledge.
var (
	ErrUserRejected      = errors.New("user rejected the transaction")
	ErrInsufficientFunds = errors.New("insufficient funds")
)
