package payment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

// defaultConfirmTimeout bounds the wait for on-chain confirmation.
// Awaiting a wallet forever is not an option; expiry surfaces as
// FailureTimedOut.
const defaultConfirmTimeout = 5 * time.Minute

// Result reports a finished execution. Settled is false when the
// on-chain payment succeeded but the settlement callback to the split
// service failed; the transaction reference is still valid and the
// caller may retry settlement.
type Result struct {
	TxRef   string
	Settled bool
}

// Executor submits exactly one on-chain transaction per Execute call
// through the wallet collaborator and, on confirmation, reports the
// payment back to the split service.
type Executor struct {
	wallet         Wallet
	settler        Settler
	confirmTimeout time.Duration
}

// NewExecutor creates an executor. settler may be nil, in which case
// confirmed payments are not reported back and reconciliation is the
// caller's responsibility.
func NewExecutor(wallet Wallet, settler Settler) *Executor {
	return &Executor{
		wallet:         wallet,
		settler:        settler,
		confirmTimeout: defaultConfirmTimeout,
	}
}

// Execute runs the resolved route: balance check, submission,
// confirmation wait, settlement callback. Every failure carries a
// distinct FailureKind; nothing is retried here. Retries are
// user-initiated at the flow level.
func (e *Executor) Execute(ctx context.Context, route Route, shareToken string) (Result, error) {
	if err := e.checkBalance(ctx, route); err != nil {
		return Result{}, err
	}

	var (
		txRef string
		err   error
	)
	switch route.Kind {
	case RouteDirect:
		txRef, err = e.wallet.Transfer(ctx, route.Source, route.Recipient, route.Amount)
	case RouteBridged:
		txRef, err = e.wallet.SubmitTransaction(ctx, route.Tx)
	default:
		return Result{}, &Error{Kind: FailureProvider, Msg: "unknown route kind " + string(route.Kind)}
	}
	if err != nil {
		return Result{}, classifyWalletError("submit transaction", err)
	}

	slog.Info("Transaction submitted", "tx", txRef, "kind", route.Kind)

	confirmCtx, cancel := context.WithTimeout(ctx, e.confirmTimeout)
	defer cancel()
	if err := e.wallet.WaitForConfirmation(confirmCtx, txRef); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(confirmCtx.Err(), context.DeadlineExceeded) {
			return Result{TxRef: txRef}, &Error{Kind: FailureTimedOut, Msg: "confirmation not observed within " + e.confirmTimeout.String(), Err: err}
		}
		return Result{TxRef: txRef}, classifyWalletError("await confirmation", err)
	}

	slog.Info("Transaction confirmed", "tx", txRef)

	result := Result{TxRef: txRef, Settled: false}
	if e.settler != nil {
		if err := e.settler.MarkPaid(ctx, shareToken, e.wallet.Address(), txRef); err != nil {
			// The on-chain payment stands; only the report-back failed.
			slog.Warn("Settlement callback failed", "token", shareToken, "tx", txRef, "error", err)
			return result, nil
		}
		result.Settled = true
	}
	return result, nil
}

// checkBalance verifies the payer covers amount (plus the estimated fee
// when it is charged in the same asset).
func (e *Executor) checkBalance(ctx context.Context, route Route) error {
	var (
		balance decimal.Decimal
		err     error
	)
	if route.Source.Native() {
		balance, err = e.wallet.NativeBalance(ctx)
	} else {
		balance, err = e.wallet.TokenBalance(ctx, route.Source.Address)
	}
	if err != nil {
		return classifyWalletError("query balance", err)
	}

	needed := route.Amount
	if route.Source.Native() {
		needed = needed.Add(route.EstimatedFee)
	}
	if balance.LessThan(needed) {
		return &Error{
			Kind: FailureInsufficientFunds,
			Msg:  "balance " + balance.String() + " below required " + needed.String(),
		}
	}
	return nil
}

// classifyWalletError maps wallet sentinels onto the user-facing
// taxonomy; anything unrecognized is a provider error.
func classifyWalletError(op string, err error) error {
	switch {
	case errors.Is(err, ErrUserRejected):
		return &Error{Kind: FailureUserRejected, Msg: op + " rejected by user", Err: err}
	case errors.Is(err, ErrInsufficientFunds):
		return &Error{Kind: FailureInsufficientFunds, Msg: op + " failed", Err: err}
	default:
		return &Error{Kind: FailureProvider, Msg: op + " failed", Err: err}
	}
}
