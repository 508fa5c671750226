package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Quoter is the external cross-chain quoting collaborator. It returns
// candidate routes ranked by the caller, or a typed failure (no route,
// unsupported destination, quote failed).
type Quoter interface {
	Quote(ctx context.Context, req QuoteRequest) ([]Route, error)
}

// Wallet is the external wallet-provider collaborator: a connected
// account with a signer able to submit transactions and await their
// confirmation. Implementations return ErrUserRejected and
// ErrInsufficientFunds so the executor can classify failures.
type Wallet interface {
	// Address is the connected account.
	Address() string

	// ChainID is the currently selected chain.
	ChainID() string

	// NativeBalance returns the native-asset balance.
	NativeBalance(ctx context.Context) (decimal.Decimal, error)

	// TokenBalance returns the balance of a token contract.
	TokenBalance(ctx context.Context, tokenAddress string) (decimal.Decimal, error)

	// Transfer performs a plain value or token transfer and returns the
	// transaction reference.
	Transfer(ctx context.Context, asset Asset, to string, amount decimal.Decimal) (string, error)

	// SubmitTransaction submits an aggregator-supplied payload
	// unmodified and returns the transaction reference.
	SubmitTransaction(ctx context.Context, tx TxPayload) (string, error)

	// WaitForConfirmation blocks until the transaction is confirmed or
	// ctx is done.
	WaitForConfirmation(ctx context.Context, txRef string) error
}

// Settler reports a confirmed payment back to the split service,
// closing the loop between on-chain execution and split state.
type Settler interface {
	MarkPaid(ctx context.Context, shareToken, address, txRef string) error
}
