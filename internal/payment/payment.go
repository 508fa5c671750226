// Package payment implements the client-side payment flow: deciding
// whether a payer's share can be transferred directly or must be routed
// through a cross-chain bridge, and executing the resulting transaction
// through a connected wallet.
//
// The quoting aggregator and the wallet are external collaborators,
// consumed through the Quoter and Wallet interfaces. This package owns
// the route selection rules, the failure taxonomy and the settlement
// callback; it owns no vendor semantics.
package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset identifies a payable asset on a specific chain. An empty Address
// means the chain's native asset.
type Asset struct {
	Chain    string `json:"chain"`
	Address  string `json:"address,omitempty"`
	Symbol   string `json:"symbol,omitempty"`
	Decimals int    `json:"decimals,omitempty"`
}

// Native reports whether the asset is the chain's native asset.
func (a Asset) Native() bool {
	return a.Address == ""
}

// RouteKind distinguishes direct transfers from bridged ones.
type RouteKind string

const (
	// RouteDirect is a same-chain, same-token transfer. No quote needed.
	RouteDirect RouteKind = "direct"

	// RouteBridged goes through the aggregator; its transaction payload
	// is supplied wholesale by the quoting collaborator.
	RouteBridged RouteKind = "bridged"
)

// TxPayload is a ready-to-submit transaction. For bridged routes every
// field comes from the aggregator and is submitted unmodified.
type TxPayload struct {
	To    string `json:"to"`
	Data  string `json:"data,omitempty"`
	Value string `json:"value,omitempty"`
}

// Route is a resolved way to move the payer's share to the receiver.
type Route struct {
	Kind        RouteKind       `json:"kind"`
	Source      Asset           `json:"source"`
	Destination Asset           `json:"destination"`
	Amount      decimal.Decimal `json:"amount"`
	Recipient   string          `json:"recipient"`

	// EstimatedFee and EstimatedDuration are aggregator estimates,
	// zero for direct routes.
	EstimatedFee      decimal.Decimal `json:"estimatedFee"`
	EstimatedDuration time.Duration   `json:"estimatedDuration"`

	// Tx is set only for bridged routes.
	Tx TxPayload `json:"tx"`
}

// QuoteRequest is what the aggregator needs to propose routes.
type QuoteRequest struct {
	SourceChain   string          `json:"sourceChain"`
	SourceToken   string          `json:"sourceToken,omitempty"`
	SourceAddress string          `json:"sourceAddress"`
	DestChain     string          `json:"destChain"`
	DestToken     string          `json:"destToken,omitempty"`
	DestAddress   string          `json:"destAddress"`
	Amount        decimal.Decimal `json:"amount"`
}
