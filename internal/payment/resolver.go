package payment

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// defaultQuoteTTL bounds how long a quote result is reused for
// identical parameters.
const defaultQuoteTTL = 30 * time.Second

// Resolver decides how a payer's share reaches the receiver: a direct
// same-chain transfer, or a bridged route quoted by the aggregator.
// Retries are user-initiated; the resolver never retries on its own.
type Resolver struct {
	quoter Quoter
	cache  *quoteCache
}

// NewResolver creates a resolver over the given quoting collaborator.
func NewResolver(quoter Quoter) *Resolver {
	return &Resolver{
		quoter: quoter,
		cache:  newQuoteCache(defaultQuoteTTL),
	}
}

// Resolve picks the route for paying amount of payer's asset to the
// receiver. Source and destination matching the same chain and token
// address is a direct transfer; anything else needs a bridge quote, and
// the cheapest candidate by estimated fee wins.
func (r *Resolver) Resolve(ctx context.Context, payer Asset, payerAddr string, receiver Asset, receiverAddr string, amount decimal.Decimal) (Route, error) {
	if payer.Chain == receiver.Chain && strings.EqualFold(payer.Address, receiver.Address) {
		slog.Debug("Direct route selected", "chain", payer.Chain, "token", payer.Symbol)
		return Route{
			Kind:        RouteDirect,
			Source:      payer,
			Destination: receiver,
			Amount:      amount,
			Recipient:   receiverAddr,
		}, nil
	}

	req := QuoteRequest{
		SourceChain:   payer.Chain,
		SourceToken:   payer.Address,
		SourceAddress: payerAddr,
		DestChain:     receiver.Chain,
		DestToken:     receiver.Address,
		DestAddress:   receiverAddr,
		Amount:        amount,
	}

	routes, cached := r.cache.get(req)
	if !cached {
		var err error
		routes, err = r.quoter.Quote(ctx, req)
		if err != nil {
			// Collaborator errors surface verbatim as resolution
			// failures; typed kinds pass through untouched.
			var typed *Error
			if errors.As(err, &typed) {
				return Route{}, err
			}
			return Route{}, &Error{Kind: FailureQuoteFailed, Msg: "quote request failed", Err: err}
		}
		r.cache.put(req, routes)
	}

	if len(routes) == 0 {
		return Route{}, &Error{Kind: FailureNoRoute, Msg: "no route from " + payer.Chain + " to " + receiver.Chain}
	}

	best := routes[0]
	for _, candidate := range routes[1:] {
		if candidate.EstimatedFee.LessThan(best.EstimatedFee) {
			best = candidate
		}
	}

	slog.Debug("Bridged route selected",
		"source_chain", payer.Chain,
		"dest_chain", receiver.Chain,
		"fee", best.EstimatedFee,
		"candidates", len(routes),
	)
	return best, nil
}
