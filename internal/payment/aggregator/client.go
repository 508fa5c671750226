// Package aggregator is the HTTP client for the external cross-chain
// quoting collaborator. It speaks the aggregator's quote endpoint and
// translates its failure codes into the payment taxonomy; everything
// else about the vendor stays behind this boundary.
package aggregator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/splitpay/splitpay/internal/payment"
)

// Ensure Client implements payment.Quoter
var _ payment.Quoter = (*Client)(nil)

// Client calls the aggregator's quote API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Config holds client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient creates an aggregator client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("aggregator base URL required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Failure codes the aggregator returns.
const (
	codeNoRoute            = "NO_ROUTE"
	codeUnsupportedNetwork = "UNSUPPORTED_NETWORK"
)

type quoteResponse struct {
	Routes []routePayload `json:"routes"`
	Error  *apiError      `json:"error,omitempty"`
}

type routePayload struct {
	Fee             decimal.Decimal   `json:"fee"`
	DurationSeconds int               `json:"durationSeconds"`
	Tx              payment.TxPayload `json:"tx"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("aggregator error %s: %s", e.Code, e.Message)
}

// Quote requests candidate routes for the given parameters.
func (c *Client) Quote(ctx context.Context, req payment.QuoteRequest) ([]payment.Route, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal quote request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/quote", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &payment.Error{Kind: payment.FailureQuoteFailed, Msg: "quote request failed", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &payment.Error{Kind: payment.FailureQuoteFailed, Msg: "read quote response", Err: err}
	}

	var decoded quoteResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, &payment.Error{Kind: payment.FailureQuoteFailed, Msg: "decode quote response", Err: err}
	}

	if decoded.Error != nil {
		switch decoded.Error.Code {
		case codeNoRoute:
			return nil, &payment.Error{Kind: payment.FailureNoRoute, Msg: decoded.Error.Message, Err: decoded.Error}
		case codeUnsupportedNetwork:
			return nil, &payment.Error{Kind: payment.FailureUnsupportedDestination, Msg: decoded.Error.Message, Err: decoded.Error}
		default:
			return nil, &payment.Error{Kind: payment.FailureQuoteFailed, Msg: decoded.Error.Message, Err: decoded.Error}
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &payment.Error{
			Kind: payment.FailureQuoteFailed,
			Msg:  fmt.Sprintf("quote request failed with status %d", resp.StatusCode),
		}
	}

	source := payment.Asset{Chain: req.SourceChain, Address: req.SourceToken}
	dest := payment.Asset{Chain: req.DestChain, Address: req.DestToken}

	routes := make([]payment.Route, 0, len(decoded.Routes))
	for _, r := range decoded.Routes {
		routes = append(routes, payment.Route{
			Kind:              payment.RouteBridged,
			Source:            source,
			Destination:       dest,
			Amount:            req.Amount,
			Recipient:         req.DestAddress,
			EstimatedFee:      r.Fee,
			EstimatedDuration: time.Duration(r.DurationSeconds) * time.Second,
			Tx:                r.Tx,
		})
	}
	return routes, nil
}
