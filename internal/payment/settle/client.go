// Package settle reports confirmed payments back to the split API, so
// split state follows on-chain reality without manual reconciliation.
package settle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/splitpay/splitpay/internal/payment"
)

// Ensure Client implements payment.Settler
var _ payment.Settler = (*Client)(nil)

// Client calls the split API's mark-paid endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a settlement client against the split API base URL.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("split API base URL required")
	}
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type payRequest struct {
	Address     string `json:"address"`
	TxReference string `json:"txReference"`
}

type payResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// MarkPaid records the participant's payment on the split identified by
// shareToken.
func (c *Client) MarkPaid(ctx context.Context, shareToken, address, txRef string) error {
	body, err := json.Marshal(payRequest{Address: address, TxReference: txRef})
	if err != nil {
		return fmt.Errorf("marshal pay request: %w", err)
	}

	url := fmt.Sprintf("%s/api/splits/%s/pay", c.baseURL, shareToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mark paid request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read mark paid response: %w", err)
	}

	var decoded payResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return fmt.Errorf("decode mark paid response (status %d): %w", resp.StatusCode, err)
	}
	if !decoded.Success {
		return fmt.Errorf("mark paid rejected (status %d): %s", resp.StatusCode, decoded.Message)
	}
	return nil
}
