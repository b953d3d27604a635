package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to the Kkiapay server-side verification endpoint. The
// storefront widget runs in the browser; when a private key is configured
// the API cross-checks every client-reported result against this endpoint
// before applying it.
type Client struct {
	baseURL    string
	privateKey string
	httpClient *http.Client
}

func NewClient(baseURL, privateKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		privateKey: privateKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// VerifyResponse is the subset of the provider's transaction record we use.
type VerifyResponse struct {
	TransactionID string  `json:"transactionId"`
	Status        string  `json:"status"` // SUCCESS, FAILED, PENDING
	Amount        float64 `json:"amount"`
}

// VerifyTransaction fetches the authoritative status of a transaction.
func (c *Client) VerifyTransaction(ctx context.Context, transactionID string) (*VerifyResponse, error) {
	payload, err := json.Marshal(map[string]string{"transactionId": transactionID})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/transactions/status", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-private-key", c.privateKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kkiapay: verification endpoint returned %d", resp.StatusCode)
	}

	var out VerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
