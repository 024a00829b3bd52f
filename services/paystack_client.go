// earnio-backend/services/paystack_client.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// PaystackClient talks to the hosted payment gateway. Only the verify
// endpoint is consumed server-side; checkout itself happens on the client
// against the public key.
type PaystackClient struct {
	BaseURL   string
	SecretKey string
	Client    *http.Client
}

// VerifyData is the slice of the gateway's verify response we act on.
type VerifyData struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

type verifyResponse struct {
	Status  bool       `json:"status"`
	Message string     `json:"message"`
	Data    VerifyData `json:"data"`
}

func NewPaystackClient(baseURL, secretKey string) *PaystackClient {
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}
	return &PaystackClient{
		BaseURL:   baseURL,
		SecretKey: secretKey,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Verify calls GET /transaction/verify/{reference} on the gateway.
// A nil error with Data.Status != "success" means the gateway answered but
// the charge has not settled.
func (c *PaystackClient) Verify(ctx context.Context, reference string) (*VerifyData, error) {
	url := fmt.Sprintf("%s/transaction/verify/%s", c.BaseURL, reference)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("Paystack verify returned %d for %s: %s", resp.StatusCode, reference, string(body))
		return nil, fmt.Errorf("gateway verify failed: %d", resp.StatusCode)
	}

	var out verifyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	if !out.Status {
		return nil, fmt.Errorf("gateway verify rejected: %s", out.Message)
	}

	return &out.Data, nil
}
