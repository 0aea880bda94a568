package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// amountEpsilon absorbs minor-unit rounding in provider-reported amounts.
var amountEpsilon = decimal.NewFromInt(1)

// GatewayTransaction is the provider's view of an externally settled
// payment, keyed by the caller-supplied reference.
type GatewayTransaction struct {
	Reference   string `json:"order_id"`
	Status      string `json:"transaction_status"`
	GrossAmount string `json:"gross_amount"`
}

// Settled reports whether the provider considers the money collected.
func (t *GatewayTransaction) Settled() bool {
	return t.Status == "settlement" || t.Status == "capture"
}

// GatewayClient queries the external payment provider for a transaction.
type GatewayClient interface {
	GetTransactionStatus(ctx context.Context, reference string) (*GatewayTransaction, error)
}

// HTTPGatewayClient calls the provider's status endpoint over HTTP with a
// bounded timeout.
type HTTPGatewayClient struct {
	baseURL   string
	serverKey string
	client    *http.Client
}

// NewHTTPGatewayClient creates a gateway client. The timeout bounds every
// status lookup so a slow provider cannot hang a checkout.
func NewHTTPGatewayClient(baseURL, serverKey string, timeout time.Duration) *HTTPGatewayClient {
	return &HTTPGatewayClient{
		baseURL:   baseURL,
		serverKey: serverKey,
		client:    &http.Client{Timeout: timeout},
	}
}

// GetTransactionStatus fetches the settlement status and paid amount for a
// reference from the provider.
func (c *HTTPGatewayClient) GetTransactionStatus(ctx context.Context, reference string) (*GatewayTransaction, error) {
	url := fmt.Sprintf("%s/v2/%s/status", c.baseURL, reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.SetBasicAuth(c.serverKey, "")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned status %d for reference %s", resp.StatusCode, reference)
	}

	var tx GatewayTransaction
	if err := json.NewDecoder(resp.Body).Decode(&tx); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return &tx, nil
}

// PaymentVerifier validates an external payment reference against the
// expected amount. The concrete strategy (real gateway or local stub) is
// chosen once at process start and injected into the order service.
type PaymentVerifier interface {
	Verify(ctx context.Context, reference string, expectedAmount int64) error
}

// GatewayVerifier verifies a reference against the external provider:
// the transaction must exist, be settled, and its paid amount must match
// the expected total within the epsilon.
type GatewayVerifier struct {
	client GatewayClient
}

// NewGatewayVerifier creates a GatewayVerifier around the given client.
func NewGatewayVerifier(client GatewayClient) *GatewayVerifier {
	return &GatewayVerifier{client: client}
}

// Verify queries the provider and checks settlement status and amount.
func (v *GatewayVerifier) Verify(ctx context.Context, reference string, expectedAmount int64) error {
	tx, err := v.client.GetTransactionStatus(ctx, reference)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPaymentGatewayUnavailable, err)
	}
	if !tx.Settled() {
		return fmt.Errorf("%w: provider reports %q for reference %s", ErrPaymentNotSettled, tx.Status, reference)
	}

	paid, err := decimal.NewFromString(tx.GrossAmount)
	if err != nil {
		return fmt.Errorf("%w: malformed gross amount %q", ErrPaymentGatewayUnavailable, tx.GrossAmount)
	}
	expected := decimal.NewFromInt(expectedAmount)
	if paid.Sub(expected).Abs().GreaterThan(amountEpsilon) {
		return &AmountMismatchError{
			Paid:     paid.Round(0).IntPart(),
			Expected: expectedAmount,
		}
	}
	return nil
}

// StubVerifier accepts every reference. It is selected when no gateway
// server key is configured, so development setups can exercise the gateway
// checkout path without a provider. The duplicate-reference guard still
// runs in the checkout saga, so exactly-once application holds regardless.
type StubVerifier struct{}

// Verify always succeeds.
func (StubVerifier) Verify(ctx context.Context, reference string, expectedAmount int64) error {
	return nil
}
