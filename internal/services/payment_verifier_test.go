package services_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lapak/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestGatewayVerifier_Settled(t *testing.T) {
	client := new(MockGatewayClient)
	verifier := services.NewGatewayVerifier(client)

	client.On("GetTransactionStatus", mock.Anything, "REF-1").Return(&services.GatewayTransaction{
		Reference:   "REF-1",
		Status:      "settlement",
		GrossAmount: "32500.00",
	}, nil).Once()

	err := verifier.Verify(context.Background(), "REF-1", 32500)
	assert.NoError(t, err)
	client.AssertExpectations(t)
}

func TestGatewayVerifier_CaptureCountsAsSettled(t *testing.T) {
	client := new(MockGatewayClient)
	verifier := services.NewGatewayVerifier(client)

	client.On("GetTransactionStatus", mock.Anything, "REF-1").Return(&services.GatewayTransaction{
		Status:      "capture",
		GrossAmount: "32500",
	}, nil).Once()

	assert.NoError(t, verifier.Verify(context.Background(), "REF-1", 32500))
}

func TestGatewayVerifier_ToleratesRoundingEpsilon(t *testing.T) {
	client := new(MockGatewayClient)
	verifier := services.NewGatewayVerifier(client)

	// One minor unit off is provider rounding, not a mismatch
	client.On("GetTransactionStatus", mock.Anything, "REF-1").Return(&services.GatewayTransaction{
		Status:      "settlement",
		GrossAmount: "32501",
	}, nil).Once()

	assert.NoError(t, verifier.Verify(context.Background(), "REF-1", 32500))
}

func TestGatewayVerifier_AmountMismatch(t *testing.T) {
	client := new(MockGatewayClient)
	verifier := services.NewGatewayVerifier(client)

	client.On("GetTransactionStatus", mock.Anything, "REF-1").Return(&services.GatewayTransaction{
		Status:      "settlement",
		GrossAmount: "30000",
	}, nil).Once()

	err := verifier.Verify(context.Background(), "REF-1", 32500)

	var amountErr *services.AmountMismatchError
	assert.ErrorAs(t, err, &amountErr)
	assert.Equal(t, int64(30000), amountErr.Paid)
	assert.Equal(t, int64(32500), amountErr.Expected)
}

func TestGatewayVerifier_NotSettled(t *testing.T) {
	client := new(MockGatewayClient)
	verifier := services.NewGatewayVerifier(client)

	for _, status := range []string{"pending", "deny", "expire", "cancel"} {
		client.On("GetTransactionStatus", mock.Anything, status).Return(&services.GatewayTransaction{
			Status:      status,
			GrossAmount: "32500",
		}, nil).Once()

		err := verifier.Verify(context.Background(), status, 32500)
		assert.ErrorIs(t, err, services.ErrPaymentNotSettled, "status %q must not verify", status)
	}
}

func TestGatewayVerifier_ProviderError(t *testing.T) {
	client := new(MockGatewayClient)
	verifier := services.NewGatewayVerifier(client)

	client.On("GetTransactionStatus", mock.Anything, "REF-1").
		Return(nil, fmt.Errorf("dial tcp: i/o timeout")).Once()

	err := verifier.Verify(context.Background(), "REF-1", 32500)
	assert.ErrorIs(t, err, services.ErrPaymentGatewayUnavailable)
}

func TestGatewayVerifier_MalformedAmount(t *testing.T) {
	client := new(MockGatewayClient)
	verifier := services.NewGatewayVerifier(client)

	client.On("GetTransactionStatus", mock.Anything, "REF-1").Return(&services.GatewayTransaction{
		Status:      "settlement",
		GrossAmount: "not-a-number",
	}, nil).Once()

	err := verifier.Verify(context.Background(), "REF-1", 32500)
	assert.ErrorIs(t, err, services.ErrPaymentGatewayUnavailable)
}

func TestHTTPGatewayClient_GetTransactionStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/REF-1/status", r.URL.Path)
		key, _, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "server-key", key)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"order_id":"REF-1","transaction_status":"settlement","gross_amount":"32500.00"}`)
	}))
	defer server.Close()

	client := services.NewHTTPGatewayClient(server.URL, "server-key", 5*time.Second)
	tx, err := client.GetTransactionStatus(context.Background(), "REF-1")
	assert.NoError(t, err)
	assert.Equal(t, "REF-1", tx.Reference)
	assert.Equal(t, "settlement", tx.Status)
	assert.Equal(t, "32500.00", tx.GrossAmount)
	assert.True(t, tx.Settled())
}

func TestHTTPGatewayClient_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := services.NewHTTPGatewayClient(server.URL, "server-key", 5*time.Second)
	_, err := client.GetTransactionStatus(context.Background(), "REF-404")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
