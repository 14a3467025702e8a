package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agriconnect/backend/internal/domain/payment"
	"github.com/agriconnect/backend/internal/domain/shared/valueobject"
	"github.com/agriconnect/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransaction(t *testing.T) *payment.Transaction {
	t.Helper()
	amount, err := valueobject.NewMoney(decimal.NewFromFloat(150.50), "GHS")
	require.NoError(t, err)
	tx, err := payment.NewTransaction("TXN-20260826-0001", payment.TransactionTypePayment, uuid.New(), payment.GatewayPaystack, amount)
	require.NoError(t, err)
	return tx
}

func TestPaystackClient_Initiate(t *testing.T) {
	t.Run("sends minor units and returns checkout URL", func(t *testing.T) {
		var received paystackInitializeRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/transaction/initialize", r.URL.Path)
			assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

			_, _ = w.Write([]byte(`{"status": true, "data": {"authorization_url": "https://checkout.paystack.com/abc123", "reference": "TXN-20260826-0001"}}`))
		}))
		defer server.Close()

		client := NewPaystackClient(config.GatewayCredentials{
			BaseURL:   server.URL,
			SecretKey: "sk_test_123",
		})

		intent, err := client.Initiate(context.Background(), newTestTransaction(t), "https://app.agriconnect.app/pay/done")

		require.NoError(t, err)
		assert.Equal(t, "https://checkout.paystack.com/abc123", intent.CheckoutURL)
		assert.Equal(t, "TXN-20260826-0001", intent.GatewayReference)
		assert.Equal(t, int64(15050), received.Amount)
		assert.Equal(t, "GHS", received.Currency)
		assert.Equal(t, "TXN-20260826-0001", received.Reference)
		assert.Equal(t, "https://app.agriconnect.app/pay/done", received.CallbackURL)
	})

	t.Run("returns error when initialization fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status": false, "message": "Invalid key"}`))
		}))
		defer server.Close()

		client := NewPaystackClient(config.GatewayCredentials{BaseURL: server.URL, SecretKey: "bad"})

		_, err := client.Initiate(context.Background(), newTestTransaction(t), "")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid key")
	})
}

func TestPaystackClient_VerifySignature(t *testing.T) {
	client := NewPaystackClient(config.GatewayCredentials{SecretKey: "sk_test_123"})
	payload := []byte(`{"event": "charge.success"}`)

	mac := hmac.New(sha512.New, []byte("sk_test_123"))
	mac.Write(payload)
	valid := hex.EncodeToString(mac.Sum(nil))

	assert.NoError(t, client.VerifySignature(payload, valid))
	assert.Error(t, client.VerifySignature(payload, "deadbeef"))
	assert.Error(t, client.VerifySignature([]byte(`tampered`), valid))
}

func TestPaystackChannels(t *testing.T) {
	assert.Equal(t, []string{"card"}, paystackChannels(payment.PaymentMethodCard))
	assert.Equal(t, []string{"mobile_money"}, paystackChannels(payment.PaymentMethodMobileMoney))
	assert.Equal(t, []string{"bank_transfer"}, paystackChannels(payment.PaymentMethodBankTransfer))
	assert.Nil(t, paystackChannels(payment.PaymentMethod("unknown")))
}
