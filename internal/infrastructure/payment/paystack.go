package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	paymentapp "github.com/agriconnect/backend/internal/application/payment"
	"github.com/agriconnect/backend/internal/domain/payment"
	"github.com/agriconnect/backend/internal/infrastructure/config"
)

const paystackBaseURL = "https://api.paystack.co"

// PaystackClient implements GatewayClient for Paystack hosted checkout
type PaystackClient struct {
	baseURL       string
	secretKey     string
	webhookSecret string
	httpClient    *http.Client
}

// NewPaystackClient creates a new Paystack client
func NewPaystackClient(creds config.GatewayCredentials) *PaystackClient {
	baseURL := strings.TrimRight(creds.BaseURL, "/")
	if baseURL == "" {
		baseURL = paystackBaseURL
	}
	webhookSecret := creds.WebhookSecret
	if webhookSecret == "" {
		// Paystack signs webhooks with the account secret key
		webhookSecret = creds.SecretKey
	}

	return &PaystackClient{
		baseURL:       baseURL,
		secretKey:     creds.SecretKey,
		webhookSecret: webhookSecret,
		httpClient:    &http.Client{Timeout: defaultTimeout},
	}
}

type paystackInitializeRequest struct {
	Email       string            `json:"email"`
	Amount      int64             `json:"amount"` // minor units
	Currency    string            `json:"currency"`
	Reference   string            `json:"reference"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Channels    []string          `json:"channels,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type paystackInitializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// Initiate registers the transaction and returns the hosted checkout URL
func (c *PaystackClient) Initiate(ctx context.Context, tx *payment.Transaction, callbackURL string) (paymentapp.CheckoutIntent, error) {
	payload := paystackInitializeRequest{
		// Checkout requires a mailbox, accounts are phone-first so a
		// per-user alias is sent instead
		Email:       fmt.Sprintf("%s@pay.agriconnect.app", tx.UserID),
		Amount:      tx.Amount.Shift(2).IntPart(),
		Currency:    string(tx.Currency),
		Reference:   tx.Reference,
		CallbackURL: callbackURL,
		Channels:    paystackChannels(tx.Method),
		Metadata: map[string]string{
			"user_id": tx.UserID.String(),
		},
	}

	var result paystackInitializeResponse
	if err := postJSON(ctx, c.httpClient, c.baseURL+"/transaction/initialize", c.secretKey, payload, &result); err != nil {
		return paymentapp.CheckoutIntent{}, err
	}

	if !result.Status {
		return paymentapp.CheckoutIntent{}, fmt.Errorf("paystack rejected initialization: %s", result.Message)
	}

	return paymentapp.CheckoutIntent{
		GatewayReference: result.Data.Reference,
		CheckoutURL:      result.Data.AuthorizationURL,
	}, nil
}

// VerifySignature checks the x-paystack-signature HMAC-SHA512 digest
func (c *PaystackClient) VerifySignature(payload []byte, signature string) error {
	mac := hmac.New(sha512.New, []byte(c.webhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return compareSignatures(expected, signature)
}

func paystackChannels(method payment.PaymentMethod) []string {
	switch method {
	case payment.PaymentMethodCard:
		return []string{"card"}
	case payment.PaymentMethodMobileMoney:
		return []string{"mobile_money"}
	case payment.PaymentMethodBankTransfer:
		return []string{"bank_transfer"}
	default:
		return nil
	}
}

// Ensure PaystackClient implements GatewayClient
var _ paymentapp.GatewayClient = (*PaystackClient)(nil)
