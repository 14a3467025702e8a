package payment

import (
	"context"
	"crypto/hmac"
	"fmt"
	"net/http"
	"strings"

	paymentapp "github.com/agriconnect/backend/internal/application/payment"
	"github.com/agriconnect/backend/internal/domain/payment"
	"github.com/agriconnect/backend/internal/infrastructure/config"
)

const flutterwaveBaseURL = "https://api.flutterwave.com/v3"

// FlutterwaveClient implements GatewayClient for Flutterwave hosted checkout
type FlutterwaveClient struct {
	baseURL       string
	secretKey     string
	webhookSecret string
	httpClient    *http.Client
}

// NewFlutterwaveClient creates a new Flutterwave client
func NewFlutterwaveClient(creds config.GatewayCredentials) *FlutterwaveClient {
	baseURL := strings.TrimRight(creds.BaseURL, "/")
	if baseURL == "" {
		baseURL = flutterwaveBaseURL
	}

	return &FlutterwaveClient{
		baseURL:       baseURL,
		secretKey:     creds.SecretKey,
		webhookSecret: creds.WebhookSecret,
		httpClient:    &http.Client{Timeout: defaultTimeout},
	}
}

type flutterwaveCustomer struct {
	Email string `json:"email"`
}

type flutterwavePaymentRequest struct {
	TxRef       string              `json:"tx_ref"`
	Amount      string              `json:"amount"`
	Currency    string              `json:"currency"`
	RedirectURL string              `json:"redirect_url,omitempty"`
	Customer    flutterwaveCustomer `json:"customer"`
	Meta        map[string]string   `json:"meta,omitempty"`
}

type flutterwavePaymentResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Link string `json:"link"`
	} `json:"data"`
}

// Initiate registers the transaction and returns the payment link.
// Flutterwave keys the payment on tx_ref, so the platform reference
// doubles as the gateway reference.
func (c *FlutterwaveClient) Initiate(ctx context.Context, tx *payment.Transaction, callbackURL string) (paymentapp.CheckoutIntent, error) {
	payload := flutterwavePaymentRequest{
		TxRef:       tx.Reference,
		Amount:      tx.Amount.StringFixed(2),
		Currency:    string(tx.Currency),
		RedirectURL: callbackURL,
		Customer: flutterwaveCustomer{
			Email: fmt.Sprintf("%s@pay.agriconnect.app", tx.UserID),
		},
		Meta: map[string]string{
			"user_id": tx.UserID.String(),
		},
	}

	var result flutterwavePaymentResponse
	if err := postJSON(ctx, c.httpClient, c.baseURL+"/payments", c.secretKey, payload, &result); err != nil {
		return paymentapp.CheckoutIntent{}, err
	}

	if result.Status != "success" {
		return paymentapp.CheckoutIntent{}, fmt.Errorf("flutterwave rejected payment: %s", result.Message)
	}

	return paymentapp.CheckoutIntent{
		GatewayReference: tx.Reference,
		CheckoutURL:      result.Data.Link,
	}, nil
}

// VerifySignature checks the verif-hash header. Flutterwave sends the
// configured secret hash verbatim rather than a payload digest.
func (c *FlutterwaveClient) VerifySignature(_ []byte, signature string) error {
	if !hmac.Equal([]byte(c.webhookSecret), []byte(signature)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}

// Ensure FlutterwaveClient implements GatewayClient
var _ paymentapp.GatewayClient = (*FlutterwaveClient)(nil)
