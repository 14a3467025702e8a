package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	paymentapp "github.com/agriconnect/backend/internal/application/payment"
	"github.com/agriconnect/backend/internal/domain/payment"
	"github.com/agriconnect/backend/internal/infrastructure/config"
)

const stripeBaseURL = "https://api.stripe.com"

// StripeClient implements GatewayClient for Stripe Checkout sessions
type StripeClient struct {
	baseURL       string
	secretKey     string
	webhookSecret string
	httpClient    *http.Client
}

// NewStripeClient creates a new Stripe client
func NewStripeClient(creds config.GatewayCredentials) *StripeClient {
	baseURL := strings.TrimRight(creds.BaseURL, "/")
	if baseURL == "" {
		baseURL = stripeBaseURL
	}

	return &StripeClient{
		baseURL:       baseURL,
		secretKey:     creds.SecretKey,
		webhookSecret: creds.WebhookSecret,
		httpClient:    &http.Client{Timeout: defaultTimeout},
	}
}

type stripeSessionResponse struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Initiate creates a Checkout session and returns its hosted URL.
// Stripe's API is form-encoded rather than JSON.
func (c *StripeClient) Initiate(ctx context.Context, tx *payment.Transaction, callbackURL string) (paymentapp.CheckoutIntent, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("client_reference_id", tx.Reference)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(string(tx.Currency)))
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(tx.Amount.Shift(2).IntPart(), 10))
	form.Set("line_items[0][price_data][product_data][name]", "AgriConnect order "+tx.Reference)
	form.Set("metadata[reference]", tx.Reference)
	form.Set("metadata[user_id]", tx.UserID.String())
	if callbackURL != "" {
		form.Set("success_url", callbackURL)
		form.Set("cancel_url", callbackURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return paymentapp.CheckoutIntent{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return paymentapp.CheckoutIntent{}, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return paymentapp.CheckoutIntent{}, fmt.Errorf("failed to read gateway response: %w", err)
	}

	var result stripeSessionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return paymentapp.CheckoutIntent{}, fmt.Errorf("invalid gateway response: %w", err)
	}

	if result.Error != nil {
		return paymentapp.CheckoutIntent{}, fmt.Errorf("stripe rejected session: %s", result.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return paymentapp.CheckoutIntent{}, fmt.Errorf("gateway returned HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	return paymentapp.CheckoutIntent{
		GatewayReference: result.ID,
		CheckoutURL:      result.URL,
	}, nil
}

// VerifySignature checks a Stripe-Signature header of the form
// "t=<timestamp>,v1=<digest>" where the digest is HMAC-SHA256 over
// "<timestamp>.<payload>"
func (c *StripeClient) VerifySignature(payload []byte, signature string) error {
	var timestamp, digest string
	for _, part := range strings.Split(signature, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			digest = value
		}
	}
	if timestamp == "" || digest == "" {
		return fmt.Errorf("malformed signature header")
	}

	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	return compareSignatures(expected, digest)
}

// Ensure StripeClient implements GatewayClient
var _ paymentapp.GatewayClient = (*StripeClient)(nil)
