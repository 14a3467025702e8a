package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	paymentapp "github.com/agriconnect/backend/internal/application/payment"
	"github.com/agriconnect/backend/internal/domain/payment"
	"github.com/agriconnect/backend/internal/infrastructure/config"
)

const defaultTimeout = 30 * time.Second

// Clients builds one GatewayClient per configured gateway. Gateways
// without credentials are left out so checkout attempts against them
// fail fast in the application layer.
func Clients(cfg config.PaymentConfig, phones PhoneLookup) map[payment.GatewayCode]paymentapp.GatewayClient {
	clients := make(map[payment.GatewayCode]paymentapp.GatewayClient)

	if cfg.Paystack.SecretKey != "" {
		clients[payment.GatewayPaystack] = NewPaystackClient(cfg.Paystack)
	}
	if cfg.Flutterwave.SecretKey != "" {
		clients[payment.GatewayFlutterwave] = NewFlutterwaveClient(cfg.Flutterwave)
	}
	if cfg.MTNMoMo.SecretKey != "" {
		clients[payment.GatewayMTNMoMo] = NewMTNMoMoClient(cfg.MTNMoMo, phones)
	}
	if cfg.Stripe.SecretKey != "" {
		clients[payment.GatewayStripe] = NewStripeClient(cfg.Stripe)
	}

	return clients
}

// postJSON sends a JSON payload with a bearer token and decodes the
// JSON response into result
func postJSON(ctx context.Context, client *http.Client, url, bearer string, payload interface{}, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("gateway returned HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("invalid gateway response: %w", err)
	}

	return nil
}

// compareSignatures performs a constant-time comparison of hex digests
func compareSignatures(expected, actual string) error {
	if !hmac.Equal([]byte(strings.ToLower(expected)), []byte(strings.ToLower(actual))) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}
