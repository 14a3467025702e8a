package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	paymentapp "github.com/agriconnect/backend/internal/application/payment"
	"github.com/agriconnect/backend/internal/domain/payment"
	"github.com/agriconnect/backend/internal/infrastructure/config"
	"github.com/google/uuid"
)

const (
	mtnMoMoBaseURL     = "https://proxy.momoapi.mtn.com"
	mtnMoMoEnvironment = "mtnghana"
)

// PhoneLookup resolves the mobile money number to charge for a user
type PhoneLookup interface {
	PhoneByUser(ctx context.Context, userID uuid.UUID) (string, error)
}

// MTNMoMoClient implements GatewayClient for MTN Mobile Money
// request-to-pay. There is no hosted checkout, the payer approves the
// charge on their handset, so the checkout URL stays empty.
type MTNMoMoClient struct {
	baseURL       string
	apiKey        string // base64 user:key pair for the token endpoint
	webhookSecret string
	phones        PhoneLookup
	httpClient    *http.Client
}

// NewMTNMoMoClient creates a new MTN MoMo collections client
func NewMTNMoMoClient(creds config.GatewayCredentials, phones PhoneLookup) *MTNMoMoClient {
	baseURL := strings.TrimRight(creds.BaseURL, "/")
	if baseURL == "" {
		baseURL = mtnMoMoBaseURL
	}

	return &MTNMoMoClient{
		baseURL:       baseURL,
		apiKey:        creds.SecretKey,
		webhookSecret: creds.WebhookSecret,
		phones:        phones,
		httpClient:    &http.Client{Timeout: defaultTimeout},
	}
}

type momoTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type momoParty struct {
	PartyIDType string `json:"partyIdType"`
	PartyID     string `json:"partyId"`
}

type momoRequestToPay struct {
	Amount       string    `json:"amount"`
	Currency     string    `json:"currency"`
	ExternalID   string    `json:"externalId"`
	Payer        momoParty `json:"payer"`
	PayerMessage string    `json:"payerMessage"`
	PayeeNote    string    `json:"payeeNote"`
}

// Initiate requests payment from the payer's mobile money wallet and
// returns the request reference used to poll and match the callback
func (c *MTNMoMoClient) Initiate(ctx context.Context, tx *payment.Transaction, _ string) (paymentapp.CheckoutIntent, error) {
	phone, err := c.phones.PhoneByUser(ctx, tx.UserID)
	if err != nil {
		return paymentapp.CheckoutIntent{}, fmt.Errorf("failed to resolve payer number: %w", err)
	}

	token, err := c.token(ctx)
	if err != nil {
		return paymentapp.CheckoutIntent{}, err
	}

	referenceID := uuid.New().String()

	payload := momoRequestToPay{
		Amount:     tx.Amount.StringFixed(2),
		Currency:   string(tx.Currency),
		ExternalID: tx.Reference,
		Payer: momoParty{
			PartyIDType: "MSISDN",
			PartyID:     strings.TrimPrefix(phone, "+"),
		},
		PayerMessage: "AgriConnect order payment",
		PayeeNote:    tx.Reference,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return paymentapp.CheckoutIntent{}, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/collection/v1_0/requesttopay", bytes.NewReader(body))
	if err != nil {
		return paymentapp.CheckoutIntent{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Reference-Id", referenceID)
	req.Header.Set("X-Target-Environment", mtnMoMoEnvironment)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return paymentapp.CheckoutIntent{}, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(resp.Body)
		return paymentapp.CheckoutIntent{}, fmt.Errorf("momo rejected request to pay: HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	return paymentapp.CheckoutIntent{GatewayReference: referenceID}, nil
}

// VerifySignature checks the callback's HMAC-SHA256 digest
func (c *MTNMoMoClient) VerifySignature(payload []byte, signature string) error {
	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return compareSignatures(expected, signature)
}

func (c *MTNMoMoClient) token(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/collection/token/", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request returned HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var token momoTokenResponse
	if err := json.Unmarshal(respBody, &token); err != nil {
		return "", fmt.Errorf("invalid token response: %w", err)
	}

	return token.AccessToken, nil
}

// Ensure MTNMoMoClient implements GatewayClient
var _ paymentapp.GatewayClient = (*MTNMoMoClient)(nil)
