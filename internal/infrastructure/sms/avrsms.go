package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	commsapp "github.com/agriconnect/backend/internal/application/comms"
	"github.com/agriconnect/backend/internal/domain/comms"
	"github.com/agriconnect/backend/internal/infrastructure/config"
)

const (
	defaultTimeout = 30 * time.Second

	// validityPeriod is how long the provider keeps retrying delivery
	validityPeriod = 86400 // 24 hours in seconds

	smsTypeText      = "T"
	encodingText     = "T"
	statusSuccessful = "S"
)

// AVRSMSGateway implements SMSGateway against the AVRSMS HTTP API
type AVRSMSGateway struct {
	baseURL    string
	apiID      string
	password   string
	senderID   string
	httpClient *http.Client
}

// NewAVRSMSGateway creates a new AVRSMS gateway client
func NewAVRSMSGateway(cfg config.SMSConfig) *AVRSMSGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &AVRSMSGateway{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiID:      cfg.APIID,
		password:   cfg.Password,
		senderID:   cfg.SenderID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type sendSMSRequest struct {
	APIID                   string `json:"api_id"`
	APIPassword             string `json:"api_password"`
	SMSType                 string `json:"sms_type"`
	Encoding                string `json:"encoding"`
	SenderID                string `json:"sender_id"`
	PhoneNumber             string `json:"phonenumber"`
	TextMessage             string `json:"textmessage"`
	ValidityPeriodInSeconds int    `json:"ValidityPeriodInSeconds"`
	UID                     string `json:"uid"`
}

type sendSMSResponse struct {
	MessageID json.Number `json:"message_id"`
	Status    string      `json:"status"`
	Remarks   string      `json:"remarks"`
	UID       string      `json:"uid"`
}

type deliveryStatusRequest struct {
	APIID       string `json:"api_id"`
	APIPassword string `json:"api_password"`
	MessageID   string `json:"message_id"`
}

type deliveryStatusResponse struct {
	MessageID   json.Number `json:"message_id"`
	PhoneNumber string      `json:"PhoneNumber"`
	DLRStatus   string      `json:"DLRStatus"`
	SentDateUTC string      `json:"SentDateUTC"`
	ErrorCode   int         `json:"ErrorCode"`
	Remarks     string      `json:"Remarks"`
}

// Send dispatches a message and returns the provider's message ID.
// The sender ID falls back from provider configuration to the gateway
// default, the provider controls branding per corridor.
func (g *AVRSMSGateway) Send(ctx context.Context, message *comms.SMSMessage, provider *comms.SMSProvider) (string, error) {
	senderID := g.senderID
	if provider != nil && provider.SenderID != "" {
		senderID = provider.SenderID
	}

	payload := sendSMSRequest{
		APIID:                   g.apiID,
		APIPassword:             g.password,
		SMSType:                 smsTypeText,
		Encoding:                encodingText,
		SenderID:                senderID,
		PhoneNumber:             formatPhoneNumber(message.Recipient),
		TextMessage:             message.Content,
		ValidityPeriodInSeconds: validityPeriod,
		UID:                     message.ID.String(),
	}

	var result sendSMSResponse
	if err := g.post(ctx, "/SendSMS", payload, &result); err != nil {
		return "", err
	}

	if result.Status != statusSuccessful {
		return "", fmt.Errorf("provider rejected message: %s", result.Remarks)
	}

	return result.MessageID.String(), nil
}

// DeliveryStatus polls the provider for the current state of a sent message
func (g *AVRSMSGateway) DeliveryStatus(ctx context.Context, providerMessageID string) (comms.MessageStatus, error) {
	payload := deliveryStatusRequest{
		APIID:       g.apiID,
		APIPassword: g.password,
		MessageID:   providerMessageID,
	}

	var result deliveryStatusResponse
	if err := g.post(ctx, "/GetDeliveryStatus", payload, &result); err != nil {
		return "", err
	}

	return mapDLRStatus(result.DLRStatus), nil
}

func (g *AVRSMSGateway) post(ctx context.Context, path string, payload interface{}, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to SMS provider failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("SMS provider returned HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("invalid provider response: %w", err)
	}

	return nil
}

// formatPhoneNumber strips the characters the provider does not accept,
// numbers go out as bare international digits
func formatPhoneNumber(phone string) string {
	replacer := strings.NewReplacer("+", "", "-", "", " ", "")
	return replacer.Replace(phone)
}

// mapDLRStatus translates provider DLR codes to message statuses.
// Anything not terminal counts as still sent.
func mapDLRStatus(dlr string) comms.MessageStatus {
	switch strings.ToLower(dlr) {
	case "delivered":
		return comms.MessageStatusDelivered
	case "undelivered", "failed", "expired", "rejected":
		return comms.MessageStatusFailed
	default:
		return comms.MessageStatusSent
	}
}

// Ensure AVRSMSGateway implements SMSGateway
var _ commsapp.SMSGateway = (*AVRSMSGateway)(nil)
