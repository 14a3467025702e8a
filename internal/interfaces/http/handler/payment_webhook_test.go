package handler

import (
	"testing"

	"github.com/agriconnect/backend/internal/domain/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatureHeader(t *testing.T) {
	tests := []struct {
		gateway payment.GatewayCode
		header  string
	}{
		{payment.GatewayPaystack, "x-paystack-signature"},
		{payment.GatewayFlutterwave, "verif-hash"},
		{payment.GatewayStripe, "Stripe-Signature"},
		{payment.GatewayMTNMoMo, "X-Signature"},
		{payment.GatewayCode("unknown"), ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.gateway), func(t *testing.T) {
			assert.Equal(t, tt.header, signatureHeader(tt.gateway))
		})
	}
}

func TestExtractWebhookEvent(t *testing.T) {
	tests := []struct {
		name      string
		gateway   payment.GatewayCode
		payload   string
		eventID   string
		eventType string
	}{
		{
			name:      "stripe event",
			gateway:   payment.GatewayStripe,
			payload:   `{"id":"evt_123","type":"charge.succeeded"}`,
			eventID:   "evt_123",
			eventType: "charge.succeeded",
		},
		{
			name:      "paystack numeric data id",
			gateway:   payment.GatewayPaystack,
			payload:   `{"event":"charge.success","data":{"id":302961,"reference":"AGC-REF-1"}}`,
			eventID:   "302961",
			eventType: "charge.success",
		},
		{
			name:      "paystack falls back to reference",
			gateway:   payment.GatewayPaystack,
			payload:   `{"event":"charge.success","data":{"reference":"AGC-REF-2"}}`,
			eventID:   "AGC-REF-2",
			eventType: "charge.success",
		},
		{
			name:      "flutterwave tx_ref fallback",
			gateway:   payment.GatewayFlutterwave,
			payload:   `{"event":"charge.completed","data":{"tx_ref":"AGC-REF-3"}}`,
			eventID:   "AGC-REF-3",
			eventType: "charge.completed",
		},
		{
			name:      "mtn momo reference",
			gateway:   payment.GatewayMTNMoMo,
			payload:   `{"referenceId":"b7f2","status":"SUCCESSFUL"}`,
			eventID:   "b7f2",
			eventType: "SUCCESSFUL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eventID, eventType, err := extractWebhookEvent(tt.gateway, []byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.eventID, eventID)
			assert.Equal(t, tt.eventType, eventType)
		})
	}
}

func TestExtractWebhookEvent_MalformedPayload(t *testing.T) {
	_, _, err := extractWebhookEvent(payment.GatewayStripe, []byte("not json"))
	assert.Error(t, err)
}
