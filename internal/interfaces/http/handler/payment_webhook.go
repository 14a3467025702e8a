package handler

import (
	"encoding/json"
	"io"
	"net/http"

	paymentapp "github.com/agriconnect/backend/internal/application/payment"
	"github.com/agriconnect/backend/internal/domain/payment"
	"github.com/gin-gonic/gin"
)

// maxWebhookBody caps webhook payloads at 1 MiB.
const maxWebhookBody = 1 << 20

// WebhookHandler receives asynchronous payment notifications from the
// gateways. Endpoints are unauthenticated; each request is verified
// against the gateway's signature scheme instead.
type WebhookHandler struct {
	BaseHandler
	paymentService *paymentapp.PaymentService
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(paymentService *paymentapp.PaymentService) *WebhookHandler {
	return &WebhookHandler{paymentService: paymentService}
}

// Receive processes a gateway callback. Gateways retry on non-2xx, so
// duplicates and already-settled events still return 200.
// POST /api/v1/payments/webhooks/:gateway
func (h *WebhookHandler) Receive(c *gin.Context) {
	gateway := payment.GatewayCode(c.Param("gateway"))
	if !gateway.IsValid() {
		h.NotFound(c, "Unknown payment gateway")
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		h.BadRequest(c, "Failed to read webhook payload")
		return
	}

	eventID, eventType, err := extractWebhookEvent(gateway, payload)
	if err != nil {
		h.BadRequest(c, "Malformed webhook payload")
		return
	}

	signature := c.GetHeader(signatureHeader(gateway))
	if err := h.paymentService.HandleWebhook(c.Request.Context(), gateway, eventID, eventType, payload, signature); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// signatureHeader returns the header each gateway signs its callbacks with.
func signatureHeader(gateway payment.GatewayCode) string {
	switch gateway {
	case payment.GatewayPaystack:
		return "x-paystack-signature"
	case payment.GatewayFlutterwave:
		return "verif-hash"
	case payment.GatewayStripe:
		return "Stripe-Signature"
	case payment.GatewayMTNMoMo:
		return "X-Signature"
	default:
		return ""
	}
}

// webhookEnvelope covers the identifying fields of every supported
// gateway's callback body.
type webhookEnvelope struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Event string `json:"event"`
	Data  struct {
		ID        json.Number `json:"id"`
		Reference string      `json:"reference"`
		TxRef     string      `json:"tx_ref"`
	} `json:"data"`
	ReferenceID string `json:"referenceId"`
	Status      string `json:"status"`
}

// extractWebhookEvent pulls the gateway-assigned event ID and type out
// of the raw payload. The ID keys webhook deduplication, so it must be
// stable across gateway retries.
func extractWebhookEvent(gateway payment.GatewayCode, payload []byte) (string, string, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return "", "", err
	}

	switch gateway {
	case payment.GatewayStripe:
		return env.ID, env.Type, nil
	case payment.GatewayPaystack:
		eventID := env.Data.ID.String()
		if eventID == "" {
			eventID = env.Data.Reference
		}
		return eventID, env.Event, nil
	case payment.GatewayFlutterwave:
		eventID := env.Data.ID.String()
		if eventID == "" {
			eventID = env.Data.TxRef
		}
		return eventID, env.Event, nil
	case payment.GatewayMTNMoMo:
		return env.ReferenceID, env.Status, nil
	default:
		return env.ID, env.Type, nil
	}
}
