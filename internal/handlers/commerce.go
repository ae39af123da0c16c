package handlers

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"paintsnap/internal/commerce"
	"paintsnap/internal/models"
	"paintsnap/internal/security"
	"paintsnap/internal/service"
)

type webhookEvent struct {
	EventID       string `json:"eventId" binding:"required"`
	TransactionID string `json:"transactionId"`
	Type          string `json:"type" binding:"required"`
	AppUserID     string `json:"appUserId" binding:"required"`
	ProductID     string `json:"productId" binding:"required"`
}

// ledgerKey picks the id a grant is deduplicated on. The store
// transaction id wins when present, so a purchase delivered both by
// webhook and by a client-side restore is granted once.
func (e webhookEvent) ledgerKey() string {
	if e.TransactionID != "" {
		return e.TransactionID
	}
	return e.EventID
}

// CommerceWebhook receives purchase-completion callbacks from the
// commerce provider. The body signature authenticates the caller; the
// ledger's event id makes redelivery harmless.
func (h HandlerSet) CommerceWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}

	signature := c.GetHeader(security.HeaderWebhookSignature)
	if !security.ValidateWebhookSignature(h.cfg.Commerce.WebhookSecret, signature, body) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_signature"})
		return
	}

	c.Request.Body = newReadCloser(body)
	var event webhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch event.Type {
	case "purchase", "non_renewing_purchase":
		_, applied, err := h.commerceSvc.ApplyPurchase(c.Request.Context(), service.PurchaseEvent{
			EventID:   event.ledgerKey(),
			UserID:    event.AppUserID,
			ProductID: event.ProductID,
			Source:    models.LedgerSourcePurchase,
		})
		if err != nil {
			h.log.Error().Err(err).Str("event_id", event.EventID).Msg("apply purchase failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"applied": applied})
	default:
		// Unknown event types are acknowledged so the provider stops
		// retrying them.
		h.log.Warn().Str("type", event.Type).Msg("unhandled webhook event type")
		c.JSON(http.StatusOK, gin.H{"applied": false})
	}
}

// RestorePurchases reconciles a customer-info snapshot the client got
// back from a purchase or restore call.
func (h HandlerSet) RestorePurchases(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var info commerce.CustomerInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.commerceSvc.ApplyCustomerInfo(c.Request.Context(), user.ID, info)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("restore failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(updated)})
}

func newReadCloser(b []byte) io.ReadCloser {
	return io.NopCloser(bytes.NewReader(b))
}
