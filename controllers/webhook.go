// controllers/webhook.go
package controllers

import (
	"net/http"

	"telecare-backend/config"
	"telecare-backend/services"
	"telecare-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Reactor is wired from main with the opt-out/opt-in service.
var Reactor services.EventHandler

// Webhook payload structs mirror the Meta Cloud API event envelope, down to
// the fields this service reads.

type webhookInteractive struct {
	Type        string `json:"type"`
	ButtonReply struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"button_reply"`
}

type webhookText struct {
	Body string `json:"body"`
}

type webhookMessage struct {
	From        string              `json:"from"`
	Interactive *webhookInteractive `json:"interactive"`
	Text        *webhookText        `json:"text"`
}

type webhookStatus struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
}

type webhookValue struct {
	Messages []webhookMessage `json:"messages"`
	Statuses []webhookStatus  `json:"statuses"`
}

type webhookChange struct {
	Value webhookValue `json:"value"`
}

type webhookEntry struct {
	Changes []webhookChange `json:"changes"`
}

type webhookPayload struct {
	Entry []webhookEntry `json:"entry"`
}

// VerifyWebhook answers the Meta verification handshake
func VerifyWebhook(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == config.AppConfig.WebhookVerifyToken {
		utils.GetLogger().Info("webhook verification succeeded")
		c.String(http.StatusOK, challenge)
		return
	}

	utils.GetLogger().Warn("webhook verification failed", zap.String("mode", mode))
	c.String(http.StatusForbidden, "invalid verify token")
}

// ReceiveWebhook normalizes inbound events and hands them to the reactor.
// It always acknowledges with 200: a processing failure is ours to log, not
// the provider's to retry.
func ReceiveWebhook(c *gin.Context) {
	var payload webhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.GetLogger().Warn("unparseable webhook event", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "received"})
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				event, ok := normalizeMessage(msg)
				if !ok {
					continue
				}
				if err := Reactor.HandleEvent(event); err != nil {
					utils.GetLogger().Error("failed to process inbound event",
						zap.String("sender", event.Sender),
						zap.String("kind", event.Kind),
						zap.Error(err),
					)
				}
			}

			// Delivery receipts are audit-only.
			for _, status := range change.Value.Statuses {
				utils.GetLogger().Info("delivery status received",
					zap.String("message_id", status.ID),
					zap.String("status", status.Status),
					zap.String("recipient", status.RecipientID),
				)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

func normalizeMessage(msg webhookMessage) (services.InboundEvent, bool) {
	if msg.Interactive != nil && msg.Interactive.Type == "button_reply" {
		return services.InboundEvent{
			Sender:  msg.From,
			Kind:    services.EventButton,
			Payload: msg.Interactive.ButtonReply.ID,
		}, true
	}
	if msg.Text != nil {
		return services.InboundEvent{
			Sender:  msg.From,
			Kind:    services.EventText,
			Payload: msg.Text.Body,
		}, true
	}
	return services.InboundEvent{}, false
}
