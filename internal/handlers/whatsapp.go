package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Ananth-NQI/orderbot/internal/apperr"
	"github.com/Ananth-NQI/orderbot/internal/log"
	"github.com/Ananth-NQI/orderbot/internal/services"
)

// Conversation runs one dialog turn for an inbound message.
type Conversation interface {
	HandleInbound(ctx context.Context, msg services.InboundMessage) ([]string, error)
}

// WhatsAppHandler handles WhatsApp webhook requests
type WhatsAppHandler struct {
	conversation Conversation
	verifyToken  string
	logger       zerolog.Logger
}

// NewWhatsAppHandler creates a new WhatsApp handler
func NewWhatsAppHandler(conversation Conversation, verifyToken string) *WhatsAppHandler {
	return &WhatsAppHandler{
		conversation: conversation,
		verifyToken:  verifyToken,
		logger:       log.WithComponent("whatsapp_handler"),
	}
}

// MetaWebhookPayload is the Cloud API notification envelope. Only the fields
// needed for text messages are decoded.
type MetaWebhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		ID      string `json:"id"`
		Changes []struct {
			Field string `json:"field"`
			Value struct {
				Messages []MetaMessage `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// MetaMessage is one inbound Cloud API message.
type MetaMessage struct {
	ID   string `json:"id"`
	From string `json:"from"`
	Type string `json:"type"`
	Text *struct {
		Body string `json:"body"`
	} `json:"text"`
}

// TwilioWebhookPayload represents incoming WhatsApp message from Twilio
type TwilioWebhookPayload struct {
	MessageSid string `form:"MessageSid"`
	AccountSid string `form:"AccountSid"`
	From       string `form:"From"` // whatsapp:+573001234567
	To         string `form:"To"`
	Body       string `form:"Body"`
	NumMedia   string `form:"NumMedia"`
}

// TestWebhookPayload drives a turn without a messaging provider.
type TestWebhookPayload struct {
	From    string `json:"from"`
	Message string `json:"message"`
	ID      string `json:"id"`
}

// Verify answers the Cloud API subscription handshake.
func (h *WhatsAppHandler) Verify(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")

	if mode != "subscribe" || h.verifyToken == "" || token != h.verifyToken {
		h.logger.Warn().Str("mode", mode).Msg("webhook verification rejected")
		return c.SendStatus(fiber.StatusForbidden)
	}

	h.logger.Info().Msg("webhook verified")
	return c.Status(fiber.StatusOK).SendString(c.Query("hub.challenge"))
}

// HandleMetaWebhook processes Cloud API notifications. Malformed or
// non-text notifications are acknowledged and dropped so the platform does
// not redeliver them.
func (h *WhatsAppHandler) HandleMetaWebhook(c *fiber.Ctx) error {
	var payload MetaWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		h.logger.Warn().Err(err).Msg("unparseable webhook payload")
		return c.SendStatus(fiber.StatusOK)
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, m := range change.Value.Messages {
				if m.Text == nil {
					h.logger.Debug().Str("message_id", m.ID).Str("type", m.Type).Msg("non-text message ignored")
					continue
				}
				h.dispatch(c.UserContext(), services.InboundMessage{
					ID:         m.ID,
					CustomerID: m.From,
					Text:       m.Text.Body,
				})
			}
		}
	}

	return c.SendStatus(fiber.StatusOK)
}

// HandleTwilioWebhook processes Twilio form-encoded messages.
func (h *WhatsAppHandler) HandleTwilioWebhook(c *fiber.Ctx) error {
	var payload TwilioWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		h.logger.Warn().Err(err).Msg("unparseable twilio payload")
		return c.SendStatus(fiber.StatusOK)
	}

	// Form values alias the pooled request buffer unless the app is
	// Immutable; the conversation keeps them as map keys and session data.
	h.dispatch(c.UserContext(), services.InboundMessage{
		ID:         utils.CopyString(payload.MessageSid),
		CustomerID: utils.CopyString(services.StripWhatsAppPrefix(payload.From)),
		Text:       utils.CopyString(payload.Body),
	})

	// Replies go out through the REST API, so the TwiML answer stays empty.
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXML)
	return c.SendString("<Response></Response>")
}

// HandleTestWebhook processes test WhatsApp messages (for development)
func (h *WhatsAppHandler) HandleTestWebhook(c *fiber.Ctx) error {
	var payload TestWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test payload",
		})
	}
	if payload.ID == "" {
		payload.ID = uuid.NewString()
	}

	replies, err := h.conversation.HandleInbound(c.UserContext(), services.InboundMessage{
		ID:         payload.ID,
		CustomerID: payload.From,
		Text:       payload.Message,
	})
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if replies == nil {
		replies = []string{}
	}

	return c.JSON(fiber.Map{
		"id":      payload.ID,
		"from":    payload.From,
		"replies": replies,
	})
}

func (h *WhatsAppHandler) dispatch(ctx context.Context, msg services.InboundMessage) {
	if _, err := h.conversation.HandleInbound(ctx, msg); err != nil {
		if errors.Is(err, apperr.ErrInvalidPayload) {
			h.logger.Debug().Str("message_id", msg.ID).Msg("empty message ignored")
			return
		}
		h.logger.Error().Err(err).Str("message_id", msg.ID).Msg("failed to handle message")
	}
}
