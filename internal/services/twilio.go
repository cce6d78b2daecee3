package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/Ananth-NQI/orderbot/internal/config"
	"github.com/Ananth-NQI/orderbot/internal/log"
)

// messageCreator is the part of the Twilio REST API the sender uses.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioService sends WhatsApp messages through the Twilio Messages API.
type TwilioService struct {
	api    messageCreator
	from   string // Twilio WhatsApp sender, "whatsapp:+14155238886"
	logger zerolog.Logger
}

// NewTwilioService creates a new Twilio service instance
func NewTwilioService(cfg config.TwilioConfig) (*TwilioService, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.WhatsAppFrom == "" {
		return nil, fmt.Errorf("missing Twilio credentials")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return newTwilioService(client.Api, cfg.WhatsAppFrom), nil
}

func newTwilioService(api messageCreator, from string) *TwilioService {
	return &TwilioService{
		api:    api,
		from:   WhatsAppAddress(from),
		logger: log.WithComponent("twilio"),
	}
}

// Send sends a WhatsApp text via Twilio. The Twilio client has no context
// support; ctx is only checked before the call.
func (t *TwilioService) Send(ctx context.Context, to, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(WhatsAppAddress(to))
	params.SetBody(text)

	resp, err := t.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio create message: %w", err)
	}
	if resp.ErrorCode != nil && *resp.ErrorCode != 0 {
		msg := ""
		if resp.ErrorMessage != nil {
			msg = *resp.ErrorMessage
		}
		return fmt.Errorf("twilio error %d: %s", *resp.ErrorCode, msg)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	t.logger.Debug().Str("to", to).Str("sid", sid).Msg("whatsapp message sent")
	return nil
}

// WhatsAppAddress prefixes a phone number with Twilio's channel scheme.
func WhatsAppAddress(phone string) string {
	if strings.HasPrefix(phone, "whatsapp:") {
		return phone
	}
	return "whatsapp:" + phone
}

// StripWhatsAppPrefix removes Twilio's channel scheme from an address.
func StripWhatsAppPrefix(addr string) string {
	return strings.TrimPrefix(addr, "whatsapp:")
}
