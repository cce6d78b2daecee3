package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Ananth-NQI/orderbot/internal/config"
	"github.com/Ananth-NQI/orderbot/internal/log"
)

const defaultSendTimeout = 10 * time.Second

// CloudAPIClient sends text messages through the WhatsApp Cloud API
// (graph.facebook.com/{version}/{phone-number-id}/messages).
type CloudAPIClient struct {
	endpoint string
	token    string
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewCloudAPIClient creates a Cloud API sender from configuration.
func NewCloudAPIClient(cfg config.MetaConfig) (*CloudAPIClient, error) {
	if cfg.Token == "" || cfg.PhoneNumberID == "" {
		return nil, errors.New("missing WhatsApp Cloud API credentials")
	}
	base := strings.TrimRight(cfg.GraphURL, "/")
	return &CloudAPIClient{
		endpoint: fmt.Sprintf("%s/%s/%s/messages", base, cfg.APIVersion, cfg.PhoneNumberID),
		token:    cfg.Token,
		timeout:  defaultSendTimeout,
		logger:   log.WithComponent("cloudapi"),
	}, nil
}

type cloudTextMessage struct {
	MessagingProduct string    `json:"messaging_product"`
	RecipientType    string    `json:"recipient_type"`
	To               string    `json:"to"`
	Type             string    `json:"type"`
	Text             cloudText `json:"text"`
}

type cloudText struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

// Send posts a text message to the customer.
func (c *CloudAPIClient) Send(ctx context.Context, to, text string) error {
	timeout, err := boundedTimeout(ctx, c.timeout)
	if err != nil {
		return err
	}

	agent := fiber.Post(c.endpoint)
	agent.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	agent.JSON(cloudTextMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             cloudText{Body: text},
	})
	agent.Timeout(timeout)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("cloud api send: %w", errors.Join(errs...))
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return fmt.Errorf("cloud api send: status %d: %s", code, truncate(string(body), 200))
	}

	c.logger.Debug().Str("to", to).Int("status", code).Msg("whatsapp message sent")
	return nil
}

// boundedTimeout returns the smaller of limit and the time left on ctx.
func boundedTimeout(ctx context.Context, limit time.Duration) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < limit {
			if left <= 0 {
				return 0, context.DeadlineExceeded
			}
			return left, nil
		}
	}
	return limit, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
