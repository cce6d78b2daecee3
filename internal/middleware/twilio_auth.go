package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/twilio/twilio-go/client"

	"github.com/Ananth-NQI/orderbot/internal/log"
)

// ValidateTwilioSignature rejects webhook requests whose X-Twilio-Signature
// does not match the public URL and form parameters.
func ValidateTwilioSignature(authToken string) fiber.Handler {
	validator := client.NewRequestValidator(authToken)
	logger := log.WithComponent("twilio_auth")

	return func(c *fiber.Ctx) error {
		signature := c.Get("X-Twilio-Signature")
		if signature == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing Twilio signature",
			})
		}

		if authToken == "" {
			logger.Error().Msg("TWILIO_AUTH_TOKEN not set")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Server configuration error",
			})
		}

		params := make(map[string]string)
		c.Request().PostArgs().VisitAll(func(key, value []byte) {
			params[string(key)] = string(value)
		})

		if !validator.Validate(fullURL(c), params, signature) {
			logger.Warn().Str("path", c.Path()).Msg("invalid Twilio signature")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid signature",
			})
		}

		return c.Next()
	}
}

// fullURL rebuilds the URL Twilio signed. Protocol honours X-Forwarded-Proto
// so it matches the public https URL behind a load balancer.
func fullURL(c *fiber.Ctx) string {
	return c.BaseURL() + c.OriginalURL()
}
