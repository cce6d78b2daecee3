package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
)

// RequireAdminToken accepts requests carrying "Authorization: Bearer <token>".
func RequireAdminToken(token string) fiber.Handler {
	return keyauth.New(keyauth.Config{
		KeyLookup:  "header:" + fiber.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(_ *fiber.Ctx, key string) (bool, error) {
			if token == "" || subtle.ConstantTimeCompare([]byte(key), []byte(token)) != 1 {
				return false, keyauth.ErrMissingOrMalformedAPIKey
			}
			return true, nil
		},
	})
}
