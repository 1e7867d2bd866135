package middleware

import (
	"log"

	"github.com/craftclass/storefront-api/utils/response"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// WebhookSecretHeader carries the shared secret sent by the payment and
// registration collaborators on event deliveries.
const WebhookSecretHeader = "X-Webhook-Secret"

// WebhookAuth verifies the shared secret against its bcrypt hash from config.
// An empty hash disables verification (development), with a loud warning.
func WebhookAuth(secretHash string) fiber.Handler {
	if secretHash == "" {
		log.Println("Warning: WEBHOOK_SECRET_HASH not set. Webhook authentication is disabled.")
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	return func(c *fiber.Ctx) error {
		secret := c.Get(WebhookSecretHeader)
		if secret == "" {
			return response.Unauthorized(c, "Missing webhook secret")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(secretHash), []byte(secret)); err != nil {
			return response.Unauthorized(c, "Invalid webhook secret")
		}

		return c.Next()
	}
}
