package referral

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/craftclass/storefront-api/model"
	"github.com/craftclass/storefront-api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the browser cookie holding the referral session value.
const SessionCookie = "cc_referral_session"

// ReferralHandler captures inbound referral links into the client-held
// session cookie. It never consults the instructor directory; a code is
// stored whether or not it resolves to anyone.
type ReferralHandler struct {
	ttl      time.Duration
	storeURL string
}

// NewReferralHandler creates a new referral handler
func NewReferralHandler(ttl time.Duration, storeURL string) *ReferralHandler {
	if ttl <= 0 {
		ttl = model.DefaultReferralSessionTTL
	}
	return &ReferralHandler{ttl: ttl, storeURL: storeURL}
}

// CaptureVisit handles GET /r/:code
// Captures the referral code into the session cookie and redirects to the
// storefront. Last touch wins: a new code overwrites a still-valid one.
func (h *ReferralHandler) CaptureVisit(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return c.Redirect(h.storeURL, fiber.StatusFound)
	}

	now := time.Now()
	session := ReadSession(c).Capture(code, c.Query("src"), now, h.ttl)
	WriteSession(c, session)

	return c.Redirect(h.storeURL, fiber.StatusFound)
}

// CurrentSession handles GET /api/v1/referral/session
// Reports the active referral code, if any. Expiry is evaluated here, on
// read; an expired cookie simply yields no code.
func (h *ReferralHandler) CurrentSession(c *fiber.Ctx) error {
	session := ReadSession(c)
	code, active := session.ActiveCode(time.Now())
	if !active {
		return response.Success(c, fiber.Map{"active": false})
	}

	return response.Success(c, fiber.Map{
		"active":      true,
		"code":        code,
		"captured_at": session.CapturedAt,
		"expires_at":  session.ExpiresAt,
	})
}

// ReadSession decodes the referral session cookie. A missing or garbled
// cookie reads as the zero session.
func ReadSession(c *fiber.Ctx) model.ReferralSession {
	raw := c.Cookies(SessionCookie)
	if raw == "" {
		return model.ReferralSession{}
	}

	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return model.ReferralSession{}
	}

	var session model.ReferralSession
	if err := json.Unmarshal(decoded, &session); err != nil {
		return model.ReferralSession{}
	}
	return session
}

// WriteSession encodes the referral session back into the cookie. The cookie
// expiry matches the session's own so the browser drops it around the same
// time lazy reads start ignoring it.
func WriteSession(c *fiber.Ctx, session model.ReferralSession) {
	encoded, err := json.Marshal(session)
	if err != nil {
		return
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    base64.RawURLEncoding.EncodeToString(encoded),
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}
