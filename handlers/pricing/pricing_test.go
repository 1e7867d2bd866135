package pricing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/craftclass/storefront-api/handlers/referral"
	"github.com/craftclass/storefront-api/services"
	"github.com/gofiber/fiber/v2"
)

func testApp() *fiber.App {
	app := fiber.New()
	referralHandler := referral.NewReferralHandler(30*24*time.Hour, "http://store.local")
	pricingHandler := NewPricingHandler(services.NewPricingService(3300))

	app.Get("/r/:code", referralHandler.CaptureVisit)
	app.Get("/api/v1/pricing/quote", pricingHandler.Quote)
	return app
}

type quoteData struct {
	BaseCents      int64  `json:"base_cents"`
	EffectiveCents int64  `json:"effective_cents"`
	ReferralCode   string `json:"referral_code"`
	Discounted     bool   `json:"discounted"`
}

type quoteResponse struct {
	Success bool      `json:"success"`
	Data    quoteData `json:"data"`
}

func getQuote(t *testing.T, app *fiber.App, cookies []*http.Cookie) quoteData {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pricing/quote?base_cents=3670", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("quote request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode quote response: %v", err)
	}
	return body.Data
}

func TestQuoteWithoutReferralSession(t *testing.T) {
	app := testApp()

	data := getQuote(t, app, nil)
	if data.EffectiveCents != 3670 {
		t.Errorf("expected base price 3670 without a session, got %d", data.EffectiveCents)
	}
	if data.Discounted {
		t.Error("no session must not discount")
	}
}

func TestQuoteAfterReferralVisit(t *testing.T) {
	app := testApp()

	visit := httptest.NewRequest(http.MethodGet, "/r/SAM2024", nil)
	resp, err := app.Test(visit)
	if err != nil {
		t.Fatalf("visit request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect to storefront, got %d", resp.StatusCode)
	}

	cookies := resp.Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected referral session cookie to be set")
	}

	data := getQuote(t, app, cookies)
	if data.EffectiveCents != 3300 {
		t.Errorf("expected override price 3300 after visit, got %d", data.EffectiveCents)
	}
	if data.ReferralCode != "SAM2024" {
		t.Errorf("expected code SAM2024, got %q", data.ReferralCode)
	}
}

func TestQuoteLastTouchWins(t *testing.T) {
	app := testApp()

	first := httptest.NewRequest(http.MethodGet, "/r/QUINN2024", nil)
	resp1, err := app.Test(first)
	if err != nil {
		t.Fatalf("first visit failed: %v", err)
	}
	resp1.Body.Close()

	second := httptest.NewRequest(http.MethodGet, "/r/RILEY2024", nil)
	for _, cookie := range resp1.Cookies() {
		second.AddCookie(cookie)
	}
	resp2, err := app.Test(second)
	if err != nil {
		t.Fatalf("second visit failed: %v", err)
	}
	resp2.Body.Close()

	data := getQuote(t, app, resp2.Cookies())
	if data.ReferralCode != "RILEY2024" {
		t.Errorf("most recent click must get credit, got %q", data.ReferralCode)
	}
}

func TestQuoteRejectsBadBasePrice(t *testing.T) {
	app := testApp()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pricing/quote?base_cents=abc", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for garbled base price, got %d", resp.StatusCode)
	}
}
