package router

import (
	"log"
	"time"

	"github.com/craftclass/storefront-api/config"
	"github.com/craftclass/storefront-api/database"
	"github.com/craftclass/storefront-api/handlers"
	billing_handlers "github.com/craftclass/storefront-api/handlers/billing"
	ledger_handlers "github.com/craftclass/storefront-api/handlers/ledger"
	pricing_handlers "github.com/craftclass/storefront-api/handlers/pricing"
	referral_handlers "github.com/craftclass/storefront-api/handlers/referral"
	webhook_handlers "github.com/craftclass/storefront-api/handlers/webhook"
	"github.com/craftclass/storefront-api/services"
	"github.com/craftclass/storefront-api/utils/auth"
	"github.com/craftclass/storefront-api/utils/cache"
	"github.com/craftclass/storefront-api/utils/middleware"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, store database.Storage, getEnv *config.EnvironmentVariable) {
	if getEnv.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := getEnv.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "craftclass-storefront-api"
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret: getEnv.JWT_SECRET,
		Expiry: 24 * time.Hour,
		Issuer: jwtIssuer,
	})

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Redis cache for referral-code lookups; lookups fall back to the DB
	// when Redis is unavailable
	var redisCache *cache.RedisCache
	if getEnv.REDIS_URL != "" {
		var err error
		redisCache, err = cache.NewRedisCache(getEnv.REDIS_URL)
		if err != nil {
			log.Printf("Warning: Failed to connect to Redis: %v. Directory lookups will not be cached.", err)
		}
	}

	// Domain services
	directoryService := services.NewDirectoryService(db, redisCache)
	pricingService := services.NewPricingService(getEnv.REFERRAL_PRICE_CENTS)
	calculator := services.NewCommissionCalculator(services.CommissionRates{
		Direct:   getEnv.DIRECT_COMMISSION_RATE,
		Referral: getEnv.REFERRAL_COMMISSION_RATE,
	})
	ledgerService := services.NewLedgerService(db)
	notifierService := services.NewNotifierService(db, getEnv.NOTIFY_WEBHOOK_URL)
	attributionService := services.NewAttributionService(db, directoryService, calculator, ledgerService, notifierService, getEnv.REFERRAL_BONUS_CENTS)
	billingService := services.NewBillingService(db, notifierService, time.Duration(getEnv.BILLING_PERIOD_DAYS)*24*time.Hour)

	// Handlers
	sessionTTL := time.Duration(getEnv.REFERRAL_SESSION_TTL_DAYS) * 24 * time.Hour
	referralHandler := referral_handlers.NewReferralHandler(sessionTTL, getEnv.STORE_URL)
	pricingHandler := pricing_handlers.NewPricingHandler(pricingService)
	webhookHandler := webhook_handlers.NewWebhookHandler(attributionService, billingService)
	ledgerHandler := ledger_handlers.NewLedgerHandler(ledgerService, directoryService)
	billingHandler := billing_handlers.NewBillingHandler(billingService)

	authMiddleware := middleware.NewAuthMiddleware(jwtManager)

	// Health
	app.Get("/health", func(c *fiber.Ctx) error {
		return handlers.HandleCheckHealth(c, store)
	})

	// Referral link visits (public, storefront-facing)
	app.Get("/r/:code", referralHandler.CaptureVisit)

	api := app.Group("/api/v1")
	api.Get("/referral/session", referralHandler.CurrentSession)
	api.Get("/pricing/quote", pricingHandler.Quote)

	// Event intake from the payment and registration collaborators
	webhooks := api.Group("/webhooks", middleware.WebhookAuth(getEnv.WEBHOOK_SECRET_HASH))
	webhooks.Post("/order-settled", webhookHandler.OrderSettled)
	webhooks.Post("/instructor-registered", webhookHandler.InstructorRegistered)

	// Dashboard read API (instructor and admin consumers)
	dashboard := api.Group("", authMiddleware.Required())
	dashboard.Get("/instructors/:id", ledgerHandler.GetInstructor)
	dashboard.Get("/instructors/:id/commissions", ledgerHandler.ListByInstructor)
	dashboard.Get("/orders/:id/commissions", ledgerHandler.ListByOrder)
	dashboard.Get("/commissions/totals", ledgerHandler.Totals)

	// Admin-only operations
	admin := dashboard.Group("", authMiddleware.AdminOnly())
	admin.Post("/commissions/payout", ledgerHandler.MarkPaidOut)
	admin.Post("/billing/renew/:id", billingHandler.Renew)
	admin.Patch("/instructors/:id/status", billingHandler.SetStatus)
}
