package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/craftclass/storefront-api/database"
	"github.com/craftclass/storefront-api/model"
	"github.com/craftclass/storefront-api/utils/auth"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	store, err := database.StartGORM()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Fatalf("Failed to migrate tables: %v", err)
	}

	db := store.GetDB().(*gorm.DB)

	admin, err := seedInstructors(db)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	printDashboardToken(admin)

	fmt.Println("Seeding completed successfully.")
}

// printDashboardToken mints an admin token for the seeded account so the
// dashboard endpoints can be exercised locally without a login flow.
func printDashboardToken(admin *model.Instructor) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Println("JWT_SECRET not set, skipping dashboard token")
		return
	}

	issuer := os.Getenv("JWT_ISSUER")
	if issuer == "" {
		issuer = "craftclass-storefront-api"
	}

	manager := auth.NewJWTManager(auth.JWTConfig{
		Secret: secret,
		Expiry: 24 * time.Hour,
		Issuer: issuer,
	})
	token, err := manager.GenerateToken(admin.ID, "admin")
	if err != nil {
		log.Fatalf("Failed to mint dashboard token: %v", err)
	}

	fmt.Printf("Admin dashboard token for %s:\n%s\n", admin.Email, token)
}

// seedInstructors creates a small referral chain for local development:
// quinn <- riley <- sam, so sam's sales pay riley a referral cut and
// riley's registrations pay quinn nothing (one hop only). Returns quinn,
// who doubles as the local admin account.
func seedInstructors(db *gorm.DB) (*model.Instructor, error) {
	now := time.Now()
	next := now.Add(30 * 24 * time.Hour)

	quinn := model.Instructor{
		Email:              "quinn@example.com",
		Name:               "Quinn Harper",
		ReferralCode:       "QUINN2024",
		SubscriptionStatus: model.SubscriptionActive,
		LastRenewedAt:      &now,
		NextBillingDate:    &next,
	}
	if err := upsertInstructor(db, &quinn); err != nil {
		return nil, err
	}

	riley := model.Instructor{
		Email:                  "riley@example.com",
		Name:                   "Riley Moreau",
		ReferralCode:           "RILEY2024",
		ReferredByInstructorID: &quinn.ID,
		SubscriptionStatus:     model.SubscriptionActive,
		LastRenewedAt:          &now,
		NextBillingDate:        &next,
	}
	if err := upsertInstructor(db, &riley); err != nil {
		return nil, err
	}

	sam := model.Instructor{
		Email:                  "sam@example.com",
		Name:                   "Sam Okafor",
		ReferralCode:           "SAM2024",
		ReferredByInstructorID: &riley.ID,
		SubscriptionStatus:     model.SubscriptionPending,
	}
	if err := upsertInstructor(db, &sam); err != nil {
		return nil, err
	}

	fmt.Printf("Seeded instructors: %s (%d), %s (%d), %s (%d)\n",
		quinn.ReferralCode, quinn.ID, riley.ReferralCode, riley.ID, sam.ReferralCode, sam.ID)
	return &quinn, nil
}

func upsertInstructor(db *gorm.DB, instructor *model.Instructor) error {
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "referral_code"}},
		DoNothing: true,
	}).Create(instructor).Error
	if err != nil {
		return err
	}
	if instructor.ID == 0 {
		// Already seeded; load the existing row so chained FKs resolve
		return db.Where("referral_code = ?", instructor.ReferralCode).First(instructor).Error
	}
	return nil
}
