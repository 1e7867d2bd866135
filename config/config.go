package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadENV loads variables from .env unless GO_ENV says we are past development
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil {
			return err
		}
	}

	return nil
}

type EnvironmentVariable struct {
	GO_ENV       string
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	PORT         int
	// JWT Configuration (dashboard read API)
	JWT_SECRET string
	JWT_ISSUER string
	// Redis Configuration
	REDIS_URL string
	// Storefront
	STORE_URL string
	// Referral program constants
	DIRECT_COMMISSION_RATE    float64
	REFERRAL_COMMISSION_RATE  float64
	REFERRAL_BONUS_CENTS      int64
	REFERRAL_PRICE_CENTS      int64
	REFERRAL_SESSION_TTL_DAYS int
	BILLING_PERIOD_DAYS       int
	// Outbound notification collaborator
	NOTIFY_WEBHOOK_URL string
	// bcrypt hash of the shared secret the payment/registration collaborators send
	WEBHOOK_SECRET_HASH string
}

func Get() (*EnvironmentVariable, error) {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	// Database defaults
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}

	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}

	envVariables := &EnvironmentVariable{
		GO_ENV:       os.Getenv("GO_ENV"),
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      dbHost,
		DB_PORT:      dbPort,
		DB_SSL_MODE:  os.Getenv("DB_SSL_MODE"),
		PORT:         port,
		// JWT
		JWT_SECRET: os.Getenv("JWT_SECRET"),
		JWT_ISSUER: os.Getenv("JWT_ISSUER"),
		// Redis
		REDIS_URL: os.Getenv("REDIS_URL"),
		// Storefront
		STORE_URL: getEnvOrDefault("STORE_URL", "http://localhost:3000"),
		// Referral program
		DIRECT_COMMISSION_RATE:    getEnvFloat("DIRECT_COMMISSION_RATE", 0.25),
		REFERRAL_COMMISSION_RATE:  getEnvFloat("REFERRAL_COMMISSION_RATE", 0.10),
		REFERRAL_BONUS_CENTS:      getEnvInt64("REFERRAL_BONUS_CENTS", 1000),
		REFERRAL_PRICE_CENTS:      getEnvInt64("REFERRAL_PRICE_CENTS", 3300),
		REFERRAL_SESSION_TTL_DAYS: getEnvInt("REFERRAL_SESSION_TTL_DAYS", 30),
		BILLING_PERIOD_DAYS:       getEnvInt("BILLING_PERIOD_DAYS", 30),
		// Collaborators
		NOTIFY_WEBHOOK_URL:  os.Getenv("NOTIFY_WEBHOOK_URL"),
		WEBHOOK_SECRET_HASH: os.Getenv("WEBHOOK_SECRET_HASH"),
	}

	return envVariables, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultVal
	}
	return val
}

func getEnvInt64(key string, defaultVal int64) int64 {
	val, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return defaultVal
	}
	return val
}

func getEnvFloat(key string, defaultVal float64) float64 {
	val, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultVal
	}
	return val
}
