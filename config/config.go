package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port   string
	AppEnv string

	DBDriver   string // postgres, mysql or sqlite
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	JWTKey         string
	JWTExpiryHours int
	SaltRound      int

	StripeSecretKey     string
	StripeWebhookSecret string
	StripeSuccessURL    string
	StripeCancelURL     string
	StripeCurrency      string
	PlatformFeePercent  float64 // share of a course sale kept by the platform

	SendGridAPIKey  string
	EmailSender     string
	EmailSenderName string

	MeetingAPIURL string
	MeetingAPIKey string

	RollbarToken string
	UploadDir    string
	FrontendURL  string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:   getEnv("PORT", "3000"),
		AppEnv: getEnv("APP_ENV", "development"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "eduhub"),
		DBPort:     getEnv("DB_PORT", "5432"),

		JWTKey:         getEnv("JWT_SECRET_KEY", "defaultSecret"),
		JWTExpiryHours: getEnvInt("JWT_EXPIRY_HOURS", 24),
		SaltRound:      getEnvInt("SALT_ROUND", 10),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripeSuccessURL:    getEnv("STRIPE_SUCCESS_URL", "http://localhost:5173/payment/success?session_id={CHECKOUT_SESSION_ID}"),
		StripeCancelURL:     getEnv("STRIPE_CANCEL_URL", "http://localhost:5173/payment/cancel"),
		StripeCurrency:      getEnv("STRIPE_CURRENCY", "usd"),
		PlatformFeePercent:  getEnvFloat("PLATFORM_FEE_PERCENT", 20),

		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		EmailSender:     getEnv("EMAIL_SENDER", "noreply@eduhub.local"),
		EmailSenderName: getEnv("EMAIL_SENDER_NAME", "EduHub"),

		MeetingAPIURL: getEnv("MEETING_API_URL", ""),
		MeetingAPIKey: getEnv("MEETING_API_KEY", ""),

		RollbarToken: getEnv("ROLLBAR_TOKEN", ""),
		UploadDir:    getEnv("UPLOAD_DIR", "./public/uploads"),
		FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:5173"),
	}

	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.StripeWebhookSecret == "" {
		log.Println("Warning: STRIPE_WEBHOOK_SECRET is empty. Stripe webhooks will be rejected.")
	}
	if AppConfig.PlatformFeePercent < 0 || AppConfig.PlatformFeePercent > 100 {
		log.Printf("Warning: PLATFORM_FEE_PERCENT %.2f out of range, falling back to 20.", AppConfig.PlatformFeePercent)
		AppConfig.PlatformFeePercent = 20
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Error converting environment variable %s to float: %v", key, err)
		return defaultValue
	}
	return floatValue
}
