package config

import (
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devSessionSecret = "dev-session-secret-change-me"

type Config struct {
	ServerAddress  string
	AppEnv         string
	AllowedOrigins []string

	SessionSecret string
	SessionTTL    time.Duration

	MongoURI string
	MongoDB  string

	FirebaseProjectID       string
	FirebaseCredentialsJSON string

	StripeSecretKey  string
	PaymentCurrency  string
	UnlockPriceCents int64
	DisclosurePolicy string

	UploadDir        string
	DataDir          string
	MaxUploadSizeMB  int64
	ModerationBucket string

	SendGridAPIKey   string
	SupportFromEmail string
	SupportToEmail   string
	RecaptchaSecret  string
}

// Load reads the environment, after a .env file when one is present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Printf("[Config] loaded .env")
	}

	cfg := &Config{
		ServerAddress:  getEnv("SERVER_ADDRESS", ":8080"),
		AppEnv:         strings.ToLower(getEnv("APP_ENV", "development")),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),

		SessionSecret: getEnv("SESSION_SECRET", devSessionSecret),

		MongoURI: getEnv("MONGO_URI", ""),
		MongoDB:  getEnv("MONGO_DB", "bengalMatrimony"),

		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsJSON: getEnv("FIREBASE_CREDENTIALS_JSON", ""),

		StripeSecretKey:  getEnv("STRIPE_SECRET_KEY", ""),
		PaymentCurrency:  strings.ToLower(getEnv("PAYMENT_CURRENCY", "usd")),
		DisclosurePolicy: getEnv("DISCLOSURE_POLICY", "per-profile"),

		UploadDir:        getEnv("UPLOAD_DIR", "./uploads"),
		DataDir:          getEnv("DATA_DIR", "./data"),
		ModerationBucket: getEnv("MODERATION_BUCKET", ""),

		SendGridAPIKey:   getEnv("SENDGRID_API_KEY", ""),
		SupportFromEmail: getEnv("SUPPORT_FROM_EMAIL", ""),
		SupportToEmail:   getEnv("SUPPORT_TO_EMAIL", ""),
		RecaptchaSecret:  getEnv("RECAPTCHA_SECRET", ""),
	}

	var err error
	if cfg.SessionTTL, err = time.ParseDuration(getEnv("SESSION_TTL", "240h")); err != nil || cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("config: invalid SESSION_TTL")
	}
	if cfg.UnlockPriceCents, err = strconv.ParseInt(getEnv("CONTACT_UNLOCK_PRICE_CENTS", "500"), 10, 64); err != nil || cfg.UnlockPriceCents <= 0 {
		return nil, fmt.Errorf("config: invalid CONTACT_UNLOCK_PRICE_CENTS")
	}
	if cfg.MaxUploadSizeMB, err = strconv.ParseInt(getEnv("MAX_UPLOAD_SIZE_MB", "10"), 10, 64); err != nil || cfg.MaxUploadSizeMB <= 0 {
		return nil, fmt.Errorf("config: invalid MAX_UPLOAD_SIZE_MB")
	}

	if cfg.IsProduction() && (cfg.SessionSecret == devSessionSecret || len(cfg.SessionSecret) < 32) {
		return nil, fmt.Errorf("config: SESSION_SECRET must be set to at least 32 characters in production")
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// FirebaseCredentials returns the service account JSON, accepting either the
// raw document or its base64 encoding. Nil means use ADC.
func (c *Config) FirebaseCredentials() ([]byte, error) {
	raw := strings.TrimSpace(c.FirebaseCredentialsJSON)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "{") {
		return []byte(raw), nil
	}
	b, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("config: FIREBASE_CREDENTIALS_JSON is neither JSON nor base64: %w", err)
	}
	return b, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
