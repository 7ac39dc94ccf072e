package config

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all service configuration, loaded from the environment.
type Config struct {
	Port string
	Env  string

	PostgresConnStr string `validate:"required"`
	MongoURI        string // optional; enables the push delivery log

	// Webhook shared secret presented by the CDC trigger.
	WebhookSecret string `validate:"required"`
	// HMAC secret for client API bearer tokens.
	JWTSecret string `validate:"required"`

	// APNs provider credentials.
	APNSKeyID    string `validate:"required"`
	APNSTeamID   string `validate:"required"`
	APNSBundleID string `validate:"required"`
	APNSKey      string // inline PEM; takes precedence over APNSKeyPath
	APNSKeyPath  string
	APNSEnv      string `validate:"oneof=sandbox production"`

	// Optional; enables android delivery through FCM.
	FirebaseCredentialsPath string
}

// Load reads configuration from the environment (and .env, if present) and
// validates it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		WebhookSecret:           getEnv("WEBHOOK_SECRET", ""),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		APNSKeyID:               getEnv("APNS_KEY_ID", ""),
		APNSTeamID:              getEnv("APNS_TEAM_ID", ""),
		APNSBundleID:            getEnv("APNS_BUNDLE_ID", ""),
		APNSKey:                 getEnv("APNS_KEY", ""),
		APNSKeyPath:             getEnv("APNS_KEY_PATH", ""),
		APNSEnv:                 getEnv("APNS_ENV", "sandbox"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.APNSKey == "" && cfg.APNSKeyPath == "" {
		return nil, fmt.Errorf("invalid configuration: one of APNS_KEY or APNS_KEY_PATH must be set")
	}

	return cfg, nil
}

// APNSKeyPEM returns the APNs signing key material in PEM form.
func (c *Config) APNSKeyPEM() ([]byte, error) {
	if c.APNSKey != "" {
		return []byte(c.APNSKey), nil
	}
	pem, err := os.ReadFile(c.APNSKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read APNs key file: %w", err)
	}
	return pem, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
