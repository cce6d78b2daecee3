// Package config loads the bot configuration from .env files and the
// process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Ananth-NQI/orderbot/internal/log"
)

const (
	TransportMeta   = "meta"
	TransportTwilio = "twilio"
)

// Config holds every runtime setting of the service.
type Config struct {
	Port        string
	Environment string
	LogLevel    string

	Transport string
	Meta      MetaConfig
	Twilio    TwilioConfig

	// VerifyToken answers the channel's webhook verification handshake.
	VerifyToken              string
	DisableWebhookValidation bool

	// AdminToken guards the order API; without it the API is only mounted
	// in development.
	AdminToken string

	SheetWebhookURL string
	SinkTimeout     time.Duration

	SessionIdleTimeout time.Duration
	DedupWindow        time.Duration
	RedisURL           string

	UseMemoryStore bool
	Database       DatabaseConfig

	CatalogFile      string
	BusinessTimezone string
}

type MetaConfig struct {
	Token         string
	PhoneNumberID string
	APIVersion    string
	GraphURL      string
	AppSecret     string
}

type TwilioConfig struct {
	AccountSID   string
	AuthToken    string
	WhatsAppFrom string // Format: "whatsapp:+14155238886"
}

type DatabaseConfig struct {
	User                   string
	Password               string
	Name                   string
	Host                   string
	Port                   string
	InstanceConnectionName string
}

// Load reads .env files (when present) and then the environment.
func Load() (*Config, error) {
	logger := log.WithComponent("config")

	// Cloud Run injects its own environment; .env files are a local convenience.
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		if err := godotenv.Load(".env"); err != nil {
			if err := godotenv.Load("environments/.env.development"); err != nil {
				logger.Debug().Msg("no .env file found, using process environment")
			}
		}
	}

	cfg := &Config{
		Port:        envString("PORT", "8080"),
		Environment: envString("ENVIRONMENT", "production"),
		LogLevel:    envString("LOG_LEVEL", "info"),
		Transport:   strings.ToLower(envString("TRANSPORT", TransportMeta)),
		Meta: MetaConfig{
			Token:         os.Getenv("META_TOKEN"),
			PhoneNumberID: os.Getenv("META_PHONE_NUMBER_ID"),
			APIVersion:    envString("META_API_VERSION", "v18.0"),
			GraphURL:      envString("META_GRAPH_URL", "https://graph.facebook.com"),
			AppSecret:     os.Getenv("META_APP_SECRET"),
		},
		Twilio: TwilioConfig{
			AccountSID:   os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
			WhatsAppFrom: os.Getenv("TWILIO_WHATSAPP_FROM"),
		},
		VerifyToken:              os.Getenv("VERIFY_TOKEN"),
		DisableWebhookValidation: envBool("DISABLE_WEBHOOK_VALIDATION"),
		AdminToken:               os.Getenv("ADMIN_TOKEN"),
		SheetWebhookURL:          os.Getenv("SHEET_WEBHOOK_URL"),
		RedisURL:                 os.Getenv("REDIS_URL"),
		UseMemoryStore:           envBool("USE_MEMORY_STORE"),
		Database: DatabaseConfig{
			User:                   envString("DB_USER", "postgres"),
			Password:               os.Getenv("DB_PASS"),
			Name:                   envString("DB_NAME", "orderbot"),
			Host:                   envString("DB_HOST", "localhost"),
			Port:                   envString("DB_PORT", "5432"),
			InstanceConnectionName: os.Getenv("INSTANCE_CONNECTION_NAME"),
		},
		CatalogFile:      os.Getenv("CATALOG_FILE"),
		BusinessTimezone: envString("BUSINESS_TIMEZONE", "America/Bogota"),
	}

	var err error
	if cfg.SinkTimeout, err = envDuration("SINK_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionIdleTimeout, err = envDuration("SESSION_IDLE_TIMEOUT", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.DedupWindow, err = envDuration("DEDUP_WINDOW", 10*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Transport {
	case TransportMeta:
		if c.Meta.Token == "" || c.Meta.PhoneNumberID == "" {
			errs = append(errs, errors.New("META_TOKEN and META_PHONE_NUMBER_ID are required for the meta transport"))
		}
	case TransportTwilio:
		if c.Twilio.AccountSID == "" || c.Twilio.AuthToken == "" || c.Twilio.WhatsAppFrom == "" {
			errs = append(errs, errors.New("TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_WHATSAPP_FROM are required for the twilio transport"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown TRANSPORT %q", c.Transport))
	}

	if c.SinkTimeout <= 0 {
		errs = append(errs, errors.New("SINK_TIMEOUT must be positive"))
	}
	if c.SessionIdleTimeout <= 0 {
		errs = append(errs, errors.New("SESSION_IDLE_TIMEOUT must be positive"))
	}
	if c.DedupWindow <= 0 {
		errs = append(errs, errors.New("DEDUP_WINDOW must be positive"))
	}

	return errors.Join(errs...)
}

// IsDevelopment reports whether development-only routes and relaxed
// webhook validation are allowed.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envBool(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "true" || v == "1" || v == "yes"
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
