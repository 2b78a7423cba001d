package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings, parsed from the environment.
// POSTGRES_CONN is optional; without it the service runs on the
// in-memory store, which suits local development.
type Config struct {
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:"0.0.0.0:8080"`
	PostgresConn  string `env:"POSTGRES_CONN"`

	ResendAPIKey string `env:"RESEND_API_KEY"`
	EmailFrom    string `env:"EMAIL_FROM" envDefault:"MEZ Auctions <auctions@resend.dev>"`
	AdminEmail   string `env:"ADMIN_EMAIL"`

	TwilioAccountSID  string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken   string `env:"TWILIO_AUTH_TOKEN"`
	TwilioPhoneNumber string `env:"TWILIO_PHONE_NUMBER"`

	BidRateLimit  int           `env:"BID_RATE_LIMIT" envDefault:"5"`
	BidRateWindow time.Duration `env:"BID_RATE_WINDOW" envDefault:"1m"`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
