package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/Conceptual-Machines/qrious/internal/encoder"
)

// Config holds the application configuration, read from the environment
// (and a .env file loaded by main)
type Config struct {
	// Environment
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Port        string `env:"PORT" envDefault:"8080"`

	// QR rendering
	QRBackend    string `env:"QR_BACKEND" envDefault:"goqrcode"` // goqrcode or rsc
	QRWidth      int    `env:"QR_WIDTH" envDefault:"256"`        // pixels
	QRMargin     int    `env:"QR_MARGIN" envDefault:"2"`         // modules
	QRLevel      string `env:"QR_LEVEL" envDefault:"M"`
	QRForeground string `env:"QR_FOREGROUND" envDefault:"#000000"`
	QRBackground string `env:"QR_BACKGROUND" envDefault:"#ffffff"`

	// Generation UX
	MinDisplayDuration time.Duration `env:"MIN_DISPLAY_DURATION" envDefault:"2s"`
	ExportPrefix       string        `env:"EXPORT_PREFIX" envDefault:"qrious-code"`

	// Rate limiting for generation and export endpoints
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`

	// Observability
	SentryDSN         string `env:"SENTRY_DSN"`
	CloudWatchEnabled bool   `env:"CLOUDWATCH_ENABLED" envDefault:"false"`
}

// Load parses the environment into a validated Config
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

const (
	maxQRWidth  = 4096
	maxQRMargin = 16
)

// Validate rejects values the encoder or server cannot use
func (c *Config) Validate() error {
	var errs []error

	if _, err := encoder.NewBackend(c.QRBackend); err != nil {
		errs = append(errs, err)
	}
	if c.QRWidth <= 0 || c.QRWidth > maxQRWidth {
		errs = append(errs, fmt.Errorf("QR_WIDTH must be between 1 and %d, got %d", maxQRWidth, c.QRWidth))
	}
	if c.QRMargin < 0 || c.QRMargin > maxQRMargin {
		errs = append(errs, fmt.Errorf("QR_MARGIN must be between 0 and %d, got %d", maxQRMargin, c.QRMargin))
	}
	if _, err := encoder.ParseLevel(c.QRLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := encoder.ParseHexColor(c.QRForeground); err != nil {
		errs = append(errs, fmt.Errorf("QR_FOREGROUND: %w", err))
	}
	if _, err := encoder.ParseHexColor(c.QRBackground); err != nil {
		errs = append(errs, fmt.Errorf("QR_BACKGROUND: %w", err))
	}
	if c.MinDisplayDuration < 0 {
		errs = append(errs, fmt.Errorf("MIN_DISPLAY_DURATION must not be negative"))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}

	return errors.Join(errs...)
}

// EncoderOptions converts the QR settings into encoder options.
// Call only on a validated Config.
func (c *Config) EncoderOptions() encoder.Options {
	opts := encoder.DefaultOptions()
	opts.Width = c.QRWidth
	opts.Margin = c.QRMargin
	if level, err := encoder.ParseLevel(c.QRLevel); err == nil {
		opts.Level = level
	}
	if fg, err := encoder.ParseHexColor(c.QRForeground); err == nil {
		opts.Foreground = fg
	}
	if bg, err := encoder.ParseHexColor(c.QRBackground); err == nil {
		opts.Background = bg
	}
	return opts
}

// IsProduction reports whether the app runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
