// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Mail transports.
const (
	TransportEmailJS = "emailjs"
	TransportSMTP    = "smtp"
)

type EmailJS struct {
	Endpoint   string `env:"ENDPOINT" envDefault:"https://api.emailjs.com/api/v1.0/email/send"`
	ServiceID  string `env:"SERVICE_ID" envDefault:"service_6j8u1yv"`
	TemplateID string `env:"TEMPLATE_ID" envDefault:"template_szxy8cc"`
	PublicKey  string `env:"PUBLIC_KEY" envDefault:"80ZdQFGwY-B-CNLEr"`
	PrivateKey string `env:"PRIVATE_KEY"`
}

type SMTP struct {
	Host string `env:"HOST" envDefault:"smtp.gmail.com"`
	Port string `env:"PORT" envDefault:"587"`
	User string `env:"USER"`
	Pass string `env:"PASS"`
	To   string `env:"TO"`
}

type Admin struct {
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
}

type Analytics struct {
	DSN       string        `env:"DSN" envDefault:"file:analytics?mode=memory&cache=shared"`
	Retention time.Duration `env:"RETENTION" envDefault:"8760h"`
}

type OTel struct {
	Enabled  bool   `env:"ENABLED" envDefault:"true"`
	Endpoint string `env:"ENDPOINT"`
}

// Config is the full server configuration.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	GinMode     string `env:"GIN_MODE" envDefault:"release"`
	ContentPath string `env:"CONTENT_PATH"`
	ImagesDir   string `env:"IMAGES_DIR" envDefault:"./images"`

	MailTransport string        `env:"MAIL_TRANSPORT" envDefault:"emailjs"`
	SendTimeout   time.Duration `env:"MAIL_SEND_TIMEOUT" envDefault:"10s"`

	EmailJS   EmailJS   `envPrefix:"EMAILJS_"`
	SMTP      SMTP      `envPrefix:"SMTP_"`
	Admin     Admin     `envPrefix:"ADMIN_"`
	Analytics Analytics `envPrefix:"ANALYTICS_"`
	OTel      OTel      `envPrefix:"OTEL_"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.MailTransport = strings.ToLower(strings.TrimSpace(cfg.MailTransport))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	switch c.MailTransport {
	case TransportEmailJS, TransportSMTP:
	default:
		return fmt.Errorf("config: unknown MAIL_TRANSPORT %q", c.MailTransport)
	}
	if c.SendTimeout <= 0 {
		return fmt.Errorf("config: MAIL_SEND_TIMEOUT must be positive, got %s", c.SendTimeout)
	}
	if c.Analytics.Retention <= 0 {
		return fmt.Errorf("config: ANALYTICS_RETENTION must be positive, got %s", c.Analytics.Retention)
	}
	return nil
}

// Addr is the listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}
