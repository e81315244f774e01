// Package emailjs sends contact form submissions through the EmailJS REST API.
package emailjs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Zachkp/devfolio/internal/contact"
)

// DefaultEndpoint is the EmailJS send API.
const DefaultEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// ErrNotConfigured is returned when a required identifier is missing.
var ErrNotConfigured = errors.New("emailjs: service, template and public key are required")

var tracer = otel.Tracer("github.com/Zachkp/devfolio/internal/emailjs")

// Config identifies the EmailJS account and template.
type Config struct {
	Endpoint   string
	ServiceID  string
	TemplateID string
	PublicKey  string
	// PrivateKey is the optional access token for accounts with strict mode on.
	PrivateKey string
}

// Error is a non-2xx reply from EmailJS.
type Error struct {
	Status int
	Text   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("emailjs: %d %s", e.Status, e.Text)
}

// Client posts template payloads to EmailJS.
type Client struct {
	config     Config
	httpClient *http.Client
}

// New validates cfg and returns a client. A nil httpClient uses http.DefaultClient.
func New(cfg Config, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(cfg.ServiceID) == "" || strings.TrimSpace(cfg.TemplateID) == "" || strings.TrimSpace(cfg.PublicKey) == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{config: cfg, httpClient: httpClient}, nil
}

type sendRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// Send implements contact.Sender.
func (c *Client) Send(ctx context.Context, form contact.Form) (contact.Receipt, error) {
	ctx, span := tracer.Start(ctx, "emailjs.send", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("emailjs.service_id", c.config.ServiceID),
		attribute.String("emailjs.template_id", c.config.TemplateID),
	)

	body, err := json.Marshal(sendRequest{
		ServiceID:   c.config.ServiceID,
		TemplateID:  c.config.TemplateID,
		UserID:      c.config.PublicKey,
		AccessToken: c.config.PrivateKey,
		TemplateParams: map[string]string{
			string(contact.FieldName):    form.Name,
			string(contact.FieldEmail):   form.Email,
			string(contact.FieldMessage): form.Message,
		},
	})
	if err != nil {
		return contact.Receipt{}, fmt.Errorf("encode emailjs request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return contact.Receipt{}, fmt.Errorf("build emailjs request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return contact.Receipt{}, fmt.Errorf("emailjs request: %w", err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return contact.Receipt{}, fmt.Errorf("read emailjs response: %w", err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode, Text: strings.TrimSpace(string(text))}
		span.RecordError(apiErr)
		span.SetStatus(codes.Error, apiErr.Text)
		return contact.Receipt{}, apiErr
	}
	return contact.Receipt{Status: resp.StatusCode, Text: strings.TrimSpace(string(text))}, nil
}
