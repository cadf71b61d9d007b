package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"gopkg.in/gomail.v2"

	"github.com/goliatone/go-portal/internal/i18n"
	"github.com/goliatone/go-portal/internal/logging"
	"github.com/goliatone/go-portal/internal/settings"
	"github.com/goliatone/go-portal/pkg/interfaces"
)

var (
	ErrNotConfigured    = errors.New("mailer: mail settings are not configured")
	ErrNoRecipients     = errors.New("mailer: at least one recipient is required")
	ErrInvalidRecipient = errors.New("mailer: invalid recipient address")
)

// SMTPConfig is the transport built from the mail settings group.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	Encryption  string
	FromAddress string
	FromName    string
}

// Configured reports whether the config can dial a server.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.Port > 0 && c.FromAddress != ""
}

// ConfigFromValues reads a decrypted mail settings group.
func ConfigFromValues(values settings.Values) SMTPConfig {
	return SMTPConfig{
		Host:        values.String("host"),
		Port:        values.Int("port", 587),
		Username:    values.String("username"),
		Password:    values.String("password"),
		Encryption:  strings.ToLower(values.String("encryption")),
		FromAddress: values.String("from_address"),
		FromName:    values.String("from_name"),
	}
}

// Sender delivers composed messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(messages ...*gomail.Message) error
}

// DialerFactory builds a Sender for a config.
type DialerFactory func(cfg SMTPConfig) Sender

// NewDialer builds the gomail dialer for cfg. "ssl" uses implicit TLS,
// other modes let gomail negotiate STARTTLS.
func NewDialer(cfg SMTPConfig) Sender {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.SSL = cfg.Encryption == "ssl"
	if cfg.Encryption != "none" {
		dialer.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	}
	return dialer
}

// Option configures the mailer.
type Option func(*Mailer)

// WithDialerFactory replaces the SMTP dialer, mostly for tests.
func WithDialerFactory(factory DialerFactory) Option {
	return func(m *Mailer) {
		if factory != nil {
			m.factory = factory
		}
	}
}

// WithFallbackSender sets the From used when settings leave it empty.
func WithFallbackSender(address, name string) Option {
	return func(m *Mailer) {
		m.fallbackAddress = strings.TrimSpace(address)
		m.fallbackName = strings.TrimSpace(name)
	}
}

// WithTranslator sets the translator used for the test message.
func WithTranslator(translator interfaces.Translator) Option {
	return func(m *Mailer) {
		if translator != nil {
			m.translator = translator
		}
	}
}

// WithLogger sets the module logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(m *Mailer) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Mailer sends portal mail through the SMTP server named in settings. The
// transport is rebuilt whenever the mail group is saved.
type Mailer struct {
	mu              sync.RWMutex
	cfg             SMTPConfig
	sender          Sender
	factory         DialerFactory
	fallbackAddress string
	fallbackName    string
	translator      interfaces.Translator
	logger          interfaces.Logger
}

var _ interfaces.Mailer = (*Mailer)(nil)

// New constructs an unconfigured mailer.
func New(opts ...Option) *Mailer {
	m := &Mailer{
		factory: NewDialer,
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Load reads the mail group and configures the transport.
func (m *Mailer) Load(ctx context.Context, reader interface {
	Get(ctx context.Context, group settings.Group) (settings.Values, error)
}) error {
	values, err := reader.Get(ctx, settings.GroupMail)
	if err != nil {
		return err
	}
	m.Configure(ConfigFromValues(values))
	return nil
}

// SettingsChanged rebuilds the transport after the mail group is saved.
func (m *Mailer) SettingsChanged(_ context.Context, change settings.Change) error {
	if change.Group != settings.GroupMail {
		return nil
	}
	m.Configure(ConfigFromValues(change.Values))
	return nil
}

// Configure swaps the transport.
func (m *Mailer) Configure(cfg SMTPConfig) {
	if cfg.FromAddress == "" {
		cfg.FromAddress = m.fallbackAddress
	}
	if cfg.FromName == "" {
		cfg.FromName = m.fallbackName
	}
	var sender Sender
	if cfg.Configured() {
		sender = m.factory(cfg)
	}

	m.mu.Lock()
	m.cfg = cfg
	m.sender = sender
	m.mu.Unlock()
	m.logger.Info("mail.transport.configured", "host", cfg.Host, "port", cfg.Port, "encryption", cfg.Encryption, "ready", sender != nil)
}

// Config returns the active transport config.
func (m *Mailer) Config() SMTPConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Send delivers msg.
func (m *Mailer) Send(ctx context.Context, msg interfaces.MailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	cfg, sender := m.cfg, m.sender
	m.mu.RUnlock()
	if sender == nil {
		return ErrNotConfigured
	}
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	for _, to := range msg.To {
		if _, err := mail.ParseAddress(to); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidRecipient, to)
		}
	}

	message := gomail.NewMessage()
	message.SetAddressHeader("From", cfg.FromAddress, cfg.FromName)
	message.SetHeader("To", msg.To...)
	message.SetHeader("Subject", msg.Subject)
	contentType := "text/plain"
	if msg.HTML {
		contentType = "text/html"
	}
	message.SetBody(contentType, msg.Body)

	if err := sender.DialAndSend(message); err != nil {
		m.logger.Error("mail.send.failed", "host", cfg.Host, "recipients", len(msg.To), "error", err)
		return fmt.Errorf("mailer: send: %w", err)
	}
	m.logger.Info("mail.send.succeeded", "recipients", len(msg.To))
	return nil
}

// SendTest sends the localized settings test message to recipient.
func (m *Mailer) SendTest(ctx context.Context, recipient, locale string) error {
	subject, body := "Mail settings test", "This message confirms the portal mail settings work."
	if m.translator != nil {
		subject = i18n.Label(m.translator, locale, "mail.test.subject")
		body = i18n.Label(m.translator, locale, "mail.test.body")
	}
	return m.Send(ctx, interfaces.MailMessage{
		To:      []string{strings.TrimSpace(recipient)},
		Subject: subject,
		Body:    body,
	})
}
