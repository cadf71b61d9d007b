package mailer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gopkg.in/gomail.v2"

	"github.com/goliatone/go-portal/internal/crypto"
	"github.com/goliatone/go-portal/internal/i18n"
	"github.com/goliatone/go-portal/internal/mailer"
	"github.com/goliatone/go-portal/internal/settings"
	"github.com/goliatone/go-portal/pkg/interfaces"
)

type recordingSender struct {
	cfg      mailer.SMTPConfig
	messages []*gomail.Message
	err      error
}

func (r *recordingSender) DialAndSend(messages ...*gomail.Message) error {
	r.messages = append(r.messages, messages...)
	return r.err
}

func newMailer(t *testing.T, opts ...mailer.Option) (*mailer.Mailer, *[]*recordingSender) {
	t.Helper()
	var senders []*recordingSender
	factory := mailer.WithDialerFactory(func(cfg mailer.SMTPConfig) mailer.Sender {
		sender := &recordingSender{cfg: cfg}
		senders = append(senders, sender)
		return sender
	})
	return mailer.New(append([]mailer.Option{factory}, opts...)...), &senders
}

func TestSendWithoutSettingsFails(t *testing.T) {
	m, _ := newMailer(t)
	err := m.Send(context.Background(), interfaces.MailMessage{To: []string{"a@b.my"}})
	if !errors.Is(err, mailer.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestSettingsChangeRebuildsTransport(t *testing.T) {
	ctx := context.Background()
	box, err := crypto.NewSecretBox([]byte(strings.Repeat("m", 32)))
	if err != nil {
		t.Fatalf("NewSecretBox: %v", err)
	}
	m, senders := newMailer(t, mailer.WithFallbackSender("noreply@portal.gov.my", "Portal"))
	svc := settings.NewService(settings.NewMemoryRepository(),
		settings.WithEncrypter(box),
		settings.WithObserver(m),
	)

	_, err = svc.Put(ctx, settings.PutInput{Group: settings.GroupMail, Values: map[string]any{
		"host":         "smtp.portal.gov.my",
		"port":         465,
		"username":     "mailer",
		"password":     "pw",
		"encryption":   "ssl",
		"from_address": "pentadbir@portal.gov.my",
	}})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if len(*senders) != 1 {
		t.Fatalf("expected one transport, got %d", len(*senders))
	}
	cfg := (*senders)[0].cfg
	if cfg.Password != "pw" || cfg.Port != 465 || cfg.FromName != "Portal" {
		t.Fatalf("unexpected transport config %+v", cfg)
	}

	err = m.Send(ctx, interfaces.MailMessage{To: []string{"officer@portal.gov.my"}, Subject: "Hello", Body: "<p>hi</p>", HTML: true})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	sent := (*senders)[0].messages
	if len(sent) != 1 || sent[0].GetHeader("Subject")[0] != "Hello" {
		t.Fatalf("unexpected messages %v", sent)
	}
	if from := sent[0].GetHeader("From"); len(from) != 1 || !strings.Contains(from[0], "pentadbir@portal.gov.my") {
		t.Fatalf("unexpected From header %v", from)
	}
}

func TestSendValidatesRecipients(t *testing.T) {
	m, _ := newMailer(t)
	m.Configure(mailer.SMTPConfig{Host: "smtp", Port: 25, FromAddress: "a@b.my"})

	if err := m.Send(context.Background(), interfaces.MailMessage{}); !errors.Is(err, mailer.ErrNoRecipients) {
		t.Fatalf("expected ErrNoRecipients, got %v", err)
	}
	if err := m.Send(context.Background(), interfaces.MailMessage{To: []string{"not-an-address"}}); !errors.Is(err, mailer.ErrInvalidRecipient) {
		t.Fatalf("expected ErrInvalidRecipient, got %v", err)
	}
}

func TestSendTestIsLocalized(t *testing.T) {
	locales, err := i18n.NewDefaultService(i18n.Config{DefaultLocale: "ms", Locales: []string{"ms", "en"}})
	if err != nil {
		t.Fatalf("NewDefaultService: %v", err)
	}
	m, senders := newMailer(t, mailer.WithTranslator(locales.Translator()))
	m.Configure(mailer.SMTPConfig{Host: "smtp", Port: 25, FromAddress: "a@b.my"})

	if err := m.SendTest(context.Background(), "officer@portal.gov.my", "ms"); err != nil {
		t.Fatalf("SendTest: %v", err)
	}
	msg := (*senders)[0].messages[0]
	if got := msg.GetHeader("Subject")[0]; got != "Ujian tetapan mel" {
		t.Fatalf("expected Malay subject, got %q", got)
	}
}

func TestSendWrapsTransportError(t *testing.T) {
	m := mailer.New(mailer.WithDialerFactory(func(mailer.SMTPConfig) mailer.Sender {
		return &recordingSender{err: errors.New("connection refused")}
	}))
	m.Configure(mailer.SMTPConfig{Host: "smtp", Port: 25, FromAddress: "a@b.my"})
	if err := m.Send(context.Background(), interfaces.MailMessage{To: []string{"x@y.my"}}); err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestNewDialerHonoursEncryption(t *testing.T) {
	dialer := mailer.NewDialer(mailer.SMTPConfig{Host: "smtp", Port: 465, Encryption: "ssl"}).(*gomail.Dialer)
	if !dialer.SSL || dialer.TLSConfig == nil || dialer.TLSConfig.ServerName != "smtp" {
		t.Fatalf("expected implicit TLS dialer, got %+v", dialer)
	}
	plain := mailer.NewDialer(mailer.SMTPConfig{Host: "smtp", Port: 25, Encryption: "none"}).(*gomail.Dialer)
	if plain.SSL || plain.TLSConfig != nil {
		t.Fatalf("expected plain dialer, got %+v", plain)
	}
}
