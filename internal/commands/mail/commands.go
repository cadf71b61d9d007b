package mailcmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/goliatone/go-portal/internal/commands"
	"github.com/goliatone/go-portal/internal/logging"
	"github.com/goliatone/go-portal/pkg/interfaces"
)

const sendTestMessageType = "portal.mail.send_test"

// TestSender delivers the mail settings test message.
type TestSender interface {
	SendTest(ctx context.Context, recipient, locale string) error
}

// SendTestMailCommand sends the settings test message to To.
type SendTestMailCommand struct {
	To     string `json:"to"`
	Locale string `json:"locale,omitempty"`
}

// Type implements command.Message.
func (SendTestMailCommand) Type() string { return sendTestMessageType }

// Validate implements command.Message.
func (c SendTestMailCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.To, validation.Required, is.EmailFormat),
		validation.Field(&c.Locale, validation.In("ms", "en")),
	)
}

// NewSendTestHandler builds the handler for SendTestMailCommand.
func NewSendTestHandler(sender TestSender, logger interfaces.Logger, opts ...commands.HandlerOption[SendTestMailCommand]) *commands.Handler[SendTestMailCommand] {
	if logger == nil {
		logger = logging.NoOp()
	}
	exec := func(ctx context.Context, msg SendTestMailCommand) error {
		return sender.SendTest(ctx, msg.To, msg.Locale)
	}
	handlerOpts := append([]commands.HandlerOption[SendTestMailCommand]{
		commands.WithLogger[SendTestMailCommand](logger),
		commands.WithOperation[SendTestMailCommand]("mail.send_test"),
	}, opts...)
	return commands.NewHandler(exec, handlerOpts...)
}
