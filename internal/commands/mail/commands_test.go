package mailcmd_test

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	mailcmd "github.com/goliatone/go-portal/internal/commands/mail"
)

type stubSender struct {
	recipient, locale string
}

func (s *stubSender) SendTest(_ context.Context, recipient, locale string) error {
	s.recipient, s.locale = recipient, locale
	return nil
}

func TestSendTestMail(t *testing.T) {
	sender := &stubSender{}
	handler := mailcmd.NewSendTestHandler(sender, nil)

	if err := handler.Execute(context.Background(), mailcmd.SendTestMailCommand{To: "pentadbir@portal.gov.my", Locale: "en"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if sender.recipient != "pentadbir@portal.gov.my" || sender.locale != "en" {
		t.Fatalf("unexpected delivery %+v", sender)
	}

	for _, msg := range []mailcmd.SendTestMailCommand{
		{},
		{To: "not-an-email"},
		{To: "a@b.my", Locale: "fr"},
	} {
		if err := handler.Execute(context.Background(), msg); !goerrors.IsCategory(err, goerrors.CategoryValidation) {
			t.Fatalf("expected validation error for %+v, got %v", msg, err)
		}
	}
}
