package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"

	"github.com/accountkit/accountkit/internal/model"
)

// Resend sends account emails through the Resend API. In development
// it logs the email instead of sending, so the full flow works
// without an API key.
type Resend struct {
	client    *resend.Client
	fromEmail string
	appURL    string
	appName   string
	isDev     bool
}

func NewResend(apiKey, fromEmail, appURL, appName string, isDev bool) *Resend {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &Resend{
		client:    client,
		fromEmail: fromEmail,
		appURL:    appURL,
		appName:   appName,
		isDev:     isDev,
	}
}

func (n *Resend) SendConfirmation(ctx context.Context, user *model.User) error {
	confirmURL := fmt.Sprintf("%s/confirm/%s", n.appURL, user.ConfirmationCode)
	subject, body := confirmationEmailTemplate(user.Username, confirmURL, n.appName)
	return n.send(ctx, "account_confirmation", user.Email, subject, body)
}

func (n *Resend) SendPasswordReset(ctx context.Context, user *model.User, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password/%s", n.appURL, token)
	subject, body := passwordResetEmailTemplate(user.Username, resetURL, n.appName)
	return n.send(ctx, "password_reset", user.Email, subject, body)
}

func (n *Resend) send(ctx context.Context, kind, to, subject, body string) error {
	if n.isDev {
		slog.Info("email sent (dev mode)", "type", kind, "to", to, "subject", subject)
		return nil
	}

	if n.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    n.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	_, err := n.client.Emails.SendWithContext(ctx, params)
	if err == nil {
		slog.Info("email sent", "type", kind, "to", to)
	}
	return err
}
