package notifier

import "fmt"

func confirmationEmailTemplate(username, confirmURL, appName string) (string, string) {
	subject := fmt.Sprintf("Confirm your %s account", appName)
	body := fmt.Sprintf(`Hi %s,

Thanks for signing up! Please confirm your email address by clicking this link:
%s

If you didn't create this account, you can safely ignore this email.

Best,
The %s Team`, username, confirmURL, appName)

	return subject, body
}

func passwordResetEmailTemplate(username, resetURL, appName string) (string, string) {
	subject := fmt.Sprintf("Reset your password for %s", appName)
	body := fmt.Sprintf(`Hi %s,

You requested to reset your password. Click this link to choose a new one:
%s

The link can only be used once.

If you didn't request this, ignore this email. Your password won't be changed.

Best,
The %s Team`, username, resetURL, appName)

	return subject, body
}
