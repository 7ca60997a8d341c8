package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/accountkit/accountkit/internal/hash"
	"github.com/accountkit/accountkit/internal/model"
	"github.com/accountkit/accountkit/internal/notifier"
	"github.com/accountkit/accountkit/internal/repository"
	"github.com/accountkit/accountkit/internal/sentinel"
	"github.com/accountkit/accountkit/internal/token"
	"github.com/accountkit/accountkit/internal/validation"
)

var ErrPasswordMismatch = errors.New("password confirmation does not match")

// Options tune the lifecycle flows.
type Options struct {
	// SignupCacheTTL bounds how long a sent confirmation email
	// suppresses resends. Zero disables the cache entirely: every save
	// of an unconfirmed user attempts a resend.
	SignupCacheTTL time.Duration

	// ResetTokenExpiry is the validity window of a password reset
	// token (single-use on top of the window).
	ResetTokenExpiry time.Duration

	ConfirmationCodeLength int
	ResetTokenLength       int
}

func (o Options) withDefaults() Options {
	if o.ResetTokenExpiry == 0 {
		o.ResetTokenExpiry = time.Hour
	}
	if o.ConfirmationCodeLength == 0 {
		o.ConfirmationCodeLength = 8
	}
	if o.ResetTokenLength == 0 {
		o.ResetTokenLength = 32
	}
	return o
}

// AccountLifecycle orchestrates registration, confirmation and
// password reset. All collaborators are injected; there is no shared
// global state.
type AccountLifecycle struct {
	users    repository.UserRepository
	hasher   hash.Hasher
	tokens   token.Generator
	sentinel sentinel.Sentinel
	notifier notifier.Notifier
	opts     Options
}

func NewAccountLifecycle(
	users repository.UserRepository,
	hasher hash.Hasher,
	tokens token.Generator,
	sent sentinel.Sentinel,
	notif notifier.Notifier,
	opts Options,
) *AccountLifecycle {
	return &AccountLifecycle{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		sentinel: sent,
		notifier: notif,
		opts:     opts.withDefaults(),
	}
}

// Save validates and persists the user, hashing any supplied plaintext
// password first. A nil or empty rule set selects the standard rules.
//
// On updates with the standard rules where the caller left both
// password fields blank, the previously stored hash is restored and
// the password rules are dropped for this save, so editing a profile
// never silently blanks a password. Uniqueness rules on updates
// exclude the record's own row.
func (s *AccountLifecycle) Save(ctx context.Context, u *model.User, rules validation.RuleSet) error {
	defaulted := len(rules) == 0
	if defaulted {
		rules = validation.Default()
	} else {
		rules = rules.Clone()
	}

	autoHash := true
	if !u.IsNew() {
		if defaulted && !u.HasNewPassword() {
			orig, err := s.users.OriginalPasswordHash(ctx, u.ID)
			if err != nil {
				return fmt.Errorf("restore password hash: %w", err)
			}
			u.PasswordHash = orig
			autoHash = false
			rules = rules.WithoutPassword()
		}
		rules = rules.ExcludingID(u.ID)
	}

	err := s.prepare(u, autoHash)
	if err != nil {
		return err
	}

	err = s.users.Persist(ctx, u, rules)
	if err != nil {
		return err
	}

	s.onPersisted(ctx, u)

	u.Password = ""
	u.PasswordConfirmation = ""
	return nil
}

// prepare is the pure transformation step before the storage call:
// assign a confirmation code on the very first persist, and hash a
// supplied plaintext password. The transient plaintext fields stay on
// the record until after a successful persist; they are never columns.
func (s *AccountLifecycle) prepare(u *model.User, autoHash bool) error {
	if u.IsNew() && u.ConfirmationCode == "" {
		code, err := s.tokens.Generate(s.opts.ConfirmationCodeLength)
		if err != nil {
			return fmt.Errorf("generate confirmation code: %w", err)
		}
		u.ConfirmationCode = code
	}

	if autoHash && u.Password != "" {
		hashed, err := s.hasher.Hash(u.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hashed
	}

	return nil
}

// onPersisted runs the side effects of a successful save. It never
// fails the save: notification problems are logged and the next save
// of a still-unconfirmed user retries.
func (s *AccountLifecycle) onPersisted(ctx context.Context, u *model.User) {
	if u.Confirmed {
		return
	}

	key := "confirmation_email_" + u.ID

	sent, err := s.sentinel.Has(ctx, key)
	if err != nil {
		slog.Warn("sentinel lookup failed, sending anyway", "error", err, "user_id", u.ID)
	}
	if sent {
		return
	}

	err = s.notifier.SendConfirmation(ctx, u)
	if err != nil {
		slog.Warn("failed to send confirmation email", "error", err, "user_id", u.ID, "email", u.Email)
		return
	}

	if s.opts.SignupCacheTTL != 0 {
		err = s.sentinel.Put(ctx, key, s.opts.SignupCacheTTL)
		if err != nil {
			slog.Warn("failed to record confirmation email in sentinel", "error", err, "user_id", u.ID)
		}
	}
}

// Confirm marks the user's email as verified. Confirming an already
// confirmed user is a no-op; a confirmed user never transitions back.
func (s *AccountLifecycle) Confirm(ctx context.Context, u *model.User) error {
	if u.Confirmed {
		return nil
	}

	u.Confirmed = true
	err := s.users.MarkConfirmed(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("mark confirmed: %w", err)
	}

	slog.Info("user confirmed", "user_id", u.ID)
	return nil
}

// ConfirmByCode looks the user up by their confirmation code and
// confirms them. The code is retained after use as a read-only
// historical value.
func (s *AccountLifecycle) ConfirmByCode(ctx context.Context, code string) (*model.User, error) {
	u, err := s.users.ByConfirmationCode(ctx, code)
	if err != nil {
		return nil, err
	}
	err = s.Confirm(ctx, u)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ForgotPassword issues a fresh single-use reset token, overwriting
// any previous unused one, and emails it to the user. Only the latest
// token validates; if two calls race, the last write wins. The email
// is best effort, so the token is returned even if sending failed.
func (s *AccountLifecycle) ForgotPassword(ctx context.Context, u *model.User) (string, error) {
	tok, err := s.tokens.Generate(s.opts.ResetTokenLength)
	if err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}

	err = s.users.SetResetToken(ctx, u.ID, tok, time.Now().Add(s.opts.ResetTokenExpiry))
	if err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}

	err = s.notifier.SendPasswordReset(ctx, u, tok)
	if err != nil {
		slog.Warn("failed to send password reset email", "error", err, "user_id", u.ID, "email", u.Email)
	}

	return tok, nil
}

// ResetPassword replaces the user's password after checking the
// confirmation matches. A mismatch changes nothing.
func (s *AccountLifecycle) ResetPassword(ctx context.Context, u *model.User, password, confirmation string) error {
	if password != confirmation {
		return ErrPasswordMismatch
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.users.SetPasswordHash(ctx, u.ID, hashed)
	if err != nil {
		return fmt.Errorf("set password hash: %w", err)
	}

	u.PasswordHash = hashed
	slog.Info("password reset", "user_id", u.ID)
	return nil
}

// ResetPasswordByToken atomically consumes a reset token and resets
// the password. The mismatch check runs first so a typo does not burn
// the token. Consuming enforces both expiry and single use; storing
// the new hash invalidates any other outstanding token.
func (s *AccountLifecycle) ResetPasswordByToken(ctx context.Context, tok, password, confirmation string) (*model.User, error) {
	if password != confirmation {
		return nil, ErrPasswordMismatch
	}

	t, err := s.users.ConsumeResetToken(ctx, tok)
	if err != nil {
		return nil, err
	}

	u, err := s.users.ByID(ctx, t.UserID)
	if err != nil {
		return nil, err
	}

	err = s.ResetPassword(ctx, u, password, confirmation)
	if err != nil {
		return nil, err
	}
	return u, nil
}
