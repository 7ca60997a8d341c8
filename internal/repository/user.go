package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/accountkit/accountkit/internal/model"
	"github.com/accountkit/accountkit/internal/validation"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrTokenNotFound = errors.New("reset token invalid or expired")
)

// UserRepository persists user records and the reset tokens attached
// to them. Persist validates against the given rule set before
// writing; column-level uniqueness is additionally enforced by the
// storage layer itself, and a storage rejection surfaces as the same
// validation.Errors a pre-check failure would.
type UserRepository interface {
	Persist(ctx context.Context, user *model.User, rules validation.RuleSet) error
	ByID(ctx context.Context, id string) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByConfirmationCode(ctx context.Context, code string) (*model.User, error)
	MarkConfirmed(ctx context.Context, id string) error
	SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error
	ConsumeResetToken(ctx context.Context, token string) (*model.Token, error)
	SetPasswordHash(ctx context.Context, id, hash string) error
	OriginalPasswordHash(ctx context.Context, id string) (string, error)

	validation.Checker
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Persist(ctx context.Context, user *model.User, rules validation.RuleSet) error {
	err := validation.Validate(ctx, user, rules, r)
	if err != nil {
		return err
	}

	if user.IsNew() {
		user.ID = uuid.New().String()
		user.CreatedAt = time.Now()

		query := `INSERT INTO users (id, username, email, password_hash, confirmed, confirmation_code, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`
		_, err = r.db.ExecContext(ctx, query,
			user.ID, user.Username, user.Email, user.PasswordHash,
			user.Confirmed, user.ConfirmationCode, user.CreatedAt)
		if err != nil {
			// Creation failed: the ID was never persisted, so the
			// record must stay "new" for a retry.
			user.ID = ""
			return uniqueOr(err)
		}
		return nil
	}

	query := `UPDATE users SET username = $1, email = $2, password_hash = $3, confirmed = $4 WHERE id = $5`
	res, err := r.db.ExecContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.Confirmed, user.ID)
	if err != nil {
		return uniqueOr(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// uniqueOr maps a storage-level unique constraint rejection to the
// field-rule errors validation produces, so callers see one error
// shape regardless of which layer caught the conflict. Works for both
// SQLite and PostgreSQL error texts.
func uniqueOr(err error) error {
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") && !strings.Contains(msg, "duplicate key value") {
		return err
	}
	field := validation.FieldEmail
	if strings.Contains(msg, "username") {
		field = validation.FieldUsername
	}
	return validation.Errors{{Field: field, Rule: validation.RuleUnique}}
}

func (r *userRepository) ByID(ctx context.Context, id string) (*model.User, error) {
	return r.getOne(ctx, `SELECT * FROM users WHERE id = $1`, id)
}

func (r *userRepository) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `SELECT * FROM users WHERE email = $1`, email)
}

func (r *userRepository) ByConfirmationCode(ctx context.Context, code string) (*model.User, error) {
	return r.getOne(ctx, `SELECT * FROM users WHERE confirmation_code = $1`, code)
}

func (r *userRepository) getOne(ctx context.Context, query, arg string) (*model.User, error) {
	user := &model.User{}
	err := r.db.GetContext(ctx, user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (r *userRepository) MarkConfirmed(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET confirmed = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetResetToken stores a fresh reset token, discarding any unused
// predecessor in the same transaction. Only the latest token is valid.
func (r *userRepository) SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM tokens WHERE user_id = $1 AND used_at IS NULL`, id)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO tokens (id, user_id, token, expires_at, created_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), id, token, expiresAt, time.Now())
	if err != nil {
		return err
	}

	return tx.Commit()
}

// ConsumeResetToken atomically claims a token. The single UPDATE means
// that when two requests race on the same token, only one succeeds;
// the other gets ErrTokenNotFound.
func (r *userRepository) ConsumeResetToken(ctx context.Context, token string) (*model.Token, error) {
	var t model.Token
	now := time.Now()

	query := `UPDATE tokens SET used_at = $1
		WHERE token = $2 AND used_at IS NULL AND expires_at > $3
		RETURNING *`
	err := r.db.GetContext(ctx, &t, query, now, token, now)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// SetPasswordHash replaces the stored hash and invalidates any
// outstanding unused reset tokens for the user.
func (r *userRepository) SetPasswordHash(ctx context.Context, id, hash string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM tokens WHERE user_id = $1 AND used_at IS NULL`, id)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *userRepository) OriginalPasswordHash(ctx context.Context, id string) (string, error) {
	var hash string
	err := r.db.GetContext(ctx, &hash, `SELECT password_hash FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUserNotFound
	}
	return hash, err
}

func (r *userRepository) IsUnique(ctx context.Context, field, value, excludeID string) (bool, error) {
	var column string
	switch field {
	case validation.FieldUsername:
		column = "username"
	case validation.FieldEmail:
		column = "email"
	default:
		return false, fmt.Errorf("no unique column for field %q", field)
	}

	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM users WHERE %s = $1 AND id != $2`, column)
	err := r.db.GetContext(ctx, &count, query, value, excludeID)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
