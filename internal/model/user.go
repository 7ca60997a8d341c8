package model

import (
	"time"
)

type User struct {
	ID               string    `db:"id" json:"id"`
	Username         string    `db:"username" json:"username"`
	Email            string    `db:"email" json:"email"`
	PasswordHash     string    `db:"password_hash" json:"-"`
	Confirmed        bool      `db:"confirmed" json:"confirmed"`
	ConfirmationCode string    `db:"confirmation_code" json:"-"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`

	// Transient input fields, never persisted. Password carries the
	// plaintext a caller wants hashed on the next save; both are zeroed
	// after a successful save.
	Password             string `db:"-" json:"-"`
	PasswordConfirmation string `db:"-" json:"-"`
}

// HasNewPassword reports whether the caller supplied plaintext
// credentials for this save. An update without a new password keeps
// the stored hash untouched.
func (u *User) HasNewPassword() bool {
	return u.Password != "" || u.PasswordConfirmation != ""
}

// IsNew reports whether the record has ever been persisted. Storage
// assigns the ID on first persist, so an empty ID means a new record.
func (u *User) IsNew() bool {
	return u.ID == ""
}
