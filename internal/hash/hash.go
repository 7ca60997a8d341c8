package hash

import (
	"golang.org/x/crypto/bcrypt"
)

// Hasher is a one-way credential hasher. Hash output embeds a
// per-call random salt, so hashing the same plaintext twice yields
// different values; Verify is the only way to compare.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// Bcrypt hashes with golang.org/x/crypto/bcrypt. A zero Cost uses
// bcrypt.DefaultCost; tests lower it to bcrypt.MinCost.
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(plaintext string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (b Bcrypt) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
