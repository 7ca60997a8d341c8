package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountkit/accountkit/internal/model"
	"github.com/accountkit/accountkit/internal/validation"
)

func seedUser(t *testing.T, repo *Memory, username, email string) *model.User {
	t.Helper()
	u := &model.User{
		Username:             username,
		Email:                email,
		Password:             "hunter22",
		PasswordConfirmation: "hunter22",
		PasswordHash:         "$stored-hash",
		ConfirmationCode:     "code-" + username,
	}
	require.NoError(t, repo.Persist(context.Background(), u, validation.Default()))
	return u
}

func TestMemoryPersistAssignsIDOnce(t *testing.T) {
	repo := NewMemory()
	u := seedUser(t, repo, "alice", "alice@example.com")

	require.NotEmpty(t, u.ID)
	id := u.ID

	u.Email = "alice2@example.com"
	require.NoError(t, repo.Persist(context.Background(), u, validation.Default().WithoutPassword().ExcludingID(u.ID)))
	assert.Equal(t, id, u.ID)

	got, err := repo.ByEmail(context.Background(), "alice2@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
}

func TestMemoryPersistEnforcesUniqueness(t *testing.T) {
	repo := NewMemory()
	seedUser(t, repo, "alice", "alice@example.com")

	dup := &model.User{
		Username:             "alice",
		Email:                "other@example.com",
		Password:             "hunter22",
		PasswordConfirmation: "hunter22",
	}
	err := repo.Persist(context.Background(), dup, validation.Default())

	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	assert.True(t, errs.Has(validation.FieldUsername, validation.RuleUnique))
	assert.Empty(t, dup.ID, "rejected record must stay new")
}

func TestMemoryPersistDoesNotStoreTransients(t *testing.T) {
	repo := NewMemory()
	u := seedUser(t, repo, "alice", "alice@example.com")

	got, err := repo.ByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Password)
	assert.Empty(t, got.PasswordConfirmation)
	assert.Equal(t, "$stored-hash", got.PasswordHash)
}

func TestMemoryMarkConfirmed(t *testing.T) {
	repo := NewMemory()
	u := seedUser(t, repo, "alice", "alice@example.com")

	require.NoError(t, repo.MarkConfirmed(context.Background(), u.ID))

	got, err := repo.ByConfirmationCode(context.Background(), "code-alice")
	require.NoError(t, err)
	assert.True(t, got.Confirmed)

	assert.ErrorIs(t, repo.MarkConfirmed(context.Background(), "missing"), ErrUserNotFound)
}

func TestMemoryResetTokenOverwriteAndConsume(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()
	u := seedUser(t, repo, "alice", "alice@example.com")

	expiry := time.Now().Add(time.Hour)
	require.NoError(t, repo.SetResetToken(ctx, u.ID, "first-token", expiry))
	require.NoError(t, repo.SetResetToken(ctx, u.ID, "second-token", expiry))

	// Only the latest token is valid.
	_, err := repo.ConsumeResetToken(ctx, "first-token")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	tok, err := repo.ConsumeResetToken(ctx, "second-token")
	require.NoError(t, err)
	assert.Equal(t, u.ID, tok.UserID)

	// Single use.
	_, err = repo.ConsumeResetToken(ctx, "second-token")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestMemoryConsumeExpiredToken(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()
	u := seedUser(t, repo, "alice", "alice@example.com")

	require.NoError(t, repo.SetResetToken(ctx, u.ID, "stale", time.Now().Add(-time.Minute)))

	_, err := repo.ConsumeResetToken(ctx, "stale")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestMemorySetPasswordHashInvalidatesTokens(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()
	u := seedUser(t, repo, "alice", "alice@example.com")

	require.NoError(t, repo.SetResetToken(ctx, u.ID, "tok", time.Now().Add(time.Hour)))
	require.NoError(t, repo.SetPasswordHash(ctx, u.ID, "$new-hash"))

	hash, err := repo.OriginalPasswordHash(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "$new-hash", hash)

	_, err = repo.ConsumeResetToken(ctx, "tok")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}
