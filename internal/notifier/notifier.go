package notifier

import (
	"context"

	"github.com/accountkit/accountkit/internal/model"
)

// Notifier delivers account emails. Calls are fire-and-observe:
// lifecycle operations log failures but never let them fail the
// surrounding save or reset.
type Notifier interface {
	SendConfirmation(ctx context.Context, user *model.User) error
	SendPasswordReset(ctx context.Context, user *model.User, token string) error
}
