package sentinel

import (
	"context"
	"time"
)

// Sentinel is a time-bounded idempotency cache used to suppress
// duplicate notifications (e.g. resending the confirmation email on
// every save of an unconfirmed user).
//
// The "TTL of zero disables caching" rule belongs to callers: they
// simply skip Put when the configured TTL is zero. Backends only ever
// receive positive TTLs.
//
// At-most-one-send is best effort. Two concurrent first saves for the
// same user can both miss Has before either Put lands; that window is
// accepted, not worked around.
type Sentinel interface {
	Has(ctx context.Context, key string) (bool, error)
	Put(ctx context.Context, key string, ttl time.Duration) error
}
