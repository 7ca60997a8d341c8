package sentinel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPutHas(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	has, err := s.Has(ctx, "confirmation_email_1")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, s.Put(ctx, "confirmation_email_1", time.Minute))

	has, err = s.Has(ctx, "confirmation_email_1")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = s.Has(ctx, "confirmation_email_2")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestMemoryEntriesExpire(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Put(ctx, "k", time.Minute))

	has, err := s.Has(ctx, "k")
	require.NoError(t, err)
	assert.True(t, has)

	now = now.Add(2 * time.Minute)

	has, err = s.Has(ctx, "k")
	require.NoError(t, err)
	assert.False(t, has)
}
