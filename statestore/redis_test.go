package statestore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/autovis/engine"
)

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("AUTOVIS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("AUTOVIS_TEST_REDIS_ADDR not set")
	}
	store, err := NewRedisStore(context.Background(), RedisOptions{
		Addr:      addr,
		KeyPrefix: "autovis-test:" + uuid.NewString() + ":",
		TTL:       time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRedisStore(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	_, err := store.Load(ctx, "builder")
	assert.True(t, errors.Is(err, ErrNotFound))

	state := State{ChartType: engine.ChartLine, AxesMapping: engine.NameMapping{engine.AxisX: "timestamp", engine.AxisY: "count"}}
	require.NoError(t, store.Save(ctx, "builder", state))

	got, err := store.Load(ctx, "builder")
	require.NoError(t, err)
	assert.Equal(t, state, got)

	require.NoError(t, store.Delete(ctx, "builder"))
	_, err = store.Load(ctx, "builder")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestNewRedisStoreRequiresAddr(t *testing.T) {
	_, err := NewRedisStore(context.Background(), RedisOptions{})
	require.Error(t, err)
}
