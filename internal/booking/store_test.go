package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisFlowStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisFlowStore(client, time.Hour), mr
}

func TestRedisFlowStoreRoundTrip(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	flow := NewFlow()
	flow.Draft.ServiceID = "3"
	flow.Draft.Email = "jane@example.com"
	require.NoError(t, store.Save(ctx, flow))

	loaded, err := store.Get(ctx, flow.ID)
	require.NoError(t, err)
	require.Equal(t, flow.ID, loaded.ID)
	require.Equal(t, flow.Draft, loaded.Draft)
	require.Equal(t, flow.Step, loaded.Step)
}

func TestRedisFlowStoreMissing(t *testing.T) {
	store, _ := newRedisStore(t)
	_, err := store.Get(context.Background(), "nope")
	require.ErrorIs(t, err, ErrFlowNotFound)
}

func TestRedisFlowStoreExpiry(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	flow := NewFlow()
	require.NoError(t, store.Save(ctx, flow))

	mr.FastForward(2 * time.Hour)

	_, err := store.Get(ctx, flow.ID)
	require.ErrorIs(t, err, ErrFlowNotFound)
}

func TestRedisFlowStoreDelete(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	flow := NewFlow()
	require.NoError(t, store.Save(ctx, flow))
	require.NoError(t, store.Delete(ctx, flow.ID))

	_, err := store.Get(ctx, flow.ID)
	require.ErrorIs(t, err, ErrFlowNotFound)
}

func TestRedisFlowStoreSubmitGuard(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.BeginSubmit(ctx, "flow-1"))
	require.ErrorIs(t, store.BeginSubmit(ctx, "flow-1"), ErrSubmitInFlight)

	require.NoError(t, store.EndSubmit(ctx, "flow-1"))
	require.NoError(t, store.BeginSubmit(ctx, "flow-1"))

	// A crashed submitter releases the guard by TTL.
	mr.FastForward(time.Minute)
	require.NoError(t, store.BeginSubmit(ctx, "flow-1"))
}

func TestMemoryFlowStore(t *testing.T) {
	store := NewMemoryFlowStore()
	ctx := context.Background()

	flow := NewFlow()
	flow.Draft.ServiceID = "3"
	if err := store.Save(ctx, flow); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Get(ctx, flow.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	// The store hands out copies; mutating one must not leak into the other.
	loaded.Draft.ServiceID = "9"
	again, _ := store.Get(ctx, flow.ID)
	if again.Draft.ServiceID != "3" {
		t.Error("store returned a shared flow pointer")
	}

	if err := store.BeginSubmit(ctx, flow.ID); err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}
	if err := store.BeginSubmit(ctx, flow.ID); !errors.Is(err, ErrSubmitInFlight) {
		t.Errorf("second BeginSubmit = %v, want ErrSubmitInFlight", err)
	}
	if err := store.EndSubmit(ctx, flow.ID); err != nil {
		t.Fatalf("EndSubmit: %v", err)
	}

	if err := store.Delete(ctx, flow.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, flow.ID); !errors.Is(err, ErrFlowNotFound) {
		t.Errorf("Get after delete = %v, want ErrFlowNotFound", err)
	}
}
