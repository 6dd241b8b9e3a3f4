package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/czy882/sanitary-pads-shop/pkg/errors"
)

type fakeCartAPI struct {
	calls atomic.Int64

	fetch  func(ctx context.Context) (json.RawMessage, error)
	add    func(ctx context.Context, id int64, qty int) (json.RawMessage, error)
	update func(ctx context.Context, key string, qty int) (json.RawMessage, error)
	clear  func(ctx context.Context) (json.RawMessage, error)
}

func (f *fakeCartAPI) FetchCart(ctx context.Context) (json.RawMessage, error) {
	f.calls.Add(1)
	if f.fetch != nil {
		return f.fetch(ctx)
	}
	return json.RawMessage(`{"items":[]}`), nil
}

func (f *fakeCartAPI) AddItem(ctx context.Context, id int64, qty int) (json.RawMessage, error) {
	f.calls.Add(1)
	if f.add != nil {
		return f.add(ctx, id, qty)
	}
	return json.RawMessage(`{"items":[]}`), nil
}

func (f *fakeCartAPI) UpdateItem(ctx context.Context, key string, qty int) (json.RawMessage, error) {
	f.calls.Add(1)
	if f.update != nil {
		return f.update(ctx, key, qty)
	}
	return json.RawMessage(`{"items":[]}`), nil
}

func (f *fakeCartAPI) ClearCart(ctx context.Context) (json.RawMessage, error) {
	f.calls.Add(1)
	if f.clear != nil {
		return f.clear(ctx)
	}
	return json.RawMessage(`{"items":[]}`), nil
}

func newTestStore(api *fakeCartAPI) *SessionStore {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSessionStore(api, logger)
}

func cartPayload(items string) json.RawMessage {
	return json.RawMessage(`{"items":` + items + `}`)
}

func TestAddItem_InvalidReferenceFailsFast(t *testing.T) {
	tests := []struct {
		name string
		ref  string
	}{
		{"empty", ""},
		{"non numeric", "abc"},
		{"negative", "-3"},
		{"zero", "0"},
		{"fractional", "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeCartAPI{}
			store := newTestStore(api)

			_, err := store.AddItem(context.Background(), tt.ref, 1)

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
			assert.Equal(t, int64(0), api.calls.Load(), "validation failures must not reach the network")

			view := store.View()
			assert.NotEmpty(t, view.LastError)
			assert.False(t, view.Loading)
		})
	}
}

func TestAddItem_ClampsQuantityToOne(t *testing.T) {
	var gotQty int
	api := &fakeCartAPI{
		add: func(_ context.Context, _ int64, qty int) (json.RawMessage, error) {
			gotQty = qty
			return cartPayload(`[]`), nil
		},
	}
	store := newTestStore(api)

	_, err := store.AddItem(context.Background(), "7", 0)

	require.NoError(t, err)
	assert.Equal(t, 1, gotQty)
}

func TestUpdateItemQuantity_Validation(t *testing.T) {
	api := &fakeCartAPI{}
	store := newTestStore(api)

	_, err := store.UpdateItemQuantity(context.Background(), "", 2)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	_, err = store.UpdateItemQuantity(context.Background(), "a1", -1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	assert.Equal(t, int64(0), api.calls.Load())
}

func TestUpdateItemQuantity_ZeroRemovesIdempotently(t *testing.T) {
	api := &fakeCartAPI{
		update: func(_ context.Context, _ string, _ int) (json.RawMessage, error) {
			// Removing an already-absent line still yields the same empty cart.
			return cartPayload(`[]`), nil
		},
	}
	store := newTestStore(api)

	first, err := store.UpdateItemQuantity(context.Background(), "a1", 0)
	require.NoError(t, err)

	second, err := store.UpdateItemQuantity(context.Background(), "a1", 0)
	require.NoError(t, err)

	assert.Equal(t, 0, first.ItemCount())
	assert.Equal(t, first.ItemCount(), second.ItemCount())
	assert.Empty(t, store.View().LastError)
}

func TestRefresh_ErrorRetainsPriorSnapshot(t *testing.T) {
	fail := false
	api := &fakeCartAPI{
		fetch: func(context.Context) (json.RawMessage, error) {
			if fail {
				return nil, apperrors.TransportFailure(errors.New("connection refused"))
			}
			return cartPayload(`[{"item_key":"a1","quantity":2,"price":"9.99"}]`), nil
		},
	}
	store := newTestStore(api)

	_, err := store.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, store.View().Snapshot.ItemCount())

	fail = true
	_, err = store.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrTransport)

	view := store.View()
	require.NotNil(t, view.Snapshot, "failed refresh must keep the prior snapshot")
	assert.Equal(t, 2, view.Snapshot.ItemCount())
	assert.NotEmpty(t, view.LastError)
}

func TestSequenceGuard_SlowResponseCannotOverwriteNewerState(t *testing.T) {
	refreshStarted := make(chan struct{})
	releaseRefresh := make(chan struct{})

	api := &fakeCartAPI{
		fetch: func(ctx context.Context) (json.RawMessage, error) {
			close(refreshStarted)
			select {
			case <-releaseRefresh:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			// Stale view of the world: the cart before the add landed.
			return cartPayload(`[{"item_key":"a1","quantity":1}]`), nil
		},
		add: func(context.Context, int64, int) (json.RawMessage, error) {
			return cartPayload(`[{"item_key":"a1","quantity":1},{"item_key":"b2","quantity":3}]`), nil
		},
	}
	store := newTestStore(api)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = store.Refresh(context.Background())
	}()

	select {
	case <-refreshStarted:
	case <-time.After(time.Second):
		t.Fatal("refresh never dispatched")
	}

	_, err := store.AddItem(context.Background(), "9", 3)
	require.NoError(t, err)
	require.Equal(t, 4, store.View().Snapshot.ItemCount())

	close(releaseRefresh)
	wg.Wait()

	view := store.View()
	assert.Equal(t, 4, view.Snapshot.ItemCount(), "stale refresh must not roll back the add")
	assert.Len(t, view.Snapshot.Items, 2)
	assert.Empty(t, view.LastError, "a discarded response must never surface as an error")
	assert.Equal(t, uint64(1), store.StaleDiscards())
}

func TestSequenceGuard_DiscardStillNotifiesSubscribers(t *testing.T) {
	refreshStarted := make(chan struct{})
	releaseRefresh := make(chan struct{})

	api := &fakeCartAPI{
		fetch: func(ctx context.Context) (json.RawMessage, error) {
			close(refreshStarted)
			<-releaseRefresh
			return cartPayload(`[{"item_key":"a1","quantity":1}]`), nil
		},
		add: func(context.Context, int64, int) (json.RawMessage, error) {
			return cartPayload(`[{"item_key":"a1","quantity":1},{"item_key":"b2","quantity":3}]`), nil
		},
	}
	store := newTestStore(api)

	var mu sync.Mutex
	var last View
	store.Subscribe(func(v View) {
		mu.Lock()
		last = v
		mu.Unlock()
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = store.Refresh(context.Background())
	}()
	<-refreshStarted

	_, err := store.AddItem(context.Background(), "9", 3)
	require.NoError(t, err)

	close(releaseRefresh)
	wg.Wait()

	// The discarded response must not leave subscribers believing a request
	// is still in flight.
	mu.Lock()
	defer mu.Unlock()
	assert.False(t, last.Loading, "subscribers must see loading finish after a discard")
	assert.Equal(t, 4, last.Snapshot.ItemCount())
	assert.Empty(t, last.LastError)
}

func TestSequenceGuard_StaleErrorDoesNotClobberLastError(t *testing.T) {
	refreshStarted := make(chan struct{})
	releaseRefresh := make(chan struct{})

	api := &fakeCartAPI{
		fetch: func(ctx context.Context) (json.RawMessage, error) {
			close(refreshStarted)
			<-releaseRefresh
			return nil, apperrors.TransportFailure(errors.New("timeout"))
		},
		add: func(context.Context, int64, int) (json.RawMessage, error) {
			return cartPayload(`[{"item_key":"a1","quantity":1}]`), nil
		},
	}
	store := newTestStore(api)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = store.Refresh(context.Background())
	}()
	<-refreshStarted

	_, err := store.AddItem(context.Background(), "9", 1)
	require.NoError(t, err)

	close(releaseRefresh)
	wg.Wait()

	view := store.View()
	assert.Empty(t, view.LastError)
	assert.Equal(t, 1, view.Snapshot.ItemCount())
	assert.Equal(t, uint64(1), store.StaleDiscards())
}

func TestSubscribe_NotifiesOnEveryChange(t *testing.T) {
	api := &fakeCartAPI{
		fetch: func(context.Context) (json.RawMessage, error) {
			return cartPayload(`[{"item_key":"a1","quantity":1}]`), nil
		},
	}
	store := newTestStore(api)

	var mu sync.Mutex
	var views []View
	unsubscribe := store.Subscribe(func(v View) {
		mu.Lock()
		views = append(views, v)
		mu.Unlock()
	})

	_, err := store.Refresh(context.Background())
	require.NoError(t, err)

	mu.Lock()
	require.Len(t, views, 2)
	assert.True(t, views[0].Loading)
	assert.False(t, views[1].Loading)
	assert.Equal(t, 1, views[1].Snapshot.ItemCount())
	mu.Unlock()

	unsubscribe()
	_, err = store.Refresh(context.Background())
	require.NoError(t, err)

	mu.Lock()
	assert.Len(t, views, 2, "unsubscribed callback must not fire")
	mu.Unlock()
}

func TestAddItem_FailureRetainsPriorSnapshot(t *testing.T) {
	api := &fakeCartAPI{
		fetch: func(context.Context) (json.RawMessage, error) {
			return cartPayload(`[{"item_key":"a1","quantity":2,"price":"9.99"}]`), nil
		},
		add: func(context.Context, int64, int) (json.RawMessage, error) {
			return nil, apperrors.BackendRejected(400, "product is out of stock")
		},
	}
	store := newTestStore(api)

	_, err := store.Refresh(context.Background())
	require.NoError(t, err)
	before := store.View().Snapshot

	_, err = store.AddItem(context.Background(), "7", 1)
	require.Error(t, err)

	view := store.View()
	require.NotNil(t, view.Snapshot, "failed add must keep the prior snapshot")
	assert.Same(t, before, view.Snapshot)
	assert.Equal(t, 2, view.Snapshot.ItemCount())
	assert.Equal(t, "product is out of stock", view.LastError)
}

func TestBackendRejection_SurfacesVerbatimMessage(t *testing.T) {
	api := &fakeCartAPI{
		add: func(context.Context, int64, int) (json.RawMessage, error) {
			return nil, apperrors.BackendRejected(400, "You cannot add that amount to the cart")
		},
	}
	store := newTestStore(api)

	_, err := store.AddItem(context.Background(), "7", 99)
	require.Error(t, err)

	assert.Equal(t, "You cannot add that amount to the cart", store.View().LastError)
}

func TestSessionFlow_AddUpdateClear(t *testing.T) {
	api := &fakeCartAPI{
		add: func(_ context.Context, id int64, qty int) (json.RawMessage, error) {
			assert.Equal(t, int64(7), id)
			assert.Equal(t, 2, qty)
			return cartPayload(`[{"item_key":"a1","quantity":2,"price":"9.99"}]`), nil
		},
		update: func(_ context.Context, key string, qty int) (json.RawMessage, error) {
			assert.Equal(t, "a1", key)
			assert.Equal(t, 5, qty)
			return cartPayload(`[{"item_key":"a1","quantity":5,"price":"9.99"}]`), nil
		},
		clear: func(context.Context) (json.RawMessage, error) {
			return cartPayload(`[]`), nil
		},
	}
	store := newTestStore(api)

	snap, err := store.AddItem(context.Background(), "7", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.ItemCount())
	assert.Equal(t, int64(1998), snap.Subtotal())

	snap, err = store.UpdateItemQuantity(context.Background(), "a1", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, snap.ItemCount())
	assert.Equal(t, int64(4995), snap.Subtotal())

	snap, err = store.Clear(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, snap.ItemCount())
	assert.Equal(t, int64(0), snap.Subtotal())

	view := store.View()
	assert.Equal(t, 0, view.Snapshot.ItemCount())
	assert.Empty(t, view.LastError)
	assert.False(t, view.Loading)
}
