// Package service implements the cart session store: the single authoritative
// in-memory cart state for the storefront session.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/czy882/sanitary-pads-shop/internal/backend"
	"github.com/czy882/sanitary-pads-shop/internal/domain"
	apperrors "github.com/czy882/sanitary-pads-shop/pkg/errors"
)

// View is the read surface exposed to consumers. Snapshot is nil until the
// first load completes; consumers must tolerate that. The snapshot is shared
// read-only state and must never be mutated by callers.
type View struct {
	Snapshot  *domain.Snapshot
	Loading   bool
	LastError string
}

// Subscriber is notified after every state change. Callbacks run on the
// calling goroutine of the operation that caused the change and must not
// block.
type Subscriber func(View)

// SessionStore owns the cart snapshot for one shopping session and serializes
// all mutations against it. All operations are remote calls: each one blocks
// until the backend responds, and overlapping calls are reconciled with a
// monotonic sequence number so a slow, older response can never overwrite the
// effect of a newer one.
type SessionStore struct {
	api    backend.CartAPI
	logger *slog.Logger

	mu       sync.Mutex
	snapshot *domain.Snapshot
	inflight int
	lastErr  string

	// nextSeq tags requests at dispatch; appliedSeq is the highest sequence
	// whose outcome has been committed. A response with seq <= appliedSeq is
	// stale and discarded.
	nextSeq    uint64
	appliedSeq uint64

	// staleDiscards counts discarded stale responses for test instrumentation.
	staleDiscards uint64

	subs      map[int]Subscriber
	nextSubID int
}

// NewSessionStore creates a session store. The store starts with a nil
// snapshot; callers typically issue a Refresh right after construction.
func NewSessionStore(api backend.CartAPI, logger *slog.Logger) *SessionStore {
	return &SessionStore{
		api:    api,
		logger: logger,
		subs:   make(map[int]Subscriber),
	}
}

// View returns the current state.
func (s *SessionStore) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Subscribe registers a callback invoked after every state change. The
// returned function removes the subscription.
func (s *SessionStore) Subscribe(fn Subscriber) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// StaleDiscards reports how many stale responses have been discarded.
func (s *SessionStore) StaleDiscards() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.staleDiscards
}

// Refresh fetches the current cart from the backend with no side effects on
// server state. On failure the previous snapshot is left untouched.
func (s *SessionStore) Refresh(ctx context.Context) (*domain.Snapshot, error) {
	return s.dispatch(ctx, "refresh", s.api.FetchCart)
}

// AddItem adds quantity units of the referenced catalog product. The product
// reference must parse to a positive integer id; anything else fails fast
// without touching the network. Quantities below 1 are clamped to 1.
func (s *SessionStore) AddItem(ctx context.Context, productRef string, quantity int) (*domain.Snapshot, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(productRef), 10, 64)
	if err != nil || id <= 0 {
		return nil, s.failFast(apperrors.InvalidArgument("product reference must be a positive number"))
	}
	if quantity < 1 {
		quantity = 1
	}

	return s.dispatch(ctx, "add_item", func(ctx context.Context) (json.RawMessage, error) {
		return s.api.AddItem(ctx, id, quantity)
	})
}

// UpdateItemQuantity sets the given cart line to quantity. Quantity 0 removes
// the line. The key must be a backend-issued line identity from the current
// snapshot; freshness is not validated locally, so a stale key surfaces as a
// backend rejection.
func (s *SessionStore) UpdateItemQuantity(ctx context.Context, itemKey string, quantity int) (*domain.Snapshot, error) {
	if strings.TrimSpace(itemKey) == "" {
		return nil, s.failFast(apperrors.InvalidArgument("item key is required"))
	}
	if quantity < 0 {
		return nil, s.failFast(apperrors.InvalidArgument("quantity must not be negative"))
	}

	return s.dispatch(ctx, "update_item", func(ctx context.Context) (json.RawMessage, error) {
		return s.api.UpdateItem(ctx, itemKey, quantity)
	})
}

// Clear empties the cart. The snapshot is replaced with whatever the backend
// returns rather than an assumed-empty structure: some backends keep
// non-item metadata (vouchers, notices) on an emptied cart.
func (s *SessionStore) Clear(ctx context.Context) (*domain.Snapshot, error) {
	return s.dispatch(ctx, "clear", s.api.ClearCart)
}

// dispatch runs one backend call under the sequence guard.
func (s *SessionStore) dispatch(ctx context.Context, op string, call func(context.Context) (json.RawMessage, error)) (*domain.Snapshot, error) {
	s.mu.Lock()
	s.nextSeq++
	seq := s.nextSeq
	s.inflight++
	view := s.viewLocked()
	s.mu.Unlock()
	s.notify(view)

	raw, err := call(ctx)

	s.mu.Lock()
	s.inflight--

	if seq <= s.appliedSeq {
		// A logically later request already committed; this response is
		// stale. Discard it silently; it must never surface through
		// LastError. Subscribers still get a notification, since the
		// in-flight count just changed.
		s.staleDiscards++
		staleResponsesTotal.WithLabelValues(op).Inc()
		view = s.viewLocked()
		s.mu.Unlock()
		s.notify(view)

		s.logger.DebugContext(ctx, "stale cart response discarded",
			slog.String("operation", op),
			slog.Uint64("seq", seq),
		)

		if err != nil {
			return nil, err
		}
		return domain.Normalize(raw), nil
	}

	s.appliedSeq = seq

	var snap *domain.Snapshot
	if err != nil {
		s.lastErr = userMessage(err)
		cartOperationsTotal.WithLabelValues(op, "error").Inc()
	} else {
		snap = domain.Normalize(raw)
		s.snapshot = snap
		s.lastErr = ""
		cartOperationsTotal.WithLabelValues(op, "success").Inc()
	}
	view = s.viewLocked()
	s.mu.Unlock()
	s.notify(view)

	if err != nil {
		s.logger.WarnContext(ctx, "cart operation failed",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.InfoContext(ctx, "cart snapshot replaced",
		slog.String("operation", op),
		slog.Int("item_count", snap.ItemCount()),
	)
	return snap, nil
}

// failFast records a pre-network validation failure and returns it. No
// sequence number is consumed: nothing was dispatched, so there is nothing to
// reconcile.
func (s *SessionStore) failFast(err *apperrors.AppError) error {
	s.mu.Lock()
	s.lastErr = err.Message
	cartOperationsTotal.WithLabelValues("validation", "rejected").Inc()
	view := s.viewLocked()
	s.mu.Unlock()
	s.notify(view)
	return err
}

func (s *SessionStore) viewLocked() View {
	return View{
		Snapshot:  s.snapshot,
		Loading:   s.inflight > 0,
		LastError: s.lastErr,
	}
}

func (s *SessionStore) notify(view View) {
	s.mu.Lock()
	subs := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(view)
	}
}

// userMessage extracts a human-readable message from an operation error.
func userMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "request was canceled"
	}
	return "cart request failed"
}
