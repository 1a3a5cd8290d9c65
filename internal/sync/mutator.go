package sync

import (
	"context"
	"log/slog"
	"time"

	"github.com/docpush/docpush/internal/docstore"
	"golang.org/x/time/rate"
)

// Store is the slice of the document-store API the sync engine needs.
// *docstore.Client satisfies it; tests use an in-memory fake.
type Store interface {
	CreateFolder(ctx context.Context, parentID, name string) (string, error)
	CreateDocument(ctx context.Context, parentID, title, content string) (string, error)
	ReplaceContent(ctx context.Context, docID, content string) error
	DeleteNode(ctx context.Context, id string) error
	ListFolder(ctx context.Context, id string) ([]docstore.NodeRef, error)
}

// Mutator applies single operations against the store behind two
// layered policies: a token bucket shared across every call in the run,
// then per-call retry with exponential backoff on transient failures.
// Permanent failures (auth, not-found) return immediately.
type Mutator struct {
	store       Store
	limiter     *rate.Limiter
	backoff     Backoff
	maxAttempts int
}

func NewMutator(store Store, limiter *rate.Limiter, backoff Backoff, maxAttempts int) *Mutator {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Mutator{
		store:       store,
		limiter:     limiter,
		backoff:     backoff,
		maxAttempts: maxAttempts,
	}
}

func (m *Mutator) CreateFolder(ctx context.Context, parentID, name string) (string, error) {
	return withRetry(ctx, m, "folder create", func(ctx context.Context) (string, error) {
		return m.store.CreateFolder(ctx, parentID, name)
	})
}

func (m *Mutator) CreateDocument(ctx context.Context, parentID, title, content string) (string, error) {
	return withRetry(ctx, m, "document create", func(ctx context.Context) (string, error) {
		return m.store.CreateDocument(ctx, parentID, title, content)
	})
}

func (m *Mutator) ReplaceContent(ctx context.Context, docID, content string) error {
	_, err := withRetry(ctx, m, "document replace", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, m.store.ReplaceContent(ctx, docID, content)
	})
	return err
}

func (m *Mutator) DeleteNode(ctx context.Context, id string) error {
	_, err := withRetry(ctx, m, "node delete", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, m.store.DeleteNode(ctx, id)
	})
	return err
}

func (m *Mutator) ListFolder(ctx context.Context, id string) ([]docstore.NodeRef, error) {
	return withRetry(ctx, m, "folder list", func(ctx context.Context) ([]docstore.NodeRef, error) {
		return m.store.ListFolder(ctx, id)
	})
}

func withRetry[T any](ctx context.Context, m *Mutator, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < m.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := m.backoff.Delay(attempt - 1)
			slog.Debug("retrying", "op", op, "attempt", attempt, "max", m.maxAttempts-1, "in", delay)
			if err := sleep(ctx, delay); err != nil {
				return zero, err
			}
		}

		if err := m.limiter.Wait(ctx); err != nil {
			return zero, err
		}

		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		if !docstore.IsTransient(err) {
			return zero, err
		}
		lastErr = err
	}

	return zero, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
