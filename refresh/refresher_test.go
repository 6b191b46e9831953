package refresh

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/exchbot/storage/mock"
	"github.com/sig-0/exchbot/storage/types"
)

const operatorID = int64(42)

// newTestProvider creates a mock provider quoting for the given platform
func newTestProvider(platform string, fetchFn fetchDelegate) *mockProvider {
	return &mockProvider{
		nameFn: func() string {
			return platform + " provider"
		},
		platformFn: func() string {
			return platform
		},
		fetchFn: fetchFn,
	}
}

func TestRefresher_Register(t *testing.T) {
	t.Parallel()

	t.Run("nil provider", func(t *testing.T) {
		t.Parallel()

		r := New(&mock.Storage{}, operatorID)

		assert.ErrorIs(t, r.Register(nil), errInvalidProvider)
	})

	t.Run("empty name", func(t *testing.T) {
		t.Parallel()

		var (
			r = New(&mock.Storage{}, operatorID)

			p = &mockProvider{
				platformFn: func() string {
					return "Mosca"
				},
			}
		)

		assert.ErrorIs(t, r.Register(p), errInvalidProvider)
	})

	t.Run("empty platform", func(t *testing.T) {
		t.Parallel()

		var (
			r = New(&mock.Storage{}, operatorID)

			p = &mockProvider{
				nameFn: func() string {
					return "Mosca provider"
				},
			}
		)

		assert.ErrorIs(t, r.Register(p), errInvalidProvider)
	})

	t.Run("valid provider", func(t *testing.T) {
		t.Parallel()

		r := New(&mock.Storage{}, operatorID)

		require.NoError(t, r.Register(newTestProvider("Mosca", nil)))

		assert.Len(t, r.providers, 1)
	})
}

func TestRefresher_Refresh(t *testing.T) {
	t.Parallel()

	t.Run("permission denied", func(t *testing.T) {
		t.Parallel()

		var saveCalled bool

		store := &mock.Storage{
			SaveQuoteFn: func(_ context.Context, _ *types.Quote) error {
				saveCalled = true

				return nil
			},
		}

		r := New(store, operatorID)

		require.NoError(t, r.Register(newTestProvider(
			"Mosca",
			func(_ context.Context) (*types.Quote, error) {
				return &types.Quote{Platform: "Mosca", USDT: 90.0}, nil
			},
		)))

		report, err := r.Refresh(context.Background(), operatorID+1)

		assert.Nil(t, report)
		assert.ErrorIs(t, err, ErrPermissionDenied)

		// Denied callers cause no side effects
		assert.False(t, saveCalled)
	})

	t.Run("all providers healthy", func(t *testing.T) {
		t.Parallel()

		var (
			savedMux sync.Mutex
			saved    = make(map[string]types.Quote)
		)

		store := &mock.Storage{
			SaveQuoteFn: func(_ context.Context, q *types.Quote) error {
				savedMux.Lock()
				saved[q.Platform] = *q
				savedMux.Unlock()

				return nil
			},
		}

		r := New(store, operatorID)

		require.NoError(t, r.Register(newTestProvider(
			"Mosca",
			func(_ context.Context) (*types.Quote, error) {
				return &types.Quote{Platform: "Mosca", USDT: 90.0, BTC: 6000000.0}, nil
			},
		)))

		require.NoError(t, r.Register(newTestProvider(
			"Abcex",
			func(_ context.Context) (*types.Quote, error) {
				return &types.Quote{Platform: "Abcex", USDT: 93.2, BTC: 6700000.0}, nil
			},
		)))

		report, err := r.Refresh(context.Background(), operatorID)
		require.NoError(t, err)

		assert.Equal(t, []string{"Abcex", "Mosca"}, report.Updated)
		assert.Empty(t, report.Degraded)
		assert.Empty(t, report.Failed)

		assert.Equal(t, 90.0, saved["Mosca"].USDT)
		assert.Equal(t, 93.2, saved["Abcex"].USDT)
	})

	t.Run("one provider down", func(t *testing.T) {
		t.Parallel()

		var (
			savedMux sync.Mutex
			saved    = make(map[string]types.Quote)
		)

		store := &mock.Storage{
			SaveQuoteFn: func(_ context.Context, q *types.Quote) error {
				savedMux.Lock()
				saved[q.Platform] = *q
				savedMux.Unlock()

				return nil
			},
		}

		r := New(store, operatorID)

		require.NoError(t, r.Register(newTestProvider(
			"Mosca",
			func(_ context.Context) (*types.Quote, error) {
				return nil, errors.New("connection timed out")
			},
		)))

		require.NoError(t, r.Register(newTestProvider(
			"Abcex",
			func(_ context.Context) (*types.Quote, error) {
				return &types.Quote{Platform: "Abcex", USDT: 93.2, BTC: 6700000.0}, nil
			},
		)))

		report, err := r.Refresh(context.Background(), operatorID)
		require.NoError(t, err)

		// The degraded platform is still written, as a zero row
		assert.Equal(t, []string{"Abcex", "Mosca"}, report.Updated)
		assert.Equal(t, []string{"Mosca"}, report.Degraded)
		assert.Empty(t, report.Failed)

		assert.Equal(t, types.Quote{Platform: "Mosca"}, saved["Mosca"])
		assert.Equal(t, 93.2, saved["Abcex"].USDT)
	})

	t.Run("storage failure for one platform", func(t *testing.T) {
		t.Parallel()

		var (
			savedMux sync.Mutex
			saved    = make(map[string]types.Quote)
		)

		store := &mock.Storage{
			SaveQuoteFn: func(_ context.Context, q *types.Quote) error {
				if q.Platform == "Mosca" {
					return errors.New("connection lost")
				}

				savedMux.Lock()
				saved[q.Platform] = *q
				savedMux.Unlock()

				return nil
			},
		}

		r := New(store, operatorID)

		require.NoError(t, r.Register(newTestProvider(
			"Mosca",
			func(_ context.Context) (*types.Quote, error) {
				return &types.Quote{Platform: "Mosca", USDT: 90.0}, nil
			},
		)))

		require.NoError(t, r.Register(newTestProvider(
			"Abcex",
			func(_ context.Context) (*types.Quote, error) {
				return &types.Quote{Platform: "Abcex", USDT: 93.2}, nil
			},
		)))

		report, err := r.Refresh(context.Background(), operatorID)
		require.NoError(t, err)

		assert.Equal(t, []string{"Abcex"}, report.Updated)
		assert.Equal(t, []string{"Mosca"}, report.Failed)

		assert.Equal(t, 93.2, saved["Abcex"].USDT)
	})
}

func TestScheduler(t *testing.T) {
	t.Parallel()

	t.Run("invalid interval", func(t *testing.T) {
		t.Parallel()

		s, err := NewScheduler(New(&mock.Storage{}, operatorID), 0)

		assert.Nil(t, s)
		assert.ErrorIs(t, err, errInvalidInterval)
	})

	t.Run("boot cycle runs", func(t *testing.T) {
		t.Parallel()

		var (
			saveDone = make(chan struct{})
			saveOnce sync.Once
			errCh    = make(chan error, 1)
		)

		store := &mock.Storage{
			SaveQuoteFn: func(_ context.Context, _ *types.Quote) error {
				saveOnce.Do(func() {
					close(saveDone)
				})

				return nil
			},
		}

		r := New(store, operatorID)

		require.NoError(t, r.Register(newTestProvider(
			"Mosca",
			func(_ context.Context) (*types.Quote, error) {
				return &types.Quote{Platform: "Mosca", USDT: 90.0}, nil
			},
		)))

		s, err := NewScheduler(r, time.Hour)
		require.NoError(t, err)

		s.queryInterval = time.Millisecond * 10

		ctx, cancel := context.WithCancel(context.Background())

		go func() {
			errCh <- s.Start(ctx)
		}()

		select {
		case <-saveDone:
			// Success
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for boot cycle")
		}

		cancel()
		require.NoError(t, <-errCh)
	})
}
