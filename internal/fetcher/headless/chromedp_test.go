package headless

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sitescribe/sitescribe/internal/scribe"
)

func TestNewChromedpDefaults(t *testing.T) {
	t.Parallel()

	fetcher, err := NewChromedp(Config{}, zap.NewNop())
	require.NoError(t, err)
	defer fetcher.Close()

	assert.Equal(t, 45*time.Second, fetcher.cfg.NavigationTimeout)
}

func TestNewChromedpRejectsNegativeQPS(t *testing.T) {
	t.Parallel()

	_, err := NewChromedp(Config{HostQPS: -1}, zap.NewNop())
	assert.Error(t, err)
}

func TestWaitHostBudget(t *testing.T) {
	t.Parallel()

	t.Run("DisabledLimit", func(t *testing.T) {
		t.Parallel()
		fetcher, err := NewChromedp(Config{}, zap.NewNop())
		require.NoError(t, err)
		defer fetcher.Close()

		// Many calls, no limiter, no waiting.
		for i := 0; i < 100; i++ {
			require.NoError(t, fetcher.waitHostBudget(context.Background(), "https://example.com/"))
		}
	})

	t.Run("ThrottlesPerHost", func(t *testing.T) {
		t.Parallel()
		fetcher, err := NewChromedp(Config{HostQPS: 20}, zap.NewNop())
		require.NoError(t, err)
		defer fetcher.Close()

		start := time.Now()
		for i := 0; i < 4; i++ {
			require.NoError(t, fetcher.waitHostBudget(context.Background(), "https://example.com/page"))
		}
		// Burst of 1 at 20 QPS: three waits of ~50ms each.
		assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("SeparateHostsSeparateBudgets", func(t *testing.T) {
		t.Parallel()
		fetcher, err := NewChromedp(Config{HostQPS: 1}, zap.NewNop())
		require.NoError(t, err)
		defer fetcher.Close()

		start := time.Now()
		require.NoError(t, fetcher.waitHostBudget(context.Background(), "https://a.example.com/"))
		require.NoError(t, fetcher.waitHostBudget(context.Background(), "https://b.example.com/"))
		assert.Less(t, time.Since(start), 500*time.Millisecond)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		t.Parallel()
		fetcher, err := NewChromedp(Config{HostQPS: 0.001}, zap.NewNop())
		require.NoError(t, err)
		defer fetcher.Close()

		ctx, cancel := context.WithCancel(context.Background())
		require.NoError(t, fetcher.waitHostBudget(ctx, "https://example.com/"))
		cancel()
		assert.Error(t, fetcher.waitHostBudget(ctx, "https://example.com/"))
	})
}

func TestNoopFetch(t *testing.T) {
	t.Parallel()

	_, err := NewNoop().Fetch(context.Background(), scribe.FetchRequest{URL: "https://example.com/"})
	assert.Error(t, err)
}
