package lock

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestKeyLockSerializesProperty checks that concurrent read-modify-write
// sequences on one key produce the same result as running them sequentially.
func TestKeyLockSerializesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := rapid.IntRange(0, 1000).Draw(t, "initial")
		deltas := rapid.SliceOfN(rapid.IntRange(-50, 50), 2, 30).Draw(t, "deltas")
		key := rapid.StringMatching(`[a-f0-9]{8}`).Draw(t, "key")

		expected := initial
		for _, d := range deltas {
			expected += d
		}

		kl := NewKeyLock()
		value := initial

		var wg sync.WaitGroup
		wg.Add(len(deltas))
		for _, d := range deltas {
			go func(delta int) {
				defer wg.Done()
				_ = kl.WithLock(key, func() error {
					current := value
					value = current + delta
					return nil
				})
			}(d)
		}
		wg.Wait()

		if value != expected {
			t.Fatalf("value mismatch: expected %d, got %d", expected, value)
		}
		if kl.Len() != 0 {
			t.Fatalf("expected no lock entries after release, got %d", kl.Len())
		}
	})
}

// TestIndependentKeysProperty checks that several keys each stay consistent
// when their operations interleave.
func TestIndependentKeysProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numKeys := rapid.IntRange(2, 10).Draw(t, "numKeys")
		opsPerKey := rapid.IntRange(5, 20).Draw(t, "opsPerKey")

		kl := NewKeyLock()
		counters := make(map[string]*int, numKeys)
		for i := 0; i < numKeys; i++ {
			n := 0
			counters[fmt.Sprintf("session-%d", i)] = &n
		}

		var wg sync.WaitGroup
		for key, counter := range counters {
			for j := 0; j < opsPerKey; j++ {
				wg.Add(1)
				go func(key string, counter *int) {
					defer wg.Done()
					kl.Lock(key)
					defer kl.Unlock(key)
					*counter++
				}(key, counter)
			}
		}
		wg.Wait()

		for key, counter := range counters {
			if *counter != opsPerKey {
				t.Fatalf("key %s: expected %d, got %d", key, opsPerKey, *counter)
			}
		}
	})
}

func TestUnlock_NotHeldIsNoop(t *testing.T) {
	kl := NewKeyLock()
	kl.Unlock("missing")
	assert.Equal(t, 0, kl.Len())
}

func TestLockContext_CanceledWhileWaiting(t *testing.T) {
	kl := NewKeyLock()
	kl.Lock("game")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := kl.LockContext(ctx, "game")
	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	kl.Unlock("game")
	assert.Equal(t, 0, kl.Len(), "a canceled waiter must not leak its entry")
}

func TestWithLockContext_RunsWhenAvailable(t *testing.T) {
	kl := NewKeyLock()

	ran := false
	err := kl.WithLockContext(context.Background(), "game", func() error {
		ran = true
		assert.Equal(t, 1, kl.Len())
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 0, kl.Len())
}

func TestWithLock_PropagatesError(t *testing.T) {
	kl := NewKeyLock()
	sentinel := fmt.Errorf("boom")

	err := kl.WithLock("k", func() error { return sentinel })
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 0, kl.Len())
}
