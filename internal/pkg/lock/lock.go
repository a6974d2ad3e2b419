// Package lock provides keyed mutual exclusion.
// A KeyLock serializes work that shares a key while unrelated keys proceed in parallel.
package lock

import (
	"context"
	"fmt"
	"sync"
)

// keyMutex is a channel-backed mutex with reference counting for cleanup.
// refCount counts holders plus waiters and is guarded by KeyLock.mu.
type keyMutex struct {
	sem      chan struct{}
	refCount int
}

// KeyLock provides per-key locking. Entries are created on first use and
// removed once no goroutine holds or waits for the key.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*keyMutex
}

// NewKeyLock creates a new KeyLock instance.
func NewKeyLock() *KeyLock {
	return &KeyLock{
		locks: make(map[string]*keyMutex),
	}
}

// acquire registers interest in key and returns its mutex.
func (kl *KeyLock) acquire(key string) *keyMutex {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	km, ok := kl.locks[key]
	if !ok {
		km = &keyMutex{sem: make(chan struct{}, 1)}
		kl.locks[key] = km
	}
	km.refCount++
	return km
}

// release drops interest in key, removing the entry when unused.
func (kl *KeyLock) release(key string, km *keyMutex) {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	km.refCount--
	if km.refCount == 0 {
		delete(kl.locks, key)
	}
}

// Lock acquires the lock for key, blocking until it is available.
func (kl *KeyLock) Lock(key string) {
	km := kl.acquire(key)
	km.sem <- struct{}{}
}

// LockContext acquires the lock for key or gives up when ctx is done.
func (kl *KeyLock) LockContext(ctx context.Context, key string) error {
	km := kl.acquire(key)
	select {
	case km.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		kl.release(key, km)
		return fmt.Errorf("%w: %w", ErrLockTimeout, ctx.Err())
	}
}

// Unlock releases the lock for key. Unlocking a key that is not held is a no-op.
func (kl *KeyLock) Unlock(key string) {
	kl.mu.Lock()
	km, ok := kl.locks[key]
	kl.mu.Unlock()
	if !ok {
		return
	}

	select {
	case <-km.sem:
		kl.release(key, km)
	default:
	}
}

// WithLock executes fn while holding the lock for key.
func (kl *KeyLock) WithLock(key string, fn func() error) error {
	kl.Lock(key)
	defer kl.Unlock(key)
	return fn()
}

// WithLockContext executes fn while holding the lock for key.
// It returns ErrLockTimeout without running fn if ctx ends first.
func (kl *KeyLock) WithLockContext(ctx context.Context, key string, fn func() error) error {
	if err := kl.LockContext(ctx, key); err != nil {
		return err
	}
	defer kl.Unlock(key)
	return fn()
}

// Len returns the number of keys currently held or awaited.
func (kl *KeyLock) Len() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.locks)
}
