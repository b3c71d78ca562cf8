package artifacts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/singleflight"
)

const defaultLockRetry = 100 * time.Millisecond

// Locker provides per-slot mutual exclusion for check-then-act sequences.
// Every operation on a slot runs alone: in-process callers queue on a
// per-slot semaphore and other processes wait on a flock file named after
// the slot. Callers that arrive while the same operation is already running
// on the slot share its result.
type Locker struct {
	dir        string
	retryDelay time.Duration
	group      singleflight.Group

	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewLocker returns a locker that keeps lock files in dir. An empty dir
// disables cross-process locking.
func NewLocker(dir string) *Locker {
	return &Locker{dir: dir, retryDelay: defaultLockRetry, slots: map[string]chan struct{}{}}
}

// Do runs fn as operation op while holding the lock for slot. Different
// operations on one slot never share results; they run one after another.
func Do[T any](ctx context.Context, l *Locker, slot, op string, fn func(context.Context) (T, error)) (T, error) {
	if l == nil {
		return fn(ctx)
	}
	result, err, _ := l.group.Do(op+"\x00"+slot, func() (any, error) {
		unlock, err := l.acquire(ctx, slot)
		if err != nil {
			return nil, err
		}
		defer unlock()
		return fn(ctx)
	})
	var zero T
	if result == nil {
		return zero, err
	}
	value, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("lock %s: %s returned %T, want %T", filepath.Base(slot), op, result, zero)
	}
	return value, err
}

func (l *Locker) semaphore(slot string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.slots == nil {
		l.slots = map[string]chan struct{}{}
	}
	sem, ok := l.slots[slot]
	if !ok {
		sem = make(chan struct{}, 1)
		l.slots[slot] = sem
	}
	return sem
}

func (l *Locker) acquire(ctx context.Context, slot string) (func(), error) {
	sem := l.semaphore(slot)
	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("acquire lock %s: %w", filepath.Base(slot), ctx.Err())
	}
	release := func() { <-sem }

	if l.dir == "" {
		return release, nil
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		release()
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	lockPath := filepath.Join(l.dir, filepath.Base(slot)+".lock")
	fileLock := flock.New(lockPath)
	locked, err := fileLock.TryLockContext(ctx, l.retryDelay)
	if err != nil {
		release()
		return nil, fmt.Errorf("acquire lock %s: %w", filepath.Base(lockPath), err)
	}
	if !locked {
		release()
		return nil, fmt.Errorf("acquire lock %s: not acquired", filepath.Base(lockPath))
	}
	return func() {
		_ = fileLock.Unlock()
		release()
	}, nil
}
