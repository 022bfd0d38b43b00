package orchestrator

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Locker grants exclusive access to directory subtrees.
// Holding a path also covers everything below it, and a path conflicts with
// any held ancestor or descendant.
type Locker struct {
	mu   sync.Mutex
	held []string
	// wake is closed and replaced on every release.
	wake chan struct{}
}

// NewLocker creates an empty Locker.
func NewLocker() *Locker {
	return &Locker{wake: make(chan struct{})}
}

// Acquire blocks until none of paths overlaps a held subtree, then holds all
// of them at once. The returned release function is idempotent.
func (l *Locker) Acquire(ctx context.Context, paths ...string) (func(), error) {
	want := make([]string, 0, len(paths))
	for _, p := range paths {
		want = append(want, filepath.Clean(p))
	}

	for {
		l.mu.Lock()
		if !l.overlapsLocked(want) {
			l.held = append(l.held, want...)
			l.mu.Unlock()
			return sync.OnceFunc(func() { l.release(want) }), nil
		}
		wake := l.wake
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-wake:
		}
	}
}

func (l *Locker) release(paths []string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range paths {
		if i := slices.Index(l.held, p); i >= 0 {
			l.held = slices.Delete(l.held, i, i+1)
		}
	}
	close(l.wake)
	l.wake = make(chan struct{})
}

func (l *Locker) overlapsLocked(paths []string) bool {
	for _, p := range paths {
		for _, h := range l.held {
			if overlaps(p, h) {
				return true
			}
		}
	}
	return false
}

func overlaps(a, b string) bool {
	sep := string(filepath.Separator)
	return a == b || strings.HasPrefix(a, b+sep) || strings.HasPrefix(b, a+sep)
}
