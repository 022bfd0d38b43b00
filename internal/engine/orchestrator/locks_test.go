package orchestrator_test

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/verso/internal/engine/orchestrator"
)

func TestLocker_NestedPathsExclude(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		l := orchestrator.NewLocker()
		root := filepath.Join("out", "r31")

		release, err := l.Acquire(context.Background(), root)
		require.NoError(t, err)

		var acquired atomic.Bool
		go func() {
			rel, err := l.Acquire(context.Background(), filepath.Join(root, "android", "widget"))
			if err == nil {
				acquired.Store(true)
				rel()
			}
		}()

		synctest.Wait()
		assert.False(t, acquired.Load(), "descendant acquired while ancestor was held")

		release()
		synctest.Wait()
		assert.True(t, acquired.Load())
	})
}

func TestLocker_DisjointPathsDoNotBlock(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		l := orchestrator.NewLocker()

		releaseA, err := l.Acquire(context.Background(), filepath.Join("out", "r31"))
		require.NoError(t, err)
		defer releaseA()

		// A shared name prefix is not an ancestor.
		releaseB, err := l.Acquire(context.Background(), filepath.Join("out", "r31_1_0"), filepath.Join("out", "facade"))
		require.NoError(t, err)
		releaseB()
	})
}

func TestLocker_AcquiresAllOrNothing(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		l := orchestrator.NewLocker()

		releaseB, err := l.Acquire(context.Background(), "b")
		require.NoError(t, err)

		var acquired atomic.Bool
		go func() {
			rel, err := l.Acquire(context.Background(), "a", "b")
			if err == nil {
				acquired.Store(true)
				rel()
			}
		}()
		synctest.Wait()
		require.False(t, acquired.Load())

		// "a" is not held by the blocked waiter.
		releaseA, err := l.Acquire(context.Background(), "a")
		require.NoError(t, err)
		releaseA()

		releaseB()
		synctest.Wait()
		assert.True(t, acquired.Load())
	})
}

func TestLocker_ContextCanceledWhileWaiting(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		l := orchestrator.NewLocker()

		release, err := l.Acquire(context.Background(), "tree")
		require.NoError(t, err)
		defer release()

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		_, err = l.Acquire(ctx, "tree")
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestLocker_ReleaseIsIdempotent(t *testing.T) {
	l := orchestrator.NewLocker()

	release, err := l.Acquire(context.Background(), "tree")
	require.NoError(t, err)
	release()
	release()

	again, err := l.Acquire(context.Background(), "tree")
	require.NoError(t, err)
	again()
}
