package async_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/async"
)

func TestAsync_Await(t *testing.T) {
	f := async.Async(context.Background(), 21, func(_ context.Context, n int) (int, error) {
		return n * 2, nil
	})

	got, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.True(t, f.IsComplete())
}

func TestAsync_Error(t *testing.T) {
	wantErr := errors.New("lookup failed")
	f := async.Async(context.Background(), "x", func(context.Context, string) (string, error) {
		return "", wantErr
	})

	_, err := f.Await()
	assert.ErrorIs(t, err, wantErr)
}

func TestAsync_PreCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := async.Async(ctx, 0, func(context.Context, int) (int, error) {
		t.Fatal("fn must not run with a pre-canceled context")
		return 0, nil
	})

	_, err := f.Await()
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWaitAll(t *testing.T) {
	ctx := context.Background()
	mk := func(v int, delay time.Duration) *async.Future[int] {
		return async.Async(ctx, v, func(_ context.Context, n int) (int, error) {
			time.Sleep(delay)
			return n, nil
		})
	}

	results, err := async.WaitAll(mk(1, 10*time.Millisecond), mk(2, 0), mk(3, 5*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, results)
}

func TestWaitAll_FirstError(t *testing.T) {
	ctx := context.Background()
	wantErr := errors.New("boom")

	ok := async.Async(ctx, 1, func(_ context.Context, n int) (int, error) { return n, nil })
	bad := async.Async(ctx, 0, func(context.Context, int) (int, error) { return 0, wantErr })

	_, err := async.WaitAll(ok, bad)
	assert.ErrorIs(t, err, wantErr)
}
