package encryption

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuture_Go(t *testing.T) {
	f := Go(context.Background(), "test", func() (int, error) {
		return 42, nil
	})

	val, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, val)
	assert.NotEmpty(t, f.ID())

	// Result is stable across repeated reads
	val, err = f.Get()
	require.NoError(t, err)
	assert.Equal(t, 42, val)
}

func TestFuture_Error(t *testing.T) {
	f := Go(context.Background(), "test", func() ([]byte, error) {
		return nil, NewError("test", ErrDecryptionFailure, "boom")
	})

	_, err := f.Get()
	assert.ErrorIs(t, err, ErrDecryptionFailure)
}

func TestFuture_CompletedAndFailed(t *testing.T) {
	c := Completed("done")
	select {
	case <-c.Done():
	default:
		t.Fatal("completed future must be done immediately")
	}
	v, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, "done", v)

	sentinel := errors.New("nope")
	_, err = Failed[string](sentinel).Get()
	assert.Equal(t, sentinel, err)
}

func TestFuture_ContextAlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	f := Go(ctx, "test", func() (int, error) {
		ran = true
		return 1, nil
	})

	_, err := f.Get()
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
}

func TestFuture_AbandonedAwaitDoesNotStopWork(t *testing.T) {
	release := make(chan struct{})
	f := Go(context.Background(), "test", func() (int, error) {
		<-release
		return 7, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	val, err := f.Get()
	require.NoError(t, err)
	assert.Equal(t, 7, val)
}

func TestFuture_ConcurrentAwait(t *testing.T) {
	f := Go(context.Background(), "test", func() (int, error) {
		return 99, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := f.Get()
			assert.NoError(t, err)
			assert.Equal(t, 99, v)
		}()
	}
	wg.Wait()
}
