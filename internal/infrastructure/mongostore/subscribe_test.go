package mongostore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	repo "github.com/oksasatya/vendor-directory/internal/domain/repository"
)

// recordingFeed keeps the callback so tests can fire changes by hand.
type recordingFeed struct {
	mu      sync.Mutex
	calls   *[]string
	fn      func()
	dropped bool
}

func (f *recordingFeed) Publish(context.Context, string) error { return nil }

func (f *recordingFeed) Subscribe(_ context.Context, col string, fn func()) (repo.Unsubscribe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	*f.calls = append(*f.calls, "subscribe "+col)
	f.fn = fn
	return func() {
		f.mu.Lock()
		f.dropped = true
		f.mu.Unlock()
	}, nil
}

func TestSubscribe_JoinsFeedBeforeLoading(t *testing.T) {
	var calls []string
	feed := &recordingFeed{calls: &calls}
	version := 0
	load := func(context.Context) (int, error) {
		calls = append(calls, "load")
		version++
		return version, nil
	}
	var got []int
	unsub, err := subscribe(context.Background(), feed, nil, repo.ColVendors, load, func(v int) { got = append(got, v) })
	require.NoError(t, err)
	defer unsub()

	assert.Equal(t, []string{"subscribe " + repo.ColVendors, "load"}, calls)
	assert.Equal(t, []int{1}, got)

	feed.fn()
	assert.Equal(t, []int{1, 2}, got)
}

func TestSubscribe_ChangeDuringFirstLoadIsNotLost(t *testing.T) {
	var calls []string
	feed := &recordingFeed{calls: &calls}
	fired := make(chan struct{})
	stored := 1
	first := true
	load := func(context.Context) (int, error) {
		if first {
			first = false
			v := stored
			// a write lands while the first snapshot is in flight
			stored = 2
			go func() {
				feed.fn()
				close(fired)
			}()
			return v, nil
		}
		return stored, nil
	}

	var mu sync.Mutex
	var got []int
	unsub, err := subscribe(context.Background(), feed, nil, repo.ColUsers, load, func(v int) {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer unsub()
	<-fired

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2}, got, "the reload runs after the first emit")
}

func TestSubscribe_LoadErrorLeavesTheFeed(t *testing.T) {
	var calls []string
	feed := &recordingFeed{calls: &calls}
	boom := errors.New("mongo down")

	_, err := subscribe(context.Background(), feed, nil, repo.ColBanned, func(context.Context) ([]string, error) {
		return nil, boom
	}, func([]string) { t.Fatal("nothing to emit") })
	assert.ErrorIs(t, err, boom)
	assert.True(t, feed.dropped)

	_, err = subscribe(context.Background(), nil, nil, repo.ColBanned, func(context.Context) ([]string, error) {
		return nil, nil
	}, func([]string) {})
	assert.ErrorIs(t, err, errNoFeed)
}
