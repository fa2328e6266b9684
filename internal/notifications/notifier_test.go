package notifications

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestNotifierNilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishUser(context.Background(), 1, "payload"))
	assert.NoError(t, n.StartPatternSubscriber(context.Background(), func(string, string) {
		t.Fatal("no messages expected without Redis")
	}))
}

func TestNotifierPublishReachesSubscriber(t *testing.T) {
	rdb := newTestRedis(t)
	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type message struct {
		channel string
		payload string
	}
	received := make(chan message, 16)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(channel, payload string) {
		received <- message{channel: channel, payload: payload}
	}))

	// PSubscribe needs a moment to attach, so retry the publish.
	var got message
	require.Eventually(t, func() bool {
		require.NoError(t, n.PublishUser(context.Background(), 42, `{"kind":"proof_submitted"}`))
		select {
		case got = <-received:
			return true
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "notifications:user:42", got.channel)
	assert.Equal(t, `{"kind":"proof_submitted"}`, got.payload)
}

func TestNotifierSubscriberStopsOnCancel(t *testing.T) {
	rdb := newTestRedis(t)
	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())

	var received int32
	require.NoError(t, n.StartPatternSubscriber(ctx, func(string, string) {
		atomic.AddInt32(&received, 1)
	}))

	require.Eventually(t, func() bool {
		require.NoError(t, n.PublishUser(context.Background(), 7, "before-cancel"))
		return atomic.LoadInt32(&received) >= 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	time.Sleep(20 * time.Millisecond)
	before := atomic.LoadInt32(&received)

	require.NoError(t, n.PublishUser(context.Background(), 7, "after-cancel"))
	assert.Never(t, func() bool {
		return atomic.LoadInt32(&received) > before
	}, 200*time.Millisecond, 10*time.Millisecond)
}
