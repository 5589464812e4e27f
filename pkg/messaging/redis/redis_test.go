package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unreachableBroker(t *testing.T) *RedisBroker {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	logger := zerolog.Nop()
	b := newBroker(client, &logger)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestNewRedisBrokerRejectsBadURL(t *testing.T) {
	logger := zerolog.Nop()
	_, err := NewRedisBroker(Config{URL: "not a url"}, &logger)
	assert.ErrorContains(t, err, "failed to parse Redis URL")
}

func TestPublishRejectsUnmarshalable(t *testing.T) {
	b := unreachableBroker(t)
	err := b.Publish(context.Background(), "ch", make(chan int))
	assert.ErrorContains(t, err, "failed to marshal message")
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b := unreachableBroker(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := b.Publish(ctx, "ch", map[string]string{"k": "v"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, gobreaker.ErrOpenState)
	}

	err := b.Publish(ctx, "ch", map[string]string{"k": "v"})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}
