package transport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscriber struct {
	messages chan *redis.Message
	err      error
	closed   chan struct{}
	channel  string
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{messages: make(chan *redis.Message, 4), closed: make(chan struct{})}
}

func (f *fakeSubscriber) Subscribe(ctx context.Context, channel string) (<-chan *redis.Message, func() error, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	f.channel = channel
	return f.messages, func() error { close(f.closed); return nil }, nil
}

func TestRedisReloader_Start(t *testing.T) {
	sub := newFakeSubscriber()
	reloader := &MockEngineReloader{}
	r := NewRedisReloader(sub, "simulator:reload", reloader)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.Start(ctx) }()

	sub.messages <- &redis.Message{Channel: "simulator:reload", Payload: "v2"}
	sub.messages <- &redis.Message{Channel: "simulator:reload", Payload: "v3"}

	assert.Eventually(t, func() bool { return reloader.ReloadCount() == 2 }, time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-errCh)
	assert.Equal(t, "simulator:reload", sub.channel)

	select {
	case <-sub.closed:
	case <-time.After(time.Second):
		t.Fatal("assinatura não foi encerrada")
	}
}

func TestRedisReloader_ReloadErrorKeepsListening(t *testing.T) {
	sub := newFakeSubscriber()
	reloader := &MockEngineReloader{Err: errors.New("falhou")}
	r := NewRedisReloader(sub, "ch", reloader)

	errCh := make(chan error, 1)
	go func() { errCh <- r.Start(context.Background()) }()

	sub.messages <- &redis.Message{Payload: "a"}
	sub.messages <- &redis.Message{Payload: "b"}
	assert.Eventually(t, func() bool { return reloader.ReloadCount() == 2 }, time.Second, 10*time.Millisecond)

	// Canal encerrado finaliza o loop
	close(sub.messages)
	require.NoError(t, <-errCh)
}

func TestRedisReloader_SubscribeError(t *testing.T) {
	sub := newFakeSubscriber()
	sub.err = errors.New("connection refused")

	err := NewRedisReloader(sub, "ch", &MockEngineReloader{}).Start(context.Background())
	assert.ErrorContains(t, err, "connection refused")
}

func TestRedisReloader_NoChannel(t *testing.T) {
	sub := newFakeSubscriber()
	require.NoError(t, NewRedisReloader(sub, "", &MockEngineReloader{}).Start(context.Background()))
	assert.Empty(t, sub.channel)
}
