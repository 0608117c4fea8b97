package redis_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisstore "github.com/kanvaslabs/kanvas/internal/store/redis"
)

func TestBoardChannel(t *testing.T) {
	t.Parallel()

	boardID := uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		got := redisstore.BoardChannel(boardID)
		assert.Equal(t, "board:aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee", got)
	})

	t.Run("prefix", func(t *testing.T) {
		t.Parallel()

		got := redisstore.BoardChannel(boardID)
		assert.True(t, strings.HasPrefix(got, "board:"), "expected prefix 'board:', got %q", got)
	})

	t.Run("different_boards_different_channels", func(t *testing.T) {
		t.Parallel()

		other := uuid.MustParse("11111111-2222-3333-4444-555555555555")
		assert.NotEqual(t, redisstore.BoardChannel(boardID), redisstore.BoardChannel(other))
	})
}

func TestPubSubRoundTrip(t *testing.T) {
	t.Parallel()

	srv, err := miniredis.Run()
	require.NoError(t, err)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ps, err := redisstore.New(ctx, srv.Addr(), "", 0)
	require.NoError(t, err)
	defer ps.Close()

	channel := redisstore.BoardChannel(uuid.New())

	messages, cleanup, err := ps.Subscribe(ctx, channel)
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, ps.Publish(ctx, channel, []byte(`{"event":"task_deleted","data":{"id":"x"}}`)))

	select {
	case msg := <-messages:
		assert.JSONEq(t, `{"event":"task_deleted","data":{"id":"x"}}`, string(msg))
	case <-ctx.Done():
		t.Fatal("timed out waiting for published message")
	}
}

func TestPubSubChannelIsolation(t *testing.T) {
	t.Parallel()

	srv, err := miniredis.Run()
	require.NoError(t, err)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ps, err := redisstore.New(ctx, srv.Addr(), "", 0)
	require.NoError(t, err)
	defer ps.Close()

	messages, cleanup, err := ps.Subscribe(ctx, redisstore.BoardChannel(uuid.New()))
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, ps.Publish(ctx, redisstore.BoardChannel(uuid.New()), []byte("other board")))

	select {
	case msg := <-messages:
		t.Fatalf("received message for a channel we never subscribed to: %s", msg)
	case <-time.After(200 * time.Millisecond):
	}
}
