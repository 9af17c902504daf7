package localfs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagelink-labs/stagelink/internal/asset"
)

func waitForChannelEvent(t *testing.T, ch asset.Channel, want asset.ChannelEventType, from string) asset.ChannelEvent {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch.Events():
			require.True(t, ok, "channel closed while waiting for %s from %s", want, from)
			if ev.Type == want && ev.From == from {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s from %s", want, from)
		}
	}
}

func TestChannelJoinAndMessage(t *testing.T) {
	root := t.TempDir()
	alice, err := New(Config{Root: root, Username: "alice"})
	require.NoError(t, err)
	defer func() { _ = alice.Close() }()
	bob, err := New(Config{Root: root, Username: "bob"})
	require.NoError(t, err)
	defer func() { _ = bob.Close() }()

	ctx := context.Background()
	url := "stage://localhost/Projects/live/session.live" + asset.ChannelSuffix

	chA, err := alice.JoinChannel(ctx, url)
	require.NoError(t, err)
	defer func() { _ = chA.Leave() }()

	// Alice sees her own join.
	waitForChannelEvent(t, chA, asset.ChannelJoin, "alice")

	chB, err := bob.JoinChannel(ctx, url)
	require.NoError(t, err)
	defer func() { _ = chB.Leave() }()

	// Alice sees bob join; bob sees his own join but not alice's
	// earlier one (members read from their join point onward).
	waitForChannelEvent(t, chA, asset.ChannelJoin, "bob")
	waitForChannelEvent(t, chB, asset.ChannelJoin, "bob")

	require.NoError(t, chB.Send(ctx, []byte("hello from bob")))
	ev := waitForChannelEvent(t, chA, asset.ChannelMessage, "bob")
	assert.Equal(t, "hello from bob", string(ev.Payload))
	assert.NotEmpty(t, ev.ID)
}

func TestChannelLeave(t *testing.T) {
	root := t.TempDir()
	alice, err := New(Config{Root: root, Username: "alice"})
	require.NoError(t, err)
	defer func() { _ = alice.Close() }()
	bob, err := New(Config{Root: root, Username: "bob"})
	require.NoError(t, err)
	defer func() { _ = bob.Close() }()

	ctx := context.Background()
	url := "stage://localhost/Projects/live/leave.live" + asset.ChannelSuffix

	chA, err := alice.JoinChannel(ctx, url)
	require.NoError(t, err)
	chB, err := bob.JoinChannel(ctx, url)
	require.NoError(t, err)
	defer func() { _ = chB.Leave() }()

	require.NoError(t, chA.Leave())
	waitForChannelEvent(t, chB, asset.ChannelLeft, "alice")

	// Sending after leave fails.
	err = chA.Send(ctx, []byte("too late"))
	assert.ErrorIs(t, err, asset.ErrChannelClosed)

	// Leave is idempotent.
	assert.NoError(t, chA.Leave())
}
