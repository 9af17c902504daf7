package localfs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagelink-labs/stagelink/internal/asset"
)

func collectEvent(t *testing.T, events <-chan asset.Event) asset.Event {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "event channel closed early")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return asset.Event{}
	}
}

func TestSubscribeSeesWrites(t *testing.T) {
	c := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	url := "stage://localhost/Projects/live/session.live"
	events, err := c.Subscribe(ctx, url)
	require.NoError(t, err)

	require.NoError(t, c.WriteFile(ctx, url, []byte("v1"), ""))

	ev := collectEvent(t, events)
	assert.Equal(t, url, ev.URL)
	assert.Contains(t, []asset.EventOp{asset.OpCreated, asset.OpModified}, ev.Op)
}

func TestSubscribeIgnoresSiblings(t *testing.T) {
	c := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	url := "stage://localhost/Projects/watch/target.live"
	events, err := c.Subscribe(ctx, url)
	require.NoError(t, err)

	require.NoError(t, c.WriteFile(ctx, "stage://localhost/Projects/watch/other.live", []byte("x"), ""))
	require.NoError(t, c.WriteFile(ctx, url, []byte("v1"), ""))

	ev := collectEvent(t, events)
	assert.Equal(t, url, ev.URL)
}

func TestSubscribeStopsOnCancel(t *testing.T) {
	c := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())

	events, err := c.Subscribe(ctx, "stage://localhost/Projects/cancel/target.live")
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok, "channel should close after cancel")
	case <-time.After(5 * time.Second):
		t.Fatal("event channel did not close after cancel")
	}
}
