package livesession

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagelink-labs/stagelink/internal/asset"
	"github.com/stagelink-labs/stagelink/internal/asset/localfs"
	"github.com/stagelink-labs/stagelink/internal/stage"
)

func writeTestStage(t *testing.T, client asset.Client, url string) {
	t.Helper()
	st := stage.New()
	world, err := st.DefinePrim("/World", stage.TypeXform)
	require.NoError(t, err)
	st.SetDefaultPrim(world)

	mesh, err := st.DefinePrim("/World/box_0", stage.TypeMesh)
	require.NoError(t, err)
	srt := stage.DefaultSRT()
	srt.Translate = stage.Vec3{0, 100, 0}
	mesh.SetSRT(srt)

	data, err := stage.Encode(st)
	require.NoError(t, err)
	require.NoError(t, client.WriteFile(context.Background(), url, data, ""))
}

func newSessionPair(t *testing.T) (*Session, *Session, asset.Client, string) {
	t.Helper()
	root := t.TempDir()
	alice, err := localfs.New(localfs.Config{Root: root, Username: "alice"})
	require.NoError(t, err)
	t.Cleanup(func() { alice.Close() })
	bob, err := localfs.New(localfs.Config{Root: root, Username: "bob"})
	require.NoError(t, err)
	t.Cleanup(func() { bob.Close() })

	url := "stage://localhost/Projects/live/scene.live"
	writeTestStage(t, alice, url)

	ctx := context.Background()
	sa, err := New(ctx, alice, nil, url, "")
	require.NoError(t, err)
	t.Cleanup(func() { sa.Close() })
	sb, err := New(ctx, bob, nil, url, "")
	require.NoError(t, err)
	t.Cleanup(func() { sb.Close() })

	return sa, sb, alice, url
}

func TestNewFindsFirstMesh(t *testing.T) {
	sa, _, _, _ := newSessionPair(t)
	assert.Equal(t, "/World/box_0", sa.PrimPath())
}

func TestNewMissingPrimErrors(t *testing.T) {
	root := t.TempDir()
	client, err := localfs.New(localfs.Config{Root: root, Username: "alice"})
	require.NoError(t, err)
	defer client.Close()

	url := "stage://localhost/Projects/live/scene.live"
	writeTestStage(t, client, url)

	_, err = New(context.Background(), client, nil, url, "/World/nope")
	assert.ErrorContains(t, err, "not found")
}

func TestTransformWalksTheCircle(t *testing.T) {
	sa, _, client, url := newSessionPair(t)
	ctx := context.Background()

	srt, err := sa.Transform(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, sa.Angle())

	radians := 15 * math.Pi / 180
	assert.InDelta(t, math.Sin(radians)*Radius, srt.Translate[0], 1e-9)
	assert.InDelta(t, 100, srt.Translate[1], 1e-9, "height is untouched")
	assert.InDelta(t, math.Cos(radians)*Radius, srt.Translate[2], 1e-9)
	assert.InDelta(t, 15, srt.RotateXYZ[1], 1e-9)

	// The save is visible to other clients.
	data, err := client.ReadFile(ctx, url)
	require.NoError(t, err)
	st, err := stage.Parse(data)
	require.NoError(t, err)
	saved := st.GetPrimAtPath("/World/box_0").GetSRT()
	assert.InDelta(t, srt.Translate[0], saved.Translate[0], 1e-9)

	// Steps accumulate; the angle wraps at 360.
	for range 23 {
		_, err = sa.Transform(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, sa.Angle())
}

func waitForEvent(t *testing.T, events <-chan asset.ChannelEvent, typ asset.ChannelEventType, from string) asset.ChannelEvent {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "channel closed while waiting for %s from %s", typ, from)
			if ev.Type == typ && ev.From == from {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s from %s", typ, from)
		}
	}
}

func TestMessagesReachOtherParticipants(t *testing.T) {
	sa, sb, _, _ := newSessionPair(t)
	ctx := context.Background()

	require.NoError(t, sa.SendMessage(ctx, "hello from alice"))
	ev := waitForEvent(t, sb.Events(), asset.ChannelMessage, "alice")
	assert.Equal(t, "hello from alice", string(ev.Payload))
}

func TestLeaveChannel(t *testing.T) {
	sa, sb, _, _ := newSessionPair(t)
	ctx := context.Background()

	require.NoError(t, sa.LeaveChannel())
	assert.Nil(t, sa.Events())
	assert.ErrorIs(t, sa.SendMessage(ctx, "too late"), asset.ErrChannelClosed)
	require.NoError(t, sa.LeaveChannel(), "leaving twice is fine")

	waitForEvent(t, sb.Events(), asset.ChannelLeft, "alice")

	// Transforms still work without the channel.
	_, err := sa.Transform(ctx)
	assert.NoError(t, err)
}
