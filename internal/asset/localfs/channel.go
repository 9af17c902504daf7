package localfs

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/stagelink-labs/stagelink/internal/asset"
)

// channelRecord is the on-disk form of one channel event: a JSON line
// appended to the channel file. Appends are atomic enough for same-host
// collaborators, which is all the localfs backend promises.
type channelRecord struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	From    string    `json:"from"`
	Payload []byte    `json:"payload,omitempty"`
	SentAt  time.Time `json:"sent_at"`
}

// channel tails a channel file and appends this client's own traffic.
type channel struct {
	client *Client
	path   string

	events chan asset.ChannelEvent
	cancel context.CancelFunc

	mu     sync.Mutex
	offset int64
	closed bool
}

// JoinChannel implements asset.Client. Joining announces the member on
// the channel; events from all participants, this one included, are
// delivered until Leave.
func (c *Client) JoinChannel(ctx context.Context, url string) (asset.Channel, error) {
	path, err := c.resolve(url)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("join %s: %w", url, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch channel %s: %w", url, err)
	}

	chCtx, cancel := context.WithCancel(ctx)
	ch := &channel{
		client: c,
		path:   path,
		events: make(chan asset.ChannelEvent, 16),
		cancel: cancel,
	}

	// Start reading after the current contents so members only see
	// traffic from their join onward.
	if info, err := os.Stat(path); err == nil {
		ch.offset = info.Size()
	}

	if err := ch.append(channelRecord{Type: asset.ChannelJoin.String(), From: c.username}); err != nil {
		cancel()
		_ = watcher.Close()
		return nil, err
	}

	go ch.tail(chCtx, watcher)
	return ch, nil
}

// Events implements asset.Channel.
func (ch *channel) Events() <-chan asset.ChannelEvent { return ch.events }

// Send implements asset.Channel.
func (ch *channel) Send(_ context.Context, payload []byte) error {
	ch.mu.Lock()
	closed := ch.closed
	ch.mu.Unlock()
	if closed {
		return asset.ErrChannelClosed
	}
	return ch.append(channelRecord{
		Type:    asset.ChannelMessage.String(),
		From:    ch.client.username,
		Payload: payload,
	})
}

// Leave implements asset.Channel.
func (ch *channel) Leave() error {
	ch.mu.Lock()
	if ch.closed {
		ch.mu.Unlock()
		return nil
	}
	ch.closed = true
	ch.mu.Unlock()

	err := ch.append(channelRecord{Type: asset.ChannelLeft.String(), From: ch.client.username})
	ch.cancel()
	return err
}

func (ch *channel) append(rec channelRecord) error {
	rec.ID = uuid.NewString()
	rec.SentAt = time.Now().UTC()

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode channel event: %w", err)
	}
	line = append(line, '\n')

	f, err := os.OpenFile(ch.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write channel event: %w", err)
	}
	return f.Close()
}

// tail forwards new channel records as they are appended.
func (ch *channel) tail(ctx context.Context, watcher *fsnotify.Watcher) {
	defer close(ch.events)
	defer func() { _ = watcher.Close() }()

	// The join record written above is already on disk, deliver it.
	ch.drain(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Name != ch.path || !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
				continue
			}
			if !ch.drain(ctx) {
				return
			}
		case _, ok := <-watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// drain reads records appended since the last offset and delivers them.
// Returns false when the context is cancelled mid-delivery.
func (ch *channel) drain(ctx context.Context) bool {
	ch.mu.Lock()
	offset := ch.offset
	ch.mu.Unlock()

	f, err := os.Open(ch.path)
	if err != nil {
		return true
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Seek(offset, 0); err != nil {
		return true
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	read := offset
	for scanner.Scan() {
		line := scanner.Bytes()
		read += int64(len(line)) + 1

		var rec channelRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		event := asset.ChannelEvent{
			ID:      rec.ID,
			From:    rec.From,
			Payload: rec.Payload,
			SentAt:  rec.SentAt,
		}
		switch rec.Type {
		case asset.ChannelJoin.String():
			event.Type = asset.ChannelJoin
		case asset.ChannelLeft.String():
			event.Type = asset.ChannelLeft
		default:
			event.Type = asset.ChannelMessage
		}

		select {
		case ch.events <- event:
		case <-ctx.Done():
			return false
		}
	}

	ch.mu.Lock()
	if read > ch.offset {
		ch.offset = read
	}
	ch.mu.Unlock()
	return true
}
