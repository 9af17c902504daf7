// Package asset defines the client API the samples use to talk to an
// asset-collaboration hub: file operations on stage:// URLs, checkpoints,
// change notifications and live message channels. Backends are pluggable;
// the shipped implementation (localfs) maps hub hosts onto local
// directories, since reproducing the proprietary wire protocol is a
// non-goal.
package asset

import (
	"context"
	"time"
)

// Entry describes a file or folder on the hub.
type Entry struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	IsDir   bool      `json:"is_dir"`
}

// ServerInfo describes the hub endpoint a URL resolves to.
type ServerInfo struct {
	Username string `json:"username"`
	Version  string `json:"version"`
}

// Checkpoint is a recorded save point for a file with its comment.
type Checkpoint struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// EventOp classifies a change notification.
type EventOp int

const (
	OpCreated EventOp = iota
	OpModified
	OpDeleted
)

func (op EventOp) String() string {
	switch op {
	case OpCreated:
		return "created"
	case OpModified:
		return "modified"
	case OpDeleted:
		return "deleted"
	}
	return "unknown"
}

// Event is a change notification for a watched URL.
type Event struct {
	URL string
	Op  EventOp
}

// ChannelEventType classifies live channel traffic.
type ChannelEventType int

const (
	ChannelJoin ChannelEventType = iota
	ChannelLeft
	ChannelMessage
)

func (t ChannelEventType) String() string {
	switch t {
	case ChannelJoin:
		return "join"
	case ChannelLeft:
		return "left"
	case ChannelMessage:
		return "message"
	}
	return "unknown"
}

// ChannelEvent is one message on a live session channel.
type ChannelEvent struct {
	ID      string
	Type    ChannelEventType
	From    string
	Payload []byte
	SentAt  time.Time
}

// Channel is a joined live message channel. Events delivers traffic from
// all participants, the sender included, until Leave or context
// cancellation.
type Channel interface {
	Events() <-chan ChannelEvent
	Send(ctx context.Context, payload []byte) error
	Leave() error
}

// ChannelSuffix is appended to a stage URL to name its message channel.
const ChannelSuffix = ".__channel__"

// Client is the hub connection the samples are written against.
type Client interface {
	// Stat returns the entry for a URL, or ErrNotFound.
	Stat(ctx context.Context, url string) (Entry, error)
	// List returns the entries of a folder sorted by name.
	List(ctx context.Context, url string) ([]Entry, error)
	// ReadFile returns the contents of a file.
	ReadFile(ctx context.Context, url string) ([]byte, error)
	// WriteFile replaces the contents of a file, creating parents as
	// needed. A non-empty comment records a checkpoint.
	WriteFile(ctx context.Context, url string, data []byte, comment string) error
	// Delete removes a file or folder recursively. Deleting a missing
	// URL returns ErrNotFound.
	Delete(ctx context.Context, url string) error
	// Copy copies a file or folder recursively, overwriting the
	// destination.
	Copy(ctx context.Context, src, dst string) error
	// Move moves a file or folder, overwriting the destination.
	Move(ctx context.Context, src, dst string) error
	// CreateFolder creates a folder; existing folders return
	// ErrAlreadyExists.
	CreateFolder(ctx context.Context, url string) error
	// ServerInfo reports the connected user for the URL's host.
	ServerInfo(ctx context.Context, url string) (ServerInfo, error)
	// Checkpoints returns the recorded checkpoints for a URL, newest
	// first.
	Checkpoints(ctx context.Context, url string) ([]Checkpoint, error)
	// Subscribe delivers change notifications for a URL until the
	// context is cancelled.
	Subscribe(ctx context.Context, url string) (<-chan Event, error)
	// JoinChannel joins the live message channel at the URL.
	JoinChannel(ctx context.Context, url string) (Channel, error)
	// Close releases the client's resources.
	Close() error
}
