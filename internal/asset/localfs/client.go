// Package localfs implements the asset client against a local workspace
// directory. Hub hosts map onto subdirectories of the workspace root, so
// stage://localhost/Users/alice resolves to <root>/localhost/Users/alice.
// Checkpoints are tracked in a SQLite database inside the workspace and
// change notifications ride on fsnotify.
package localfs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"strings"

	"github.com/stagelink-labs/stagelink/internal/asset"
)

// Version reported by ServerInfo.
const Version = "0.2.0"

// Config holds client configuration.
type Config struct {
	// Root is the workspace directory hub hosts are mapped into.
	Root string
	// Username overrides the reported hub user (defaults to the OS user).
	Username string
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Client is a local-workspace implementation of asset.Client.
type Client struct {
	root     string
	username string
	logger   *slog.Logger
	store    *checkpointStore
}

var _ asset.Client = (*Client)(nil)

// New creates a client rooted at cfg.Root, creating the workspace
// directory if needed.
func New(cfg Config) (*Client, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("workspace root is required")
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace root: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	username := cfg.Username
	if username == "" {
		if u, err := user.Current(); err == nil && u.Username != "" {
			username = u.Username
		} else {
			username = "anonymous"
		}
	}

	store, err := openCheckpointStore(filepath.Join(root, ".stagelink", "state.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint store: %w", err)
	}

	logger.Debug("localfs client ready", "root", root, "user", username)

	return &Client{
		root:     root,
		username: username,
		logger:   logger,
		store:    store,
	}, nil
}

// resolve maps a raw location onto a filesystem path.
func (c *Client) resolve(raw string) (string, error) {
	u, err := asset.ParseURL(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" {
		return filepath.FromSlash(u.Path), nil
	}
	rel := filepath.FromSlash(strings.TrimPrefix(u.Path, "/"))
	return filepath.Join(c.root, u.Host, rel), nil
}

// Stat implements asset.Client.
func (c *Client) Stat(_ context.Context, url string) (asset.Entry, error) {
	path, err := c.resolve(url)
	if err != nil {
		return asset.Entry{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return asset.Entry{}, fmt.Errorf("stat %s: %w", url, asset.ErrNotFound)
		}
		return asset.Entry{}, fmt.Errorf("stat %s: %w", url, err)
	}
	return entryFromInfo(info), nil
}

// List implements asset.Client.
func (c *Client) List(_ context.Context, url string) ([]asset.Entry, error) {
	path, err := c.resolve(url)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("list %s: %w", url, asset.ErrNotFound)
		}
		return nil, fmt.Errorf("list %s: %w", url, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("list %s: %w", url, asset.ErrNotAFolder)
	}

	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", url, err)
	}
	entries := make([]asset.Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		fi, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, entryFromInfo(fi))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// ReadFile implements asset.Client.
func (c *Client) ReadFile(_ context.Context, url string) ([]byte, error) {
	path, err := c.resolve(url)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", url, asset.ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return data, nil
}

// WriteFile implements asset.Client.
func (c *Client) WriteFile(_ context.Context, url string, data []byte, comment string) error {
	path, err := c.resolve(url)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("write %s: %w", url, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", url, err)
	}
	if comment != "" {
		if err := c.store.record(url, comment); err != nil {
			return fmt.Errorf("checkpoint %s: %w", url, err)
		}
		c.logger.Debug("checkpoint recorded", "url", url, "comment", comment)
	}
	return nil
}

// Delete implements asset.Client.
func (c *Client) Delete(_ context.Context, url string) error {
	path, err := c.resolve(url)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("delete %s: %w", url, asset.ErrNotFound)
		}
		return fmt.Errorf("delete %s: %w", url, err)
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("delete %s: %w", url, err)
	}
	return nil
}

// Copy implements asset.Client. The destination is overwritten.
func (c *Client) Copy(ctx context.Context, src, dst string) error {
	srcPath, err := c.resolve(src)
	if err != nil {
		return err
	}
	dstPath, err := c.resolve(dst)
	if err != nil {
		return err
	}
	info, err := os.Stat(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("copy %s: %w", src, asset.ErrNotFound)
		}
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if info.IsDir() {
		return copyTree(srcPath, dstPath)
	}
	return copyFile(srcPath, dstPath)
}

// Move implements asset.Client. The destination is overwritten.
func (c *Client) Move(ctx context.Context, src, dst string) error {
	srcPath, err := c.resolve(src)
	if err != nil {
		return err
	}
	dstPath, err := c.resolve(dst)
	if err != nil {
		return err
	}
	if _, err := os.Stat(srcPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("move %s: %w", src, asset.ErrNotFound)
		}
		return fmt.Errorf("move %s: %w", src, err)
	}
	if err := os.RemoveAll(dstPath); err != nil {
		return fmt.Errorf("move %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fmt.Errorf("move %s: %w", src, err)
	}
	if err := os.Rename(srcPath, dstPath); err == nil {
		return nil
	}
	// Rename can fail across filesystems; fall back to copy + delete.
	if err := c.Copy(ctx, src, dst); err != nil {
		return err
	}
	return c.Delete(ctx, src)
}

// CreateFolder implements asset.Client.
func (c *Client) CreateFolder(_ context.Context, url string) error {
	path, err := c.resolve(url)
	if err != nil {
		return err
	}
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return fmt.Errorf("create folder %s: %w", url, asset.ErrAlreadyExists)
		}
		return fmt.Errorf("create folder %s: %w", url, asset.ErrNotAFolder)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create folder %s: %w", url, err)
	}
	return nil
}

// ServerInfo implements asset.Client.
func (c *Client) ServerInfo(_ context.Context, url string) (asset.ServerInfo, error) {
	if _, err := asset.ParseURL(url); err != nil {
		return asset.ServerInfo{}, err
	}
	return asset.ServerInfo{Username: c.username, Version: Version}, nil
}

// Checkpoints implements asset.Client.
func (c *Client) Checkpoints(_ context.Context, url string) ([]asset.Checkpoint, error) {
	return c.store.list(url)
}

// Close implements asset.Client.
func (c *Client) Close() error {
	return c.store.close()
}

func entryFromInfo(info os.FileInfo) asset.Entry {
	return asset.Entry{
		Name:    info.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	return out.Close()
}

func copyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}
