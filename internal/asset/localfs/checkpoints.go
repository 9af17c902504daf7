package localfs

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/stagelink-labs/stagelink/internal/asset"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// checkpointStore persists save-point metadata in SQLite.
type checkpointStore struct {
	mu sync.Mutex
	db *sql.DB
}

func openCheckpointStore(path string) (*checkpointStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping checkpoint database: %w", err)
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &checkpointStore{db: db}, nil
}

func (s *checkpointStore) record(url, comment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO checkpoints (id, url, comment, created_at) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), url, comment, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to record checkpoint: %w", err)
	}
	return nil
}

func (s *checkpointStore) list(url string) ([]asset.Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT id, url, comment, created_at FROM checkpoints WHERE url = ? ORDER BY created_at DESC`,
		url,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query checkpoints: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []asset.Checkpoint
	for rows.Next() {
		var cp asset.Checkpoint
		var createdAt string
		if err := rows.Scan(&cp.ID, &cp.URL, &cp.Comment, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("invalid checkpoint timestamp %q: %w", createdAt, err)
		}
		cp.CreatedAt = ts
		out = append(out, cp)
	}
	return out, rows.Err()
}

func (s *checkpointStore) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
