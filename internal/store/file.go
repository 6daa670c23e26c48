package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	fileLockPoll    = 5 * time.Millisecond
	fileLockTimeout = 10 * time.Second
	// A lock file older than this is left over from a crashed process.
	fileLockStale = 30 * time.Second
)

// FileStore keeps the ledger as a JSON object {strategy: {positive, total}}
// in a single file. Writes replace the file atomically.
//
// Updates are serialized in-process by a mutex and across processes by a
// "<path>.lock" file created exclusively around each read-modify-write, so a
// CLI run and a server may share one ledger file. The lock is advisory and
// local-filesystem only; use the sqlite driver for anything busier.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a ledger at path, creating it as {} if missing.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lock(context.Background())
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// lock takes the cross-process lock file, waiting up to fileLockTimeout.
// Callers hold s.mu.
func (s *FileStore) lock(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	lockPath := s.path + ".lock"
	deadline := time.Now().Add(fileLockTimeout)
	for {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, _ = fmt.Fprintf(f, "%d\n", os.Getpid())
			f.Close()
			return func() { _ = os.Remove(lockPath) }, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("create ledger lock: %w", err)
		}
		if info, statErr := os.Stat(lockPath); statErr == nil && time.Since(info.ModTime()) > fileLockStale {
			_ = os.Remove(lockPath)
			continue
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("ledger file %s is locked by another process", s.path)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for ledger lock: %w", ctx.Err())
		case <-time.After(fileLockPoll):
		}
	}
}

func (s *FileStore) GetLedgerEntry(_ context.Context, strategy string) (LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ledger, err := s.load()
	if err != nil {
		return LedgerEntry{}, err
	}
	return ledger[strategy], nil
}

func (s *FileStore) ListLedger(_ context.Context) (map[string]LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) RecordFeedback(ctx context.Context, fb *Feedback) (LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lock(ctx)
	if err != nil {
		return LedgerEntry{}, err
	}
	defer unlock()

	ledger, err := s.load()
	if err != nil {
		return LedgerEntry{}, err
	}
	e := applyFeedback(ledger[fb.Strategy], fb.WasHelpful)
	ledger[fb.Strategy] = e
	if err := s.save(ledger); err != nil {
		return LedgerEntry{}, err
	}
	return e, nil
}

func (s *FileStore) Close() error { return nil }

// load reads the ledger, initializing the file on first access.
// Callers hold s.mu.
func (s *FileStore) load() (map[string]LedgerEntry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		ledger := make(map[string]LedgerEntry)
		if err := s.save(ledger); err != nil {
			return nil, err
		}
		return ledger, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger file: %w", err)
	}

	ledger := make(map[string]LedgerEntry)
	if len(data) == 0 {
		return ledger, nil
	}
	if err := json.Unmarshal(data, &ledger); err != nil {
		return nil, fmt.Errorf("decode ledger file: %w", err)
	}
	return ledger, nil
}

func (s *FileStore) save(ledger map[string]LedgerEntry) error {
	data, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp ledger: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}
