package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"diamond-bot/internal/domain"
)

// FileStore keeps the whole ledger in memory and persists it as a
// single JSON document. Every flush rewrites the file through a
// temporary name and a rename, so the snapshot on disk is always
// either the old state or the new one, never a partial write.
type FileStore struct {
	mu   sync.Mutex
	path string
	snap *domain.Snapshot
}

// Open loads the snapshot at path, initializing an empty ledger with
// an inactive event state when no file exists yet.
func Open(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	s := &FileStore{path: path}
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.snap = emptySnapshot()
		if err := s.flushLocked(); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		var snap domain.Snapshot
		if err := json.Unmarshal(b, &snap); err != nil {
			return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
		}
		if snap.Users == nil {
			snap.Users = map[int64]*domain.Account{}
		}
		if !snap.Events.Active {
			snap.Events.Multiplier = 1
		}
		s.snap = &snap
	}
	return s, nil
}

func emptySnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Users:  map[int64]*domain.Account{},
		Events: domain.EventState{Active: false, Multiplier: 1},
	}
}

// GetOrCreate returns the account for userID, creating a zero-valued
// one on first reference. It never fails.
func (s *FileStore) GetOrCreate(userID int64) *domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.snap.Users[userID]
	if !ok {
		s.snap.NextSeq++
		acc = &domain.Account{Seq: s.snap.NextSeq}
		s.snap.Users[userID] = acc
	}
	return acc
}

// Accounts returns all accounts in creation order.
func (s *FileStore) Accounts() []*domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Account, 0, len(s.snap.Users))
	for _, a := range s.snap.Users {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// Events returns the mutable global event state.
func (s *FileStore) Events() *domain.EventState {
	return &s.snap.Events
}

// Flush persists the current state. Callers must treat a failure as
// "the mutation did not happen" and roll back in-memory changes.
func (s *FileStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *FileStore) flushLocked() error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.snap); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
