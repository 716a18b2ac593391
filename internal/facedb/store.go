package facedb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sharvesh-debug/face-recognizing-locker/internal/logger"
)

// Store is the database of enrolled people: one reference embedding per
// name, persisted as a JSON file. The decision loop only reads it; the bot's
// Allow Always flow is the single writer, so access goes through a mutex.
type Store struct {
	path  string
	mu    sync.RWMutex
	faces map[string][]float32
}

// Open loads the face database, creating an empty one when the file does not
// exist yet.
func Open(path string) (*Store, error) {
	s := &Store{
		path:  path,
		faces: map[string][]float32{},
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Info("created new face database", "path", path)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read face database: %w", err)
	}

	if err := json.Unmarshal(data, &s.faces); err != nil {
		return nil, fmt.Errorf("parse face database %s: %w", path, err)
	}

	logger.Info("loaded face database", "path", path, "faces", len(s.faces))
	return s, nil
}

// Snapshot returns a copy of the name → embedding mapping. Embedding slices
// are shared but never mutated after load.
func (s *Store) Snapshot() map[string][]float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]float32, len(s.faces))
	for name, emb := range s.faces {
		out[name] = emb
	}
	return out
}

// Add enrolls a new person and persists the database.
func (s *Store) Add(name string, embedding []float32) error {
	if len(embedding) == 0 {
		return fmt.Errorf("refusing to store empty embedding for %s", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.faces[name] = embedding
	if err := s.save(); err != nil {
		delete(s.faces, name)
		return err
	}

	logger.Info("face added to database", "name", name, "faces", len(s.faces))
	return nil
}

// Len returns the number of enrolled people.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.faces)
}

// Export serializes the database, for off-site backup.
func (s *Store) Export() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(s.faces)
}

// save writes the database atomically via a temp file rename. Caller holds
// the write lock.
func (s *Store) save() error {
	data, err := json.Marshal(s.faces)
	if err != nil {
		return fmt.Errorf("encode face database: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create database dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write face database: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace face database: %w", err)
	}

	return nil
}
