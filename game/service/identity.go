package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// IdentityStore supplies the stable player identifier used for rejoin
// correlation. It performs no protocol logic.
type IdentityStore interface {
	// PlayerID returns the stored id, generating and persisting one on
	// first use.
	PlayerID() (string, error)
}

// persistedIdentity is the JSON structure of the identity file.
type persistedIdentity struct {
	PlayerID string `json:"player_id"`
}

// FileIdentityStore implements IdentityStore using a JSON file.
type FileIdentityStore struct {
	path string

	mu     sync.Mutex
	cached string
}

// NewFileIdentityStore creates a store backed by the given file path. The
// parent directory is created on demand.
func NewFileIdentityStore(path string) *FileIdentityStore {
	return &FileIdentityStore{path: path}
}

// PlayerID returns the persisted player id, creating one if the file does
// not exist yet.
func (s *FileIdentityStore) PlayerID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != "" {
		return s.cached, nil
	}

	data, err := os.ReadFile(s.path)
	if err == nil {
		var stored persistedIdentity
		if jsonErr := json.Unmarshal(data, &stored); jsonErr == nil && stored.PlayerID != "" {
			s.cached = stored.PlayerID
			return s.cached, nil
		}
		// Corrupt identity file: regenerate below.
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read identity file: %w", err)
	}

	id := uuid.NewString()
	if err := s.write(persistedIdentity{PlayerID: id}); err != nil {
		return "", err
	}
	s.cached = id
	return id, nil
}

func (s *FileIdentityStore) write(identity persistedIdentity) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create identity directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(identity, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write identity file: %w", err)
	}
	return nil
}

// MemoryIdentityStore implements IdentityStore without persistence; every
// process run gets a fresh id. Used by bots and tests.
type MemoryIdentityStore struct {
	once sync.Once
	id   string
}

// PlayerID returns the process-lifetime player id.
func (s *MemoryIdentityStore) PlayerID() (string, error) {
	s.once.Do(func() { s.id = uuid.NewString() })
	return s.id, nil
}
