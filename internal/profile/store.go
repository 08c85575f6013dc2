package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/renameio"
)

var (
	// ErrDuplicateID means an append would violate the unique-id invariant.
	// IDs are generated, so hitting this indicates a bug, not bad input.
	ErrDuplicateID = errors.New("profile id already exists")

	// ErrNotFound means no profile with the given id is in the store.
	ErrNotFound = errors.New("profile not found")
)

// Store is the durable, insertion-ordered collection of enrolled profiles.
// It is persisted as a single JSON block in one file; every mutation is
// written through to disk before it is applied in memory, so a crash after
// a successful Append or Remove never loses the mutation.
type Store struct {
	mu       sync.RWMutex
	path     string
	profiles []Profile
}

// Open loads the store from path, or starts empty if the file does not
// exist yet. There is no explicit teardown; every write flushes.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read profile store: %w", err)
	}

	if len(data) == 0 {
		return s, nil
	}

	if err := json.Unmarshal(data, &s.profiles); err != nil {
		return nil, fmt.Errorf("failed to parse profile store %s: %w", path, err)
	}

	return s, nil
}

// List returns a snapshot of all profiles in insertion order.
func (s *Store) List() []Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Profile, len(s.profiles))
	copy(out, s.profiles)
	return out
}

// Len returns the number of enrolled profiles.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

// Get returns the profile with the given id, or ErrNotFound.
func (s *Store) Get(id string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.profiles {
		if s.profiles[i].ID == id {
			p := s.profiles[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

// Append adds a new profile and persists the store. It fails with
// ErrDuplicateID if the id is already present; it must never overwrite.
func (s *Store) Append(p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.profiles {
		if s.profiles[i].ID == p.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
		}
	}

	next := append(append([]Profile(nil), s.profiles...), p)
	if err := s.persist(next); err != nil {
		return err
	}
	s.profiles = next
	return nil
}

// Remove deletes the profile with the given id and persists the store.
// Removing an absent id is a no-op and does not touch the file.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.profiles {
		if s.profiles[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil
	}

	next := append(append([]Profile(nil), s.profiles[:idx]...), s.profiles[idx+1:]...)
	if err := s.persist(next); err != nil {
		return err
	}
	s.profiles = next
	return nil
}

// persist writes the full collection atomically. Callers hold the write lock,
// which also guarantees mutations reach the file in the order they were issued.
func (s *Store) persist(profiles []Profile) error {
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize profiles: %w", err)
	}

	if err := renameio.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to persist profile store: %w", err)
	}
	return nil
}
