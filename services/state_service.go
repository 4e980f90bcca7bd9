package services

import (
	"fmt"
	"sync"

	"nutrimind_server/models"
)

// StateService holds the authoritative in-memory state per user. Every
// mutation goes through Update so the change hook fires exactly once per
// mutation, which is what drives the debounced remote sync.
type StateService struct {
	mu       sync.RWMutex
	sessions map[string]*models.UserData
	onChange func(userID string)
}

// NewStateService creates an empty state holder.
func NewStateService() *StateService {
	return &StateService{sessions: make(map[string]*models.UserData)}
}

// SetOnChange registers the hook invoked after every successful Update.
// Must be called during wiring, before concurrent use.
func (s *StateService) SetOnChange(hook func(userID string)) {
	s.onChange = hook
}

// Install replaces the user's state wholesale, without firing the change
// hook. Used when loading a remote snapshot.
func (s *StateService) Install(userID string, data *models.UserData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = data
}

// Exists reports whether the user has in-memory state.
func (s *StateService) Exists(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[userID]
	return ok
}

// Snapshot returns a deep copy of the user's state, or nil if none exists.
func (s *StateService) Snapshot(userID string) *models.UserData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[userID].Clone()
}

// Update applies fn to the user's state under the lock, then fires the
// change hook. Returns an error if the user has no state yet.
func (s *StateService) Update(userID string, fn func(data *models.UserData) error) error {
	s.mu.Lock()
	data, ok := s.sessions[userID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("no session state for user %s", userID)
	}
	err := fn(data)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	if s.onChange != nil {
		s.onChange(userID)
	}
	return nil
}

// Reset drops the user's in-memory state. Remote cleanup is the sync
// coordinator's job.
func (s *StateService) Reset(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
