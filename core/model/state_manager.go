// Package model provides state management and interfaces shared by scorego
// estimators.
package model

import (
	"fmt"
	"sync"
)

// StateManager manages the fitted state of an estimator in a thread-safe
// manner. Estimators hold it by composition rather than embedding.
type StateManager struct {
	Fitted bool
	mu     sync.RWMutex

	// Shape metadata recorded at construction/fit time.
	NDimensions int
	NSamples    int
}

// NewStateManager creates a new StateManager instance.
func NewStateManager() *StateManager {
	return &StateManager{
		Fitted: false,
	}
}

// IsFitted returns whether the estimator has been fitted.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Fitted
}

// SetFitted marks the estimator as fitted.
func (s *StateManager) SetFitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = true
}

// Reset resets the fitted state and shape metadata.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = false
	s.NDimensions = 0
	s.NSamples = 0
}

// SetDimensions records the dimensionality and sample count seen at fit.
func (s *StateManager) SetDimensions(nDimensions, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.NDimensions = nDimensions
	s.NSamples = nSamples
}

// GetDimensions returns the dimensionality and sample count seen at fit.
func (s *StateManager) GetDimensions() (nDimensions, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.NDimensions, s.NSamples
}

// RequireFitted returns an error if the estimator has not been fitted.
func (s *StateManager) RequireFitted() error {
	if !s.IsFitted() {
		return fmt.Errorf("model has not been fitted yet. Call Fit() first")
	}
	return nil
}
