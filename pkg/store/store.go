// Package store keeps the outcomes of a single run, keyed by target ID.
package store

import (
	"errors"
	"fmt"
	"sync"

	"fleetcheck/pkg/monitor"
	"fleetcheck/pkg/target"
)

// ErrDuplicateOutcome is returned when a target already has an outcome in
// the current run.
var ErrDuplicateOutcome = errors.New("outcome already recorded")

// Results is safe for concurrent writers. Each target is written at most
// once per run.
type Results struct {
	mu       sync.RWMutex
	outcomes map[target.ID]monitor.Outcome
}

func New() *Results {
	return &Results{outcomes: make(map[target.ID]monitor.Outcome)}
}

func (r *Results) Put(o monitor.Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.outcomes[o.TargetID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateOutcome, o.TargetID)
	}
	r.outcomes[o.TargetID] = o
	return nil
}

func (r *Results) Get(id target.ID) (monitor.Outcome, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.outcomes[id]
	return o, ok
}

func (r *Results) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.outcomes)
}

// Reset drops every outcome. Callers defer it so nothing outlives the run.
func (r *Results) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = make(map[target.ID]monitor.Outcome)
}
