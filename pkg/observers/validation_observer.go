package observers

import (
	"fmt"
	"sync"

	"github.com/anggasct/autofsm"
)

// ValidationObserver checks committed transitions against an allowed set
// and tracks which expected states were reached
type ValidationObserver[S comparable] struct {
	autofsm.BaseObserver[S]

	expectedStates     map[S]bool
	visitedStates      map[S]bool
	allowedTransitions map[S]map[S]bool
	violations         []string
	mutex              sync.RWMutex
}

// NewValidationObserver creates a new validation observer
func NewValidationObserver[S comparable]() *ValidationObserver[S] {
	return &ValidationObserver[S]{
		expectedStates:     make(map[S]bool),
		visitedStates:      make(map[S]bool),
		allowedTransitions: make(map[S]map[S]bool),
		violations:         make([]string, 0),
	}
}

// AddExpectedState adds a state that should be reached
func (o *ValidationObserver[S]) AddExpectedState(state S) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.expectedStates[state] = true
}

// AddAllowedTransition allows commits from from to to. Source states without
// any allowed transition are not checked.
func (o *ValidationObserver[S]) AddAllowedTransition(from, to S) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if _, exists := o.allowedTransitions[from]; !exists {
		o.allowedTransitions[from] = make(map[S]bool)
	}
	o.allowedTransitions[from][to] = true
}

// ExpectMachine expects every state touched by the machine's transitions to be reached
func (o *ValidationObserver[S]) ExpectMachine(sm *autofsm.StateMachine[S]) {
	o.AddExpectedState(sm.InitialState())
	for _, t := range sm.Transitions() {
		o.AddExpectedState(t.From)
		o.AddExpectedState(t.To)
	}
}

// OnStateChanged marks the target as visited and validates the transition
func (o *ValidationObserver[S]) OnStateChanged(event autofsm.StateChangedEvent[S]) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.visitedStates[event.To] = true
	if event.Initial {
		return
	}

	if allowed, exists := o.allowedTransitions[event.From]; exists && !allowed[event.To] {
		o.violations = append(o.violations, fmt.Sprintf(
			"invalid transition from '%v' to '%v'", event.From, event.To))
	}
}

// OnFault records faults as violations
func (o *ValidationObserver[S]) OnFault(fault autofsm.FaultEvent[S]) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.violations = append(o.violations, fmt.Sprintf("fault occurred: %v", fault))
}

// GetViolations returns all validation violations
func (o *ValidationObserver[S]) GetViolations() []string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make([]string, len(o.violations))
	copy(result, o.violations)
	return result
}

// GetUnvisitedStates returns states that were expected but not visited
func (o *ValidationObserver[S]) GetUnvisitedStates() []S {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	var unvisited []S
	for state := range o.expectedStates {
		if !o.visitedStates[state] {
			unvisited = append(unvisited, state)
		}
	}
	return unvisited
}

// HasViolations returns whether any violations occurred
func (o *ValidationObserver[S]) HasViolations() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.violations) > 0
}

// Reset resets the validation state
func (o *ValidationObserver[S]) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.visitedStates = make(map[S]bool)
	o.violations = make([]string, 0)
}
