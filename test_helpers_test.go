package autofsm

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anggasct/autofsm/pkg/logger"
)

// panelState is the fixture used across the package tests
type panelState int

const (
	Collapsed panelState = iota
	FadingIn
	Expanded
	FadingOut
)

func (s panelState) String() string {
	switch s {
	case Collapsed:
		return "Collapsed"
	case FadingIn:
		return "FadingIn"
	case Expanded:
		return "Expanded"
	case FadingOut:
		return "FadingOut"
	default:
		return fmt.Sprintf("panelState(%d)", int(s))
	}
}

// Recorder captures everything a machine publishes on its streams
type Recorder[S comparable] struct {
	mutex   sync.Mutex
	changes []StateChangedEvent[S]
	faults  []FaultEvent[S]
}

// Record subscribes a new Recorder to both streams of sm
func Record[S comparable](sm *StateMachine[S]) *Recorder[S] {
	r := &Recorder[S]{}
	sm.StateChanged().Subscribe(func(e StateChangedEvent[S]) {
		r.mutex.Lock()
		defer r.mutex.Unlock()
		r.changes = append(r.changes, e)
	})
	sm.FaultStream().Subscribe(func(f FaultEvent[S]) {
		r.mutex.Lock()
		defer r.mutex.Unlock()
		r.faults = append(r.faults, f)
	})
	return r
}

// Changes returns the recorded state changes
func (r *Recorder[S]) Changes() []StateChangedEvent[S] {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	result := make([]StateChangedEvent[S], len(r.changes))
	copy(result, r.changes)
	return result
}

// Trail returns the recorded state changes rendered as strings
func (r *Recorder[S]) Trail() []string {
	changes := r.Changes()
	trail := make([]string, 0, len(changes))
	for _, c := range changes {
		trail = append(trail, c.String())
	}
	return trail
}

// Faults returns the recorded faults
func (r *Recorder[S]) Faults() []FaultEvent[S] {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	result := make([]FaultEvent[S], len(r.faults))
	copy(result, r.faults)
	return result
}

// Reset clears the recorded history
func (r *Recorder[S]) Reset() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.changes = nil
	r.faults = nil
}

type ConditionCall[S comparable] struct {
	Transition *Transition[S]
	Result     bool
}

type DroppedAttempt[S comparable] struct {
	Transition *Transition[S]
	Current    S
}

// TestObserver is a mock observer that captures every observer callback
type TestObserver[S comparable] struct {
	mutex      sync.Mutex
	Changes    []StateChangedEvent[S]
	Faults     []FaultEvent[S]
	Conditions []ConditionCall[S]
	Actions    []*Transition[S]
	Dropped    []DroppedAttempt[S]
	Started    []S
}

func NewTestObserver[S comparable]() *TestObserver[S] {
	return &TestObserver[S]{}
}

func (o *TestObserver[S]) OnStateChanged(event StateChangedEvent[S]) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Changes = append(o.Changes, event)
}

func (o *TestObserver[S]) OnFault(fault FaultEvent[S]) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Faults = append(o.Faults, fault)
}

func (o *TestObserver[S]) OnConditionEvaluated(t *Transition[S], result bool) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Conditions = append(o.Conditions, ConditionCall[S]{Transition: t, Result: result})
}

func (o *TestObserver[S]) OnActionExecuted(t *Transition[S]) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Actions = append(o.Actions, t)
}

func (o *TestObserver[S]) OnAttemptDropped(t *Transition[S], current S) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Dropped = append(o.Dropped, DroppedAttempt[S]{Transition: t, Current: current})
}

func (o *TestObserver[S]) OnMachineStarted(initial S) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Started = append(o.Started, initial)
}

// ChangeCount returns the number of recorded state changes
func (o *TestObserver[S]) ChangeCount() int {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return len(o.Changes)
}

// FaultCount returns the number of recorded faults
func (o *TestObserver[S]) FaultCount() int {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return len(o.Faults)
}

// AssertState checks the current state snapshot of the machine
func AssertState[S comparable](t *testing.T, sm *StateMachine[S], expected S) {
	t.Helper()
	assert.Equal(t, expected, sm.CurrentState(), "unexpected current state")
}

// StartMachine starts sm and fails the test on error
func StartMachine[S comparable](t *testing.T, sm *StateMachine[S]) {
	t.Helper()
	if err := sm.Start(); err != nil {
		t.Fatalf("Expected no error starting machine, got: %v", err)
	}
}

// NewQuietMachine creates a machine whose logger discards output
func NewQuietMachine[S comparable](initial S, opts ...Option) *StateMachine[S] {
	return New(initial, append([]Option{WithLogger(logger.Discard())}, opts...)...)
}
