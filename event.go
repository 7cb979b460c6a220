package autofsm

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StateChangedEvent is published once per committed transition and once when the machine starts
type StateChangedEvent[S comparable] struct {
	From S
	To   S
	// Initial marks the synthetic event that seats the initial state; From is the zero value then
	Initial bool
	// Transition is the committed transition, nil for the initial event
	Transition *Transition[S]
}

func (e StateChangedEvent[S]) String() string {
	if e.Initial {
		return fmt.Sprintf("entered %v", e.To)
	}
	return fmt.Sprintf("%v -> %v", e.From, e.To)
}

// FaultPhase tells which part of the engine a fault came from
type FaultPhase int

const (
	// PhaseCondition faults come from a transition condition
	PhaseCondition FaultPhase = iota
	// PhaseAction faults come from a transition action
	PhaseAction
	// PhaseNotification faults come from a StateChanged subscriber or an observer
	PhaseNotification
	// PhaseChain faults are raised when automatic transitions exceed the chain limit
	PhaseChain
)

func (p FaultPhase) String() string {
	switch p {
	case PhaseCondition:
		return "condition"
	case PhaseAction:
		return "action"
	case PhaseNotification:
		return "notification"
	case PhaseChain:
		return "chain"
	default:
		return fmt.Sprintf("FaultPhase(%d)", int(p))
	}
}

// FaultEvent reports an error raised by user code running inside the engine
type FaultEvent[S comparable] struct {
	ID    uuid.UUID
	Err   error
	Phase FaultPhase
	// Transition is the attempt that faulted, nil when unknown
	Transition *Transition[S]
	Time       time.Time
}

func (e FaultEvent[S]) Error() string {
	if e.Transition != nil {
		return fmt.Sprintf("%s fault on %s: %v", e.Phase, e.Transition, e.Err)
	}
	return fmt.Sprintf("%s fault: %v", e.Phase, e.Err)
}

func (e FaultEvent[S]) Unwrap() error {
	return e.Err
}

func newFaultEvent[S comparable](err error, phase FaultPhase, t *Transition[S]) FaultEvent[S] {
	return FaultEvent[S]{
		ID:         uuid.New(),
		Err:        err,
		Phase:      phase,
		Transition: t,
		Time:       time.Now(),
	}
}
