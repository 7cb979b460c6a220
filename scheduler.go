package autofsm

import (
	"fmt"
	"log/slog"

	"github.com/anggasct/autofsm/pkg/logger"
)

type attemptOutcome int

const (
	outcomeCommitted attemptOutcome = iota
	outcomeRejected
	outcomeFaulted
	outcomeStale
)

// signal queues an evaluation of the automatic transitions leaving state
func (sm *StateMachine[S]) signal(state S) {
	if len(sm.automatic[state]) == 0 {
		return
	}
	sm.run(func() {
		sm.evaluate(state)
	})
}

// evaluate attempts the automatic transitions leaving state in registration
// order until one commits or faults. A false condition moves on to the next
// candidate; when none applies the machine waits in state.
func (sm *StateMachine[S]) evaluate(state S) {
	if !sm.seated || sm.current != state {
		return
	}
	sm.tryInOrder(sm.automatic[state])
}

func (sm *StateMachine[S]) tryInOrder(candidates []*Transition[S]) {
	for _, t := range candidates {
		switch sm.attempt(t) {
		case outcomeRejected:
			continue
		default:
			return
		}
	}
}

// attempt validates and performs a single transition on the executor
func (sm *StateMachine[S]) attempt(t *Transition[S]) attemptOutcome {
	if !sm.seated || sm.current != t.From {
		sm.logger.Debug("dropping stale transition attempt",
			logger.Transition(t), logger.State("current", sm.current))
		sm.observers.NotifyAttemptDropped(t, sm.current)
		return outcomeStale
	}

	ok, err := t.evaluate()
	if err != nil {
		sm.faults.report(&GuardError{
			From:        fmt.Sprint(t.From),
			To:          fmt.Sprint(t.To),
			OriginalErr: err,
		}, PhaseCondition, t)
		return outcomeFaulted
	}
	sm.observers.NotifyConditionEvaluated(t, ok)
	if !ok {
		sm.logger.Debug("condition rejected transition", logger.Transition(t))
		return outcomeRejected
	}

	if err := t.execute(); err != nil {
		sm.faults.report(&ActionError{
			From:        fmt.Sprint(t.From),
			To:          fmt.Sprint(t.To),
			OriginalErr: err,
		}, PhaseAction, t)
		return outcomeFaulted
	}
	if t.HasAction() {
		sm.observers.NotifyActionExecuted(t)
	}

	sm.commit(t)
	return outcomeCommitted
}

// commit moves the machine to t.To, notifies and schedules the next evaluation
func (sm *StateMachine[S]) commit(t *Transition[S]) {
	from := sm.current
	sm.setCurrent(t.To)

	sm.logger.Debug("transition committed",
		logger.Transition(t), slog.String("kind", t.Kind.String()))
	sm.publish(StateChangedEvent[S]{From: from, To: t.To, Transition: t})

	if t.Kind != Automatic {
		sm.chain = 0
		sm.signal(t.To)
		return
	}

	sm.chain++
	if sm.maxChain > 0 && sm.chain >= sm.maxChain && len(sm.automatic[t.To]) > 0 {
		sm.faults.report(fmt.Errorf("%w: %d consecutive automatic transitions, stopped in %v",
			ErrChainLimitExceeded, sm.chain, t.To), PhaseChain, t)
		return
	}
	sm.signal(t.To)
}
