package observers

import (
	"fmt"
	"sync"
	"time"

	"github.com/anggasct/autofsm"
)

// MetricsObserver collects metrics about state machine execution
type MetricsObserver[S comparable] struct {
	stateVisits      map[S]int
	stateTimeSpent   map[S]time.Duration
	transitionCounts map[string]int
	faultCounts      map[autofsm.FaultPhase]int
	conditionPassed  int
	conditionFailed  int
	actionCount      int
	droppedCount     int
	current          S
	enteredAt        time.Time
	seated           bool
	now              func() time.Time
	mutex            sync.RWMutex
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver[S comparable]() *MetricsObserver[S] {
	o := &MetricsObserver[S]{now: time.Now}
	o.reset()
	return o
}

// OnStateChanged records state visits, transition counts and time spent in the left state
func (o *MetricsObserver[S]) OnStateChanged(event autofsm.StateChangedEvent[S]) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	now := o.now()
	if o.seated {
		o.stateTimeSpent[o.current] += now.Sub(o.enteredAt)
	}
	if !event.Initial {
		o.transitionCounts[transitionKey(event.From, event.To)]++
	}

	o.stateVisits[event.To]++
	o.current = event.To
	o.enteredAt = now
	o.seated = true
}

// OnFault records fault metrics
func (o *MetricsObserver[S]) OnFault(fault autofsm.FaultEvent[S]) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.faultCounts[fault.Phase]++
}

// OnConditionEvaluated records condition results
func (o *MetricsObserver[S]) OnConditionEvaluated(t *autofsm.Transition[S], result bool) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if result {
		o.conditionPassed++
	} else {
		o.conditionFailed++
	}
}

// OnActionExecuted records completed actions
func (o *MetricsObserver[S]) OnActionExecuted(t *autofsm.Transition[S]) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.actionCount++
}

// OnAttemptDropped records stale attempts
func (o *MetricsObserver[S]) OnAttemptDropped(t *autofsm.Transition[S], current S) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.droppedCount++
}

// OnMachineStarted is a no-op; the initial state is counted by OnStateChanged
func (o *MetricsObserver[S]) OnMachineStarted(initial S) {}

// GetStateVisitCounts returns the number of times each state was entered
func (o *MetricsObserver[S]) GetStateVisitCounts() map[S]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make(map[S]int, len(o.stateVisits))
	for state, count := range o.stateVisits {
		result[state] = count
	}
	return result
}

// GetStateTimeSpent returns the time spent in each state that has been left
func (o *MetricsObserver[S]) GetStateTimeSpent() map[S]time.Duration {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make(map[S]time.Duration, len(o.stateTimeSpent))
	for state, duration := range o.stateTimeSpent {
		result[state] = duration
	}
	return result
}

// GetTransitionCounts returns the number of commits per "from->to" pair
func (o *MetricsObserver[S]) GetTransitionCounts() map[string]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make(map[string]int, len(o.transitionCounts))
	for transition, count := range o.transitionCounts {
		result[transition] = count
	}
	return result
}

// GetFaultCount returns the number of faults across all phases
func (o *MetricsObserver[S]) GetFaultCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	total := 0
	for _, count := range o.faultCounts {
		total += count
	}
	return total
}

// GetFaultCountByPhase returns the number of faults raised in phase
func (o *MetricsObserver[S]) GetFaultCountByPhase(phase autofsm.FaultPhase) int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	return o.faultCounts[phase]
}

// GetConditionCounts returns how many conditions passed and how many rejected their transition
func (o *MetricsObserver[S]) GetConditionCounts() (passed, rejected int) {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	return o.conditionPassed, o.conditionFailed
}

// GetActionCount returns the number of actions that completed
func (o *MetricsObserver[S]) GetActionCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	return o.actionCount
}

// GetDroppedCount returns the number of stale attempts
func (o *MetricsObserver[S]) GetDroppedCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	return o.droppedCount
}

// Reset resets all metrics
func (o *MetricsObserver[S]) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.reset()
}

func (o *MetricsObserver[S]) reset() {
	o.stateVisits = make(map[S]int)
	o.stateTimeSpent = make(map[S]time.Duration)
	o.transitionCounts = make(map[string]int)
	o.faultCounts = make(map[autofsm.FaultPhase]int)
	o.conditionPassed = 0
	o.conditionFailed = 0
	o.actionCount = 0
	o.droppedCount = 0
	o.seated = false
}

func transitionKey[S comparable](from, to S) string {
	return fmt.Sprintf("%v->%v", from, to)
}
