package autofsm

import "fmt"

// Observer represents an entity that observes state machine lifecycle.
// Observers are called on the machine's executor.
type Observer[S comparable] interface {
	// OnStateChanged is called after a transition commits and after the initial state is seated
	OnStateChanged(event StateChangedEvent[S])

	// OnFault is called when a condition or action raised an error
	OnFault(fault FaultEvent[S])
}

// ExtendedObserver provides additional optional observation methods
type ExtendedObserver[S comparable] interface {
	Observer[S]

	// OnConditionEvaluated is called after a transition condition returned without error
	OnConditionEvaluated(t *Transition[S], result bool)

	// OnActionExecuted is called after a transition action completed without error
	OnActionExecuted(t *Transition[S])

	// OnAttemptDropped is called when an attempt no longer matches the current state
	OnAttemptDropped(t *Transition[S], current S)

	// OnMachineStarted is called once the initial state is seated
	OnMachineStarted(initial S)
}

// BaseObserver provides a default implementation with no-op methods
type BaseObserver[S comparable] struct{}

// OnStateChanged implements the required Observer method
func (o *BaseObserver[S]) OnStateChanged(event StateChangedEvent[S]) {}

// OnFault implements the required Observer method
func (o *BaseObserver[S]) OnFault(fault FaultEvent[S]) {}

// OnConditionEvaluated implements the optional ExtendedObserver method
func (o *BaseObserver[S]) OnConditionEvaluated(t *Transition[S], result bool) {}

// OnActionExecuted implements the optional ExtendedObserver method
func (o *BaseObserver[S]) OnActionExecuted(t *Transition[S]) {}

// OnAttemptDropped implements the optional ExtendedObserver method
func (o *BaseObserver[S]) OnAttemptDropped(t *Transition[S], current S) {}

// OnMachineStarted implements the optional ExtendedObserver method
func (o *BaseObserver[S]) OnMachineStarted(initial S) {}

// ObserverManager manages a collection of observers. It is confined to the executor.
type ObserverManager[S comparable] struct {
	observers []Observer[S]
	onPanic   func(err error)
}

// NewObserverManager creates a new observer manager. onPanic receives
// errors describing panics raised by observers.
func NewObserverManager[S comparable](onPanic func(err error)) *ObserverManager[S] {
	return &ObserverManager[S]{
		observers: make([]Observer[S], 0),
		onPanic:   onPanic,
	}
}

// AddObserver adds an observer to the manager
func (om *ObserverManager[S]) AddObserver(observer Observer[S]) {
	if observer == nil {
		return
	}
	om.observers = append(om.observers, observer)
}

// RemoveObserver removes an observer from the manager
func (om *ObserverManager[S]) RemoveObserver(observer Observer[S]) {
	for i, obs := range om.observers {
		if obs == observer {
			om.observers = append(om.observers[:i], om.observers[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered observers
func (om *ObserverManager[S]) Len() int {
	return len(om.observers)
}

func (om *ObserverManager[S]) each(method string, fn func(Observer[S])) {
	observers := make([]Observer[S], len(om.observers))
	copy(observers, om.observers)

	for _, observer := range observers {
		func() {
			defer func() {
				if r := recover(); r != nil && om.onPanic != nil {
					om.onPanic(fmt.Errorf("observer panic in %s: %w", method, &PanicError{Value: r}))
				}
			}()
			fn(observer)
		}()
	}
}

func (om *ObserverManager[S]) eachExtended(method string, fn func(ExtendedObserver[S])) {
	om.each(method, func(o Observer[S]) {
		if ext, ok := o.(ExtendedObserver[S]); ok {
			fn(ext)
		}
	})
}

// NotifyStateChanged notifies all observers of a committed state change
func (om *ObserverManager[S]) NotifyStateChanged(event StateChangedEvent[S]) {
	om.each("OnStateChanged", func(o Observer[S]) { o.OnStateChanged(event) })
}

// NotifyFault notifies all observers of a fault. Panics raised here are swallowed
// so a misbehaving observer cannot feed the fault channel with its own faults.
func (om *ObserverManager[S]) NotifyFault(fault FaultEvent[S]) {
	observers := make([]Observer[S], len(om.observers))
	copy(observers, om.observers)

	for _, observer := range observers {
		func() {
			defer func() { recover() }()
			observer.OnFault(fault)
		}()
	}
}

// NotifyConditionEvaluated notifies extended observers of a condition result
func (om *ObserverManager[S]) NotifyConditionEvaluated(t *Transition[S], result bool) {
	om.eachExtended("OnConditionEvaluated", func(o ExtendedObserver[S]) { o.OnConditionEvaluated(t, result) })
}

// NotifyActionExecuted notifies extended observers of a completed action
func (om *ObserverManager[S]) NotifyActionExecuted(t *Transition[S]) {
	om.eachExtended("OnActionExecuted", func(o ExtendedObserver[S]) { o.OnActionExecuted(t) })
}

// NotifyAttemptDropped notifies extended observers of a stale attempt
func (om *ObserverManager[S]) NotifyAttemptDropped(t *Transition[S], current S) {
	om.eachExtended("OnAttemptDropped", func(o ExtendedObserver[S]) { o.OnAttemptDropped(t, current) })
}

// NotifyMachineStarted notifies extended observers that the machine has started
func (om *ObserverManager[S]) NotifyMachineStarted(initial S) {
	om.eachExtended("OnMachineStarted", func(o ExtendedObserver[S]) { o.OnMachineStarted(initial) })
}
