// Package autofsm provides a finite state machine whose automatic
// transitions are fired by the engine itself, and which runs all user code
// on a single designated executor.
//
// A transition connects two states and may carry a Condition and an
// Action. Manual transitions fire when the host calls Fire. Automatic
// transitions are attempted, in registration order, every time their
// source state is entered: the first one whose condition passes commits,
// which enters the next state and repeats the evaluation there.
//
// Conditions, actions, StateChanged subscribers and observers always run
// on the Executor given with WithExecutor. Calls from other goroutines are
// marshaled onto it without blocking. Errors and panics raised by
// conditions or actions never escape the engine: they are published on
// FaultStream and the machine stays in the state it was in.
//
// A machine waiting on a condition does not poll it. When the inputs of a
// condition change, the host calls Reevaluate. Validate reports
// configurations that can never behave as intended, such as shadowed
// automatic transitions and unconditioned automatic cycles.
//
// Basic usage:
//
//	sm := autofsm.New(Collapsed, autofsm.WithExecutor(loop))
//	sm.AddAutomaticTransition(Collapsed, FadingIn)
//	sm.AddAutomaticTransition(FadingIn, Expanded, autofsm.WithGuard(ready))
//	sm.StateChanged().Subscribe(func(e autofsm.StateChangedEvent[State]) {
//		fmt.Println(e)
//	})
//	sm.Start()
package autofsm
