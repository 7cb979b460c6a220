// Package executor provides executors that a state machine can be bound to.
//
// Loop owns a dedicated goroutine and runs posted callbacks on it in FIFO
// order, the way a UI thread or an actor mailbox would. Queue never starts a
// goroutine: callbacks accumulate until the host drains them from its own
// loop, which makes it the natural choice for game loops and for tests that
// need deterministic control over when work runs.
//
// Both satisfy the two-method contract expected by autofsm.WithExecutor:
// IsOnExecutor reports whether the caller is the executing goroutine, and
// RunOnExecutor runs a callback inline when it is, or queues it otherwise.
package executor
