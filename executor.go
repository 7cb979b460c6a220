package autofsm

// Executor is the designated execution context that owns a machine.
// All condition evaluation, action execution, state mutation and
// notification happen inside callbacks run by the executor.
type Executor interface {
	// IsOnExecutor reports whether the caller already runs on the executor
	IsOnExecutor() bool

	// RunOnExecutor schedules fn and returns without waiting for it.
	// When the caller is already on the executor, fn runs synchronously.
	RunOnExecutor(fn func())
}

// ImmediateExecutor treats every caller as being on the executor.
// It suits single-threaded hosts that never touch the machine from
// more than one goroutine.
type ImmediateExecutor struct{}

// Immediate returns the synchronous executor used when none is configured
func Immediate() Executor {
	return ImmediateExecutor{}
}

// IsOnExecutor always returns true
func (ImmediateExecutor) IsOnExecutor() bool { return true }

// RunOnExecutor runs fn right away
func (ImmediateExecutor) RunOnExecutor(fn func()) { fn() }
