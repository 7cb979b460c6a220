package autofsm

import "log/slog"

const defaultMaxChainLength = 1024

// Option configures a StateMachine at construction time
type Option func(*options)

type options struct {
	executor     Executor
	logger       *slog.Logger
	name         string
	maxChain     int
	faultLogSize int
	observers    []any
}

func defaultOptions() *options {
	return &options{
		executor:     Immediate(),
		logger:       slog.Default(),
		maxChain:     defaultMaxChainLength,
		faultLogSize: defaultFaultLogSize,
	}
}

// WithExecutor sets the executor that owns the machine. Nil executors are ignored.
func WithExecutor(e Executor) Option {
	return func(o *options) {
		if e != nil {
			o.executor = e
		}
	}
}

// WithLogger sets the logger for the machine. Nil loggers are ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMachineName names the machine in logs
func WithMachineName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithMaxChainLength bounds how many automatic transitions may commit in a row
// after a Start or a manual transition. Values <= 0 disable the limit.
func WithMaxChainLength(n int) Option {
	return func(o *options) {
		o.maxChain = n
	}
}

// WithFaultLogSize sets how many recent faults Faults keeps. Zero disables the log.
func WithFaultLogSize(n int) Option {
	return func(o *options) {
		o.faultLogSize = max(n, 0)
	}
}

// WithObserver registers an observer before the machine starts.
//
// The option is not tied to the machine's state type, so an observer whose
// type argument differs from the machine's is dropped by New with a warning.
// Prefer StateMachine.AddObserver when the machine is already at hand.
func WithObserver[S comparable](observer Observer[S]) Option {
	return func(o *options) {
		if observer != nil {
			o.observers = append(o.observers, observer)
		}
	}
}
