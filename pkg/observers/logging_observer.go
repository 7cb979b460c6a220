// Package observers provides observers for monitoring state machine events
package observers

import (
	"log/slog"

	"github.com/anggasct/autofsm"
	"github.com/anggasct/autofsm/pkg/logger"
)

// LoggingObserver logs state machine events through slog.
// State changes are logged at Info, faults at Error and attempt details at Debug.
type LoggingObserver[S comparable] struct {
	logger *slog.Logger
}

// NewLoggingObserver creates a new logging observer. A nil logger falls back to slog.Default.
func NewLoggingObserver[S comparable](l *slog.Logger, component string) *LoggingObserver[S] {
	if l == nil {
		l = slog.Default()
	}
	if component != "" {
		l = l.With(logger.Component(component))
	}
	return &LoggingObserver[S]{logger: l}
}

// NewDefaultLoggingObserver creates a logging observer writing text records to stderr
func NewDefaultLoggingObserver[S comparable]() *LoggingObserver[S] {
	return NewLoggingObserver[S](logger.New(), "StateMachine")
}

// OnStateChanged logs committed transitions and the initial state
func (o *LoggingObserver[S]) OnStateChanged(event autofsm.StateChangedEvent[S]) {
	if event.Initial {
		o.logger.Info("entered initial state", logger.State("state", event.To))
		return
	}
	o.logger.Info("state changed",
		logger.State("from", event.From),
		logger.State("to", event.To),
		logger.Transition(event.Transition))
}

// OnFault logs faults
func (o *LoggingObserver[S]) OnFault(fault autofsm.FaultEvent[S]) {
	attrs := []any{
		logger.FaultID(fault.ID),
		slog.String("phase", fault.Phase.String()),
		logger.Error(fault.Err),
	}
	if fault.Transition != nil {
		attrs = append(attrs, logger.Transition(fault.Transition))
	}
	o.logger.Error("fault", attrs...)
}

// OnConditionEvaluated logs condition results
func (o *LoggingObserver[S]) OnConditionEvaluated(t *autofsm.Transition[S], result bool) {
	o.logger.Debug("condition evaluated", logger.Transition(t), slog.Bool("result", result))
}

// OnActionExecuted logs completed actions
func (o *LoggingObserver[S]) OnActionExecuted(t *autofsm.Transition[S]) {
	o.logger.Debug("action executed", logger.Transition(t))
}

// OnAttemptDropped logs attempts that no longer matched the current state
func (o *LoggingObserver[S]) OnAttemptDropped(t *autofsm.Transition[S], current S) {
	o.logger.Debug("attempt dropped", logger.Transition(t), logger.State("current", current))
}

// OnMachineStarted logs machine start
func (o *LoggingObserver[S]) OnMachineStarted(initial S) {
	o.logger.Debug("machine started", logger.State("initial", initial))
}
