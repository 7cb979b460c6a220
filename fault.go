package autofsm

import (
	"log/slog"
	"sync"

	"github.com/anggasct/autofsm/pkg/logger"
)

const defaultFaultLogSize = 64

// faultChannel turns errors raised by user code into FaultEvents.
// report never panics.
type faultChannel[S comparable] struct {
	stream    *Stream[FaultEvent[S]]
	observers *ObserverManager[S]
	logger    *slog.Logger

	mu      sync.Mutex
	log     []FaultEvent[S]
	logSize int
}

func newFaultChannel[S comparable](logger *slog.Logger, logSize int) *faultChannel[S] {
	fc := &faultChannel[S]{
		logger:  logger,
		logSize: logSize,
	}
	fc.stream = NewStream[FaultEvent[S]](func(r any) {
		fc.logger.Error("fault subscriber panicked", slog.Any("panic", r))
	})
	return fc
}

func (fc *faultChannel[S]) report(err error, phase FaultPhase, t *Transition[S]) {
	fault := newFaultEvent(err, phase, t)

	attrs := []any{
		logger.FaultID(fault.ID),
		slog.String("phase", phase.String()),
		logger.Error(err),
	}
	if t != nil {
		attrs = append(attrs, logger.Transition(t))
	}
	fc.logger.Error("state machine fault", attrs...)

	fc.remember(fault)
	fc.stream.Publish(fault)
	if fc.observers != nil {
		fc.observers.NotifyFault(fault)
	}
}

func (fc *faultChannel[S]) remember(fault FaultEvent[S]) {
	if fc.logSize <= 0 {
		return
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()

	if len(fc.log) == fc.logSize {
		copy(fc.log, fc.log[1:])
		fc.log = fc.log[:len(fc.log)-1]
	}
	fc.log = append(fc.log, fault)
}

func (fc *faultChannel[S]) snapshot() []FaultEvent[S] {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	result := make([]FaultEvent[S], len(fc.log))
	copy(result, fc.log)
	return result
}
