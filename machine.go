package autofsm

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/anggasct/autofsm/pkg/logger"
)

// StateMachine runs transitions between states of type S on a single executor.
//
// Transitions are registered before Start. After Start every condition,
// action, state change and notification runs on the configured Executor.
// Calls made from other goroutines are marshaled onto it and return
// without waiting, so their outcome is observed through StateChanged and
// FaultStream.
type StateMachine[S comparable] struct {
	id       uuid.UUID
	name     string
	initial  S
	executor Executor
	logger   *slog.Logger
	maxChain int

	// configMu serialises registration against Start. Once started the
	// transition set is frozen and read without locking.
	configMu    sync.Mutex
	started     atomic.Bool
	transitions []*Transition[S]
	automatic   map[S][]*Transition[S]

	snapshot atomic.Pointer[S]

	// Confined to the executor.
	seated   bool
	current  S
	chain    int
	work     []func()
	draining bool

	stateChanged *Stream[StateChangedEvent[S]]
	faults       *faultChannel[S]
	observers    *ObserverManager[S]
}

// New creates a state machine that will enter initial when started
func New[S comparable](initial S, opts ...Option) *StateMachine[S] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	sm := &StateMachine[S]{
		id:        uuid.New(),
		name:      o.name,
		initial:   initial,
		executor:  o.executor,
		maxChain:  o.maxChain,
		automatic: make(map[S][]*Transition[S]),
	}

	label := sm.name
	if label == "" {
		label = sm.id.String()
	}
	sm.logger = o.logger.With(logger.Machine(label))

	sm.faults = newFaultChannel[S](sm.logger, o.faultLogSize)
	sm.observers = NewObserverManager[S](func(err error) {
		sm.faults.report(err, PhaseNotification, nil)
	})
	sm.faults.observers = sm.observers
	sm.stateChanged = NewStream[StateChangedEvent[S]](func(r any) {
		sm.faults.report(&PanicError{Value: r}, PhaseNotification, nil)
	})

	for _, candidate := range o.observers {
		if observer, ok := candidate.(Observer[S]); ok {
			sm.observers.AddObserver(observer)
		} else {
			sm.logger.Warn("ignoring observer with mismatched state type", slog.String("observer", fmt.Sprintf("%T", candidate)))
		}
	}

	return sm
}

// ID returns the unique identifier of the machine
func (sm *StateMachine[S]) ID() uuid.UUID {
	return sm.id
}

// Name returns the configured machine name
func (sm *StateMachine[S]) Name() string {
	return sm.name
}

// InitialState returns the state entered by Start
func (sm *StateMachine[S]) InitialState() S {
	return sm.initial
}

// Executor returns the executor that owns the machine
func (sm *StateMachine[S]) Executor() Executor {
	return sm.executor
}

// StateChanged returns the stream of committed state changes
func (sm *StateMachine[S]) StateChanged() *Stream[StateChangedEvent[S]] {
	return sm.stateChanged
}

// FaultStream returns the stream of faults raised by conditions, actions and subscribers
func (sm *StateMachine[S]) FaultStream() *Stream[FaultEvent[S]] {
	return sm.faults.stream
}

// Faults returns the most recent faults, oldest first
func (sm *StateMachine[S]) Faults() []FaultEvent[S] {
	return sm.faults.snapshot()
}

// AddManualTransition registers a transition that fires only when triggered
func (sm *StateMachine[S]) AddManualTransition(from, to S, opts ...TransitionOption) (*Transition[S], error) {
	return sm.addTransition(Manual, from, to, opts)
}

// AddAutomaticTransition registers a transition the machine attempts itself whenever from is entered
func (sm *StateMachine[S]) AddAutomaticTransition(from, to S, opts ...TransitionOption) (*Transition[S], error) {
	return sm.addTransition(Automatic, from, to, opts)
}

func (sm *StateMachine[S]) addTransition(kind TransitionKind, from, to S, opts []TransitionOption) (*Transition[S], error) {
	cfg := &transitionConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	sm.configMu.Lock()
	defer sm.configMu.Unlock()

	if sm.started.Load() {
		return nil, NewConfigurationError("StateMachine",
			fmt.Sprintf("cannot add %s transition %v->%v after start", kind, from, to), ErrAlreadyStarted)
	}

	t := &Transition[S]{
		From:      from,
		To:        to,
		Kind:      kind,
		Name:      cfg.name,
		Condition: cfg.condition,
		Action:    cfg.action,
		index:     len(sm.transitions),
	}
	sm.transitions = append(sm.transitions, t)
	if kind == Automatic {
		sm.automatic[from] = append(sm.automatic[from], t)
	}

	return t, nil
}

// Transitions returns all registered transitions in registration order
func (sm *StateMachine[S]) Transitions() []*Transition[S] {
	sm.configMu.Lock()
	defer sm.configMu.Unlock()

	result := make([]*Transition[S], len(sm.transitions))
	copy(result, sm.transitions)
	return result
}

// AutomaticFrom returns the automatic transitions leaving state in evaluation order
func (sm *StateMachine[S]) AutomaticFrom(state S) []*Transition[S] {
	sm.configMu.Lock()
	defer sm.configMu.Unlock()

	result := make([]*Transition[S], len(sm.automatic[state]))
	copy(result, sm.automatic[state])
	return result
}

// Start enters the initial state and begins evaluating automatic transitions.
// It may be called from any goroutine; the initial state is seated on the executor.
func (sm *StateMachine[S]) Start() error {
	sm.configMu.Lock()
	if sm.started.Load() {
		sm.configMu.Unlock()
		return NewConfigurationError("StateMachine", "Start called more than once",
			NewMachineError(ErrCodeAlreadyStarted, "Start", ErrAlreadyStarted))
	}
	sm.started.Store(true)
	sm.configMu.Unlock()

	sm.logger.Debug("starting state machine", logger.State("initial", sm.initial), slog.Int("transitions", len(sm.transitions)))
	sm.dispatch(sm.seat)
	return nil
}

// Started reports whether Start has been called
func (sm *StateMachine[S]) Started() bool {
	return sm.started.Load()
}

// CurrentState returns a snapshot of the current state. Before the initial
// state is seated it returns the zero value of S. The snapshot may be stale
// by the time the caller inspects it unless the caller runs on the executor.
func (sm *StateMachine[S]) CurrentState() S {
	if p := sm.snapshot.Load(); p != nil {
		return *p
	}
	var zero S
	return zero
}

// IsInState reports whether the current snapshot equals state
func (sm *StateMachine[S]) IsInState(state S) bool {
	p := sm.snapshot.Load()
	return p != nil && *p == state
}

// Fire triggers the manual transitions registered between from and to.
// Candidates are tried in registration order with the same rules as
// automatic evaluation. Errors are returned only for misuse; faults raised
// by conditions or actions are reported on FaultStream.
func (sm *StateMachine[S]) Fire(from, to S) error {
	if !sm.started.Load() {
		return NewMachineError(ErrCodeMachineNotStarted, "Fire", ErrNotStarted)
	}

	var candidates []*Transition[S]
	for _, t := range sm.transitions {
		if t.Kind == Manual && t.From == from && t.To == to {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return NewMachineError(ErrCodeTransitionNotFound, "Fire",
			fmt.Errorf("%w: manual %v->%v", ErrTransitionNotFound, from, to))
	}

	sm.dispatch(func() {
		sm.tryInOrder(candidates)
	})
	return nil
}

// FireTransition triggers a specific registered transition of either kind
func (sm *StateMachine[S]) FireTransition(t *Transition[S]) error {
	if !sm.started.Load() {
		return NewMachineError(ErrCodeMachineNotStarted, "FireTransition", ErrNotStarted)
	}
	if t == nil || t.index < 0 || t.index >= len(sm.transitions) || sm.transitions[t.index] != t {
		return NewMachineError(ErrCodeTransitionNotFound, "FireTransition",
			fmt.Errorf("%w: transition is not registered on this machine", ErrTransitionNotFound))
	}

	sm.dispatch(func() {
		sm.attempt(t)
	})
	return nil
}

// Reevaluate asks the machine to attempt the automatic transitions leaving
// its current state again. Hosts call it when the inputs of a condition
// that previously held the machine in place have changed.
func (sm *StateMachine[S]) Reevaluate() error {
	if !sm.started.Load() {
		return NewMachineError(ErrCodeMachineNotStarted, "Reevaluate", ErrNotStarted)
	}

	sm.dispatch(func() {
		if !sm.seated {
			return
		}
		sm.chain = 0
		sm.evaluate(sm.current)
	})
	return nil
}

// AddObserver registers an observer. The registration happens on the executor.
func (sm *StateMachine[S]) AddObserver(observer Observer[S]) {
	sm.dispatch(func() {
		sm.observers.AddObserver(observer)
	})
}

// RemoveObserver unregisters an observer. The removal happens on the executor.
func (sm *StateMachine[S]) RemoveObserver(observer Observer[S]) {
	sm.dispatch(func() {
		sm.observers.RemoveObserver(observer)
	})
}

// dispatch marshals fn onto the executor and runs it through the machine's
// work queue. Work queued while the queue is draining runs after the
// current item, so chains of commits loop instead of recursing.
func (sm *StateMachine[S]) dispatch(fn func()) {
	if sm.executor.IsOnExecutor() {
		sm.run(fn)
		return
	}
	sm.executor.RunOnExecutor(func() {
		sm.run(fn)
	})
}

func (sm *StateMachine[S]) run(fn func()) {
	sm.work = append(sm.work, fn)
	if sm.draining {
		return
	}

	sm.draining = true
	defer func() { sm.draining = false }()

	for len(sm.work) > 0 {
		next := sm.work[0]
		sm.work[0] = nil
		sm.work = sm.work[1:]
		next()
	}
	sm.work = nil
}

// seat enters the initial state
func (sm *StateMachine[S]) seat() {
	sm.seated = true
	sm.chain = 0
	sm.setCurrent(sm.initial)

	sm.logger.Debug("entered initial state", logger.State("state", sm.initial))
	sm.publish(StateChangedEvent[S]{To: sm.initial, Initial: true})
	sm.observers.NotifyMachineStarted(sm.initial)
	sm.signal(sm.initial)
}

func (sm *StateMachine[S]) setCurrent(state S) {
	sm.current = state
	sm.snapshot.Store(&state)
}

func (sm *StateMachine[S]) publish(event StateChangedEvent[S]) {
	sm.stateChanged.Publish(event)
	sm.observers.NotifyStateChanged(event)
}
