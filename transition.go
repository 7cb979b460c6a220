package autofsm

import "fmt"

// TransitionKind distinguishes externally triggered transitions from the ones the engine fires itself
type TransitionKind int

const (
	// Manual transitions fire only through Fire or FireTransition
	Manual TransitionKind = iota
	// Automatic transitions are attempted by the engine whenever their source state is entered
	Automatic
)

func (k TransitionKind) String() string {
	switch k {
	case Manual:
		return "manual"
	case Automatic:
		return "automatic"
	default:
		return fmt.Sprintf("TransitionKind(%d)", int(k))
	}
}

// Condition decides whether a transition may fire. A nil Condition always passes.
type Condition func() (bool, error)

// Action runs when a transition fires, after its condition passed and before the state changes
type Action func() error

// Guard adapts a plain predicate into a Condition
func Guard(fn func() bool) Condition {
	if fn == nil {
		return nil
	}
	return func() (bool, error) {
		return fn(), nil
	}
}

// Do adapts a function without error result into an Action
func Do(fn func()) Action {
	if fn == nil {
		return nil
	}
	return func() error {
		fn()
		return nil
	}
}

// Always is a condition that always passes
func Always() (bool, error) { return true, nil }

// Never is a condition that never passes
func Never() (bool, error) { return false, nil }

// All combines conditions so that every one of them must pass. They are
// evaluated in order and evaluation stops at the first false result or error.
// Nil conditions are skipped.
func All(conditions ...Condition) Condition {
	return func() (bool, error) {
		for _, c := range conditions {
			if c == nil {
				continue
			}
			ok, err := c()
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}

// Transition represents a directed edge between two states
type Transition[S comparable] struct {
	From      S
	To        S
	Kind      TransitionKind
	Name      string
	Condition Condition
	Action    Action

	index int
}

// Index returns the registration position of the transition within its machine
func (t *Transition[S]) Index() int {
	return t.index
}

// HasCondition reports whether the transition is guarded
func (t *Transition[S]) HasCondition() bool {
	return t.Condition != nil
}

// HasAction reports whether the transition carries an action
func (t *Transition[S]) HasAction() bool {
	return t.Action != nil
}

func (t *Transition[S]) String() string {
	if t.Name != "" {
		return fmt.Sprintf("%s(%v->%v, %s)", t.Name, t.From, t.To, t.Kind)
	}
	return fmt.Sprintf("%v->%v (%s)", t.From, t.To, t.Kind)
}

// evaluate runs the condition with panic recovery
func (t *Transition[S]) evaluate() (ok bool, err error) {
	if t.Condition == nil {
		return true, nil
	}

	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = &PanicError{Value: r}
		}
	}()

	ok, err = t.Condition()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// execute runs the action with panic recovery
func (t *Transition[S]) execute() (err error) {
	if t.Action == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()

	return t.Action()
}

// TransitionOption configures a transition at registration time
type TransitionOption func(*transitionConfig)

type transitionConfig struct {
	name      string
	condition Condition
	action    Action
}

// WithCondition sets the condition of the transition
func WithCondition(c Condition) TransitionOption {
	return func(cfg *transitionConfig) {
		cfg.condition = c
	}
}

// WithGuard sets a plain predicate as the condition of the transition
func WithGuard(fn func() bool) TransitionOption {
	return func(cfg *transitionConfig) {
		cfg.condition = Guard(fn)
	}
}

// WithAction sets the action of the transition
func WithAction(a Action) TransitionOption {
	return func(cfg *transitionConfig) {
		cfg.action = a
	}
}

// WithActionFunc sets an action that cannot fail
func WithActionFunc(fn func()) TransitionOption {
	return func(cfg *transitionConfig) {
		cfg.action = Do(fn)
	}
}

// WithName labels the transition for logs, faults and diagrams
func WithName(name string) TransitionOption {
	return func(cfg *transitionConfig) {
		cfg.name = name
	}
}
