package autofsm

// Builder provides a fluent interface for declaring a machine's transitions
//
//	sm, err := autofsm.NewBuilder(Collapsed, autofsm.WithExecutor(loop)).
//		Automatic(Collapsed, FadingIn).
//		Automatic(FadingIn, Expanded).When(animationDone).Do(focus).
//		Manual(Expanded, Collapsed).
//		Build()
type Builder[S comparable] struct {
	initial     S
	opts        []Option
	transitions []*TransitionBuilder[S]
}

// TransitionBuilder handles transition configuration with inline conditions and actions
type TransitionBuilder[S comparable] struct {
	builder    *Builder[S]
	kind       TransitionKind
	from       S
	to         S
	opts       []TransitionOption
	conditions []Condition
}

// NewBuilder creates a builder for a machine starting in initial
func NewBuilder[S comparable](initial S, opts ...Option) *Builder[S] {
	return &Builder[S]{
		initial: initial,
		opts:    opts,
	}
}

// Automatic declares an automatic transition
func (b *Builder[S]) Automatic(from, to S) *TransitionBuilder[S] {
	return b.add(Automatic, from, to)
}

// Manual declares a manual transition
func (b *Builder[S]) Manual(from, to S) *TransitionBuilder[S] {
	return b.add(Manual, from, to)
}

func (b *Builder[S]) add(kind TransitionKind, from, to S) *TransitionBuilder[S] {
	tb := &TransitionBuilder[S]{
		builder: b,
		kind:    kind,
		from:    from,
		to:      to,
	}
	b.transitions = append(b.transitions, tb)
	return tb
}

// Build creates the machine and registers every declared transition in declaration order
func (b *Builder[S]) Build() (*StateMachine[S], error) {
	sm := New(b.initial, b.opts...)
	for _, tb := range b.transitions {
		opts := tb.opts
		switch len(tb.conditions) {
		case 0:
		case 1:
			opts = append(opts, WithCondition(tb.conditions[0]))
		default:
			opts = append(opts, WithCondition(All(tb.conditions...)))
		}

		var err error
		if tb.kind == Automatic {
			_, err = sm.AddAutomaticTransition(tb.from, tb.to, opts...)
		} else {
			_, err = sm.AddManualTransition(tb.from, tb.to, opts...)
		}
		if err != nil {
			return nil, err
		}
	}
	return sm, nil
}

// BuildValid builds the machine and rejects it when Validate reports issues
func (b *Builder[S]) BuildValid() (*StateMachine[S], error) {
	sm, err := b.Build()
	if err != nil {
		return nil, err
	}
	if err := sm.Validate(); err != nil {
		return nil, err
	}
	return sm, nil
}

// When guards the transition with a predicate. Repeated guards must all pass.
func (tb *TransitionBuilder[S]) When(guard func() bool) *TransitionBuilder[S] {
	tb.conditions = append(tb.conditions, Guard(guard))
	return tb
}

// Unless guards the transition with the negation of a predicate
func (tb *TransitionBuilder[S]) Unless(guard func() bool) *TransitionBuilder[S] {
	tb.conditions = append(tb.conditions, Guard(func() bool { return !guard() }))
	return tb
}

// If guards the transition with a condition that may fail
func (tb *TransitionBuilder[S]) If(condition Condition) *TransitionBuilder[S] {
	tb.conditions = append(tb.conditions, condition)
	return tb
}

// Do attaches an action that cannot fail
func (tb *TransitionBuilder[S]) Do(action func()) *TransitionBuilder[S] {
	tb.opts = append(tb.opts, WithActionFunc(action))
	return tb
}

// Run attaches an action that may fail
func (tb *TransitionBuilder[S]) Run(action Action) *TransitionBuilder[S] {
	tb.opts = append(tb.opts, WithAction(action))
	return tb
}

// Named labels the transition
func (tb *TransitionBuilder[S]) Named(name string) *TransitionBuilder[S] {
	tb.opts = append(tb.opts, WithName(name))
	return tb
}

// Automatic declares the next automatic transition
func (tb *TransitionBuilder[S]) Automatic(from, to S) *TransitionBuilder[S] {
	return tb.builder.Automatic(from, to)
}

// Manual declares the next manual transition
func (tb *TransitionBuilder[S]) Manual(from, to S) *TransitionBuilder[S] {
	return tb.builder.Manual(from, to)
}

// Build finishes the declaration
func (tb *TransitionBuilder[S]) Build() (*StateMachine[S], error) {
	return tb.builder.Build()
}

// BuildValid finishes the declaration and validates the machine
func (tb *TransitionBuilder[S]) BuildValid() (*StateMachine[S], error) {
	return tb.builder.BuildValid()
}
