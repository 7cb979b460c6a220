package autofsm

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the registered transitions for configurations that can
// never behave as intended. It reports, joined into one error:
//   - automatic transitions the scheduler never reaches because an earlier
//     unconditioned candidate from the same state always wins
//   - cycles of unconditioned automatic transitions, which always run into
//     the chain limit
//   - states no transition path from the initial state can enter
func (sm *StateMachine[S]) Validate() error {
	transitions := sm.Transitions()

	automatic := make(map[S][]*Transition[S])
	edges := make(map[S][]S)
	var order []S
	seen := make(map[S]bool)
	visit := func(s S) {
		if !seen[s] {
			seen[s] = true
			order = append(order, s)
		}
	}

	visit(sm.initial)
	for _, t := range transitions {
		visit(t.From)
		visit(t.To)
		edges[t.From] = append(edges[t.From], t.To)
		if t.Kind == Automatic {
			automatic[t.From] = append(automatic[t.From], t)
		}
	}

	var errs []error
	issue := func(format string, args ...any) {
		errs = append(errs, NewConfigurationError("StateMachine", fmt.Sprintf(format, args...), ErrInvalidConfiguration))
	}

	for _, s := range order {
		candidates := automatic[s]
		for i, t := range candidates {
			if t.HasCondition() {
				continue
			}
			for _, shadowed := range candidates[i+1:] {
				issue("automatic transition %s is never evaluated, %s always fires first", shadowed, t)
			}
			break
		}
	}

	// next follows the automatic transition that always wins from s
	next := func(s S) (S, bool) {
		if candidates := automatic[s]; len(candidates) > 0 && !candidates[0].HasCondition() {
			return candidates[0].To, true
		}
		var zero S
		return zero, false
	}

	reported := make(map[S]bool)
	for _, start := range order {
		path := []S{start}
		onPath := map[S]int{start: 0}
		for s := start; ; {
			to, ok := next(s)
			if !ok || reported[to] {
				break
			}
			if idx, loop := onPath[to]; loop {
				cycle := append(path[idx:], to)
				for _, c := range cycle {
					reported[c] = true
				}
				issue("unconditioned automatic cycle %s", joinStates(cycle))
				break
			}
			onPath[to] = len(path)
			path = append(path, to)
			s = to
		}
	}

	reachable := map[S]bool{sm.initial: true}
	queue := []S{sm.initial}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, to := range edges[s] {
			if !reachable[to] {
				reachable[to] = true
				queue = append(queue, to)
			}
		}
	}
	for _, s := range order {
		if !reachable[s] {
			issue("state %v is unreachable from initial state %v", s, sm.initial)
		}
	}

	return errors.Join(errs...)
}

func joinStates[S comparable](states []S) string {
	parts := make([]string, len(states))
	for i, s := range states {
		parts[i] = fmt.Sprint(s)
	}
	return strings.Join(parts, " -> ")
}
