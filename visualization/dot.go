// Package visualization renders state machine transition graphs in Graphviz formats
package visualization

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/anggasct/autofsm"
)

// DOTGenerator generates Graphviz DOT format representations of state machines
type DOTGenerator[S comparable] struct {
	machine *autofsm.StateMachine[S]
	options DOTOptions
}

// DOTOptions configures the DOT generation
type DOTOptions struct {
	ShowGuardConditions bool
	ShowActions         bool
	ShowTransitionNames bool
	// ShowCurrentState outlines the state the machine is in when Generate runs
	ShowCurrentState bool
	RankDirection    string // "TB", "LR", "BT", "RL"
	NodeShape        string
	ManualStyle      string
	AutomaticStyle   string
}

// DefaultDOTOptions returns sensible default options for DOT generation
func DefaultDOTOptions() DOTOptions {
	return DOTOptions{
		ShowGuardConditions: true,
		ShowActions:         true,
		ShowTransitionNames: true,
		ShowCurrentState:    false,
		RankDirection:       "TB",
		NodeShape:           "box",
		ManualStyle:         "solid",
		AutomaticStyle:      "dashed",
	}
}

// NewDOTGenerator creates a new DOT generator for the given machine
func NewDOTGenerator[S comparable](sm *autofsm.StateMachine[S], options ...DOTOptions) *DOTGenerator[S] {
	opts := DefaultDOTOptions()
	if len(options) > 0 {
		opts = options[0]
	}

	return &DOTGenerator[S]{
		machine: sm,
		options: opts,
	}
}

// Generate creates a DOT representation of the state machine
func (g *DOTGenerator[S]) Generate() (string, error) {
	if g.machine == nil {
		return "", fmt.Errorf("no state machine to render")
	}

	var dot strings.Builder

	dot.WriteString("digraph StateMachine {\n")
	dot.WriteString(fmt.Sprintf("  rankdir=%s;\n", g.options.RankDirection))
	dot.WriteString(fmt.Sprintf("  node [shape=%s];\n", g.options.NodeShape))
	dot.WriteString("  edge [fontsize=10];\n\n")

	transitions := g.machine.Transitions()
	g.generateStates(&dot, transitions)
	dot.WriteString("\n")
	g.generateTransitions(&dot, transitions)

	dot.WriteString("}\n")

	return dot.String(), nil
}

// generateStates writes one node per state in order of first appearance
func (g *DOTGenerator[S]) generateStates(dot *strings.Builder, transitions []*autofsm.Transition[S]) {
	initial := g.machine.InitialState()
	states := []S{initial}
	seen := map[S]bool{initial: true}
	outgoing := make(map[S]bool)

	for _, t := range transitions {
		outgoing[t.From] = true
		for _, s := range []S{t.From, t.To} {
			if !seen[s] {
				seen[s] = true
				states = append(states, s)
			}
		}
	}

	dot.WriteString("  // States\n")
	for _, state := range states {
		g.generateStateNode(dot, state, state == initial, !outgoing[state])
	}
}

// generateStateNode generates a DOT node for a single state
func (g *DOTGenerator[S]) generateStateNode(dot *strings.Builder, state S, isInitial, isTerminal bool) {
	shape := g.options.NodeShape
	fillColor := "lightblue"
	style := "filled"
	id := stateID(state)
	label := escape(fmt.Sprint(state))

	if isInitial {
		fillColor = "lightgreen"
		label += "\\n(initial)"
	} else if isTerminal {
		shape = "doublecircle"
		fillColor = "lightcoral"
	}

	if g.options.ShowCurrentState && g.machine.Started() && g.machine.IsInState(state) {
		style = "filled,bold"
		label += "\\n(current)"
	}

	dot.WriteString(fmt.Sprintf("  %s [shape=%s style=\"%s\" fillcolor=%s label=\"%s\"];\n",
		id, shape, style, fillColor, label))
}

// generateTransitions generates DOT edges for all transitions in registration order
func (g *DOTGenerator[S]) generateTransitions(dot *strings.Builder, transitions []*autofsm.Transition[S]) {
	dot.WriteString("  // Transitions\n")

	for _, t := range transitions {
		style := g.options.ManualStyle
		if t.Kind == autofsm.Automatic {
			style = g.options.AutomaticStyle
		}

		attrs := fmt.Sprintf("style=%s", style)
		if label := g.edgeLabel(t); label != "" {
			attrs += fmt.Sprintf(" label=\"%s\"", label)
		}

		dot.WriteString(fmt.Sprintf("  %s -> %s [%s];\n", stateID(t.From), stateID(t.To), attrs))
	}
}

func (g *DOTGenerator[S]) edgeLabel(t *autofsm.Transition[S]) string {
	var parts []string
	if g.options.ShowTransitionNames && t.Name != "" {
		parts = append(parts, escape(t.Name))
	}
	if g.options.ShowGuardConditions && t.HasCondition() {
		parts = append(parts, "[guarded]")
	}
	if g.options.ShowActions && t.HasAction() {
		parts = append(parts, "/action")
	}
	return strings.Join(parts, " ")
}

// GenerateToFile writes the DOT representation to a file
func (g *DOTGenerator[S]) GenerateToFile(filename string) error {
	content, err := g.Generate()
	if err != nil {
		return err
	}

	return os.WriteFile(filename, []byte(content), 0644)
}

// GenerateSVG creates an SVG representation of the state machine by calling Graphviz
func (g *DOTGenerator[S]) GenerateSVG() (string, error) {
	dotContent, err := g.Generate()
	if err != nil {
		return "", err
	}

	cmd := exec.Command("dot", "-Tsvg")
	cmd.Stdin = strings.NewReader(dotContent)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to execute dot command: %w (make sure Graphviz is installed)", err)
	}

	return out.String(), nil
}

func stateID[S comparable](state S) string {
	return "\"" + escape(fmt.Sprint(state)) + "\""
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "\\\"")
}
