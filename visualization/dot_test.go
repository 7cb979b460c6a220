package visualization_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anggasct/autofsm"
	"github.com/anggasct/autofsm/pkg/logger"
	"github.com/anggasct/autofsm/visualization"
)

func newFader(t *testing.T) *autofsm.StateMachine[string] {
	t.Helper()

	sm, err := autofsm.NewBuilder("Collapsed", autofsm.WithLogger(logger.Discard())).
		Automatic("Collapsed", "FadingIn").Named("fade-in").
		Automatic("FadingIn", "Expanded").When(func() bool { return false }).Do(func() {}).
		Manual("Expanded", "Collapsed").
		Manual("Expanded", "Closed").
		Build()
	require.NoError(t, err)
	return sm
}

func TestDOTGeneration(t *testing.T) {
	sm := newFader(t)

	dotContent, err := visualization.NewDOTGenerator(sm).Generate()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(dotContent, "digraph StateMachine {"))
	assert.Contains(t, dotContent, `"Collapsed" [shape=box style="filled" fillcolor=lightgreen label="Collapsed\n(initial)"];`)
	assert.Contains(t, dotContent, `"Closed" [shape=doublecircle`)
	assert.Contains(t, dotContent, `"Collapsed" -> "FadingIn" [style=dashed label="fade-in"];`)
	assert.Contains(t, dotContent, `"FadingIn" -> "Expanded" [style=dashed label="[guarded] /action"];`)
	assert.Contains(t, dotContent, `"Expanded" -> "Collapsed" [style=solid];`)

	assert.Less(t, strings.Index(dotContent, `"FadingIn" [`), strings.Index(dotContent, `"Expanded" [`),
		"states are listed in order of appearance")
}

func TestDOTGenerationOptions(t *testing.T) {
	sm := newFader(t)
	require.NoError(t, sm.Start())

	options := visualization.DefaultDOTOptions()
	options.ShowGuardConditions = false
	options.ShowActions = false
	options.ShowTransitionNames = false
	options.ShowCurrentState = true
	options.RankDirection = "LR"

	dotContent, err := visualization.NewDOTGenerator(sm, options).Generate()
	require.NoError(t, err)

	assert.Contains(t, dotContent, "rankdir=LR;")
	assert.Contains(t, dotContent, `"FadingIn" -> "Expanded" [style=dashed];`)
	assert.NotContains(t, dotContent, "fade-in")
	assert.Contains(t, dotContent, `style="filled,bold" fillcolor=lightblue label="FadingIn\n(current)"`)
}

func TestDOTGenerationEscapesQuotes(t *testing.T) {
	sm := autofsm.New(`say "hi"`, autofsm.WithLogger(logger.Discard()))

	dotContent, err := visualization.NewDOTGenerator(sm).Generate()
	require.NoError(t, err)

	assert.Contains(t, dotContent, `"say \"hi\""`)
}

func TestDOTGenerationNilMachine(t *testing.T) {
	_, err := visualization.NewDOTGenerator[string](nil).Generate()
	assert.Error(t, err)
}

func TestGenerateToFile(t *testing.T) {
	sm := newFader(t)
	path := filepath.Join(t.TempDir(), "fader.dot")

	require.NoError(t, visualization.NewDOTGenerator(sm).GenerateToFile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"Collapsed" -> "FadingIn"`)
}
