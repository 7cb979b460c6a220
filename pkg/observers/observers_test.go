package observers_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anggasct/autofsm"
	"github.com/anggasct/autofsm/pkg/logger"
	"github.com/anggasct/autofsm/pkg/observers"
)

func newPanel(t *testing.T, opts ...autofsm.Option) *autofsm.StateMachine[string] {
	t.Helper()

	sm, err := autofsm.NewBuilder("Collapsed", append([]autofsm.Option{autofsm.WithLogger(logger.Discard())}, opts...)...).
		Automatic("Collapsed", "FadingIn").Do(func() {}).
		Automatic("FadingIn", "Expanded").
		Manual("Expanded", "Collapsed").
		Manual("Expanded", "Broken").Run(func() error { return errors.New("no such panel") }).
		Build()
	require.NoError(t, err)
	return sm
}

func TestLoggingObserver(t *testing.T) {
	t.Run("logs lifecycle through slog", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithFormat(logger.FormatJSON),
			logger.WithLevel(slog.LevelDebug),
		)
		sm := newPanel(t, autofsm.WithObserver[string](observers.NewLoggingObserver[string](log, "panel")))

		require.NoError(t, sm.Start())
		require.NoError(t, sm.Fire("Expanded", "Broken"))

		out := buf.String()
		assert.Contains(t, out, `"msg":"entered initial state"`)
		assert.Contains(t, out, `"msg":"state changed"`)
		assert.Contains(t, out, `"from":"FadingIn","to":"Expanded"`)
		assert.Contains(t, out, `"msg":"condition evaluated"`)
		assert.Contains(t, out, `"msg":"fault"`)
		assert.Contains(t, out, `"phase":"action"`)
		assert.Contains(t, out, `"component":"panel"`)
	})

	t.Run("info level hides attempt details", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf))
		sm := newPanel(t, autofsm.WithObserver[string](observers.NewLoggingObserver[string](log, "")))

		require.NoError(t, sm.Start())

		out := buf.String()
		assert.Contains(t, out, "state changed")
		assert.NotContains(t, out, "condition evaluated")
		assert.NotContains(t, out, "component=")
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		assert.NotPanics(t, func() {
			o := observers.NewLoggingObserver[string](nil, "x")
			o.OnMachineStarted("Collapsed")
		})
		assert.NotNil(t, observers.NewDefaultLoggingObserver[string]())
	})
}

func TestMetricsObserver_WithMachine(t *testing.T) {
	metrics := observers.NewMetricsObserver[string]()
	sm := newPanel(t, autofsm.WithObserver[string](metrics))

	require.NoError(t, sm.Start())
	require.NoError(t, sm.Fire("Expanded", "Broken"))
	require.NoError(t, sm.Fire("Expanded", "Collapsed"))

	assert.Equal(t, map[string]int{
		"Collapsed->FadingIn": 2,
		"FadingIn->Expanded":  2,
		"Expanded->Collapsed": 1,
	}, metrics.GetTransitionCounts())
	assert.Equal(t, map[string]int{"Collapsed": 2, "FadingIn": 2, "Expanded": 2}, metrics.GetStateVisitCounts())
	assert.Equal(t, 1, metrics.GetFaultCount())
	assert.Equal(t, 1, metrics.GetFaultCountByPhase(autofsm.PhaseAction))
	assert.Equal(t, 2, metrics.GetActionCount())

	passed, rejected := metrics.GetConditionCounts()
	assert.Equal(t, 6, passed)
	assert.Zero(t, rejected)

	metrics.Reset()
	assert.Empty(t, metrics.GetTransitionCounts())
	assert.Zero(t, metrics.GetFaultCount())
}

func TestValidationObserver(t *testing.T) {
	t.Run("reports unvisited states and faults", func(t *testing.T) {
		validator := observers.NewValidationObserver[string]()
		sm := newPanel(t, autofsm.WithObserver[string](validator))
		validator.ExpectMachine(sm)

		require.NoError(t, sm.Start())
		assert.False(t, validator.HasViolations())
		assert.Equal(t, []string{"Broken"}, validator.GetUnvisitedStates())

		require.NoError(t, sm.Fire("Expanded", "Broken"))
		require.True(t, validator.HasViolations())
		assert.Contains(t, validator.GetViolations()[0], "no such panel")
	})

	t.Run("flags transitions outside the allowed set", func(t *testing.T) {
		validator := observers.NewValidationObserver[string]()
		validator.AddAllowedTransition("Collapsed", "FadingIn")
		validator.AddAllowedTransition("FadingIn", "Collapsed")
		sm := newPanel(t, autofsm.WithObserver[string](validator))

		require.NoError(t, sm.Start())

		assert.Equal(t, []string{"invalid transition from 'FadingIn' to 'Expanded'"}, validator.GetViolations())

		validator.Reset()
		assert.False(t, validator.HasViolations())
	})
}
