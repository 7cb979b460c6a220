package observers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/anggasct/autofsm"
)

func TestMetricsObserver_TimeSpent(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	o := NewMetricsObserver[string]()
	o.now = func() time.Time { return clock }

	o.OnStateChanged(autofsm.StateChangedEvent[string]{To: "Collapsed", Initial: true})
	clock = clock.Add(2 * time.Second)
	o.OnStateChanged(autofsm.StateChangedEvent[string]{From: "Collapsed", To: "FadingIn"})
	clock = clock.Add(300 * time.Millisecond)
	o.OnStateChanged(autofsm.StateChangedEvent[string]{From: "FadingIn", To: "Collapsed"})
	clock = clock.Add(time.Second)
	o.OnStateChanged(autofsm.StateChangedEvent[string]{From: "Collapsed", To: "FadingIn"})

	assert.Equal(t, map[string]time.Duration{
		"Collapsed": 3 * time.Second,
		"FadingIn":  300 * time.Millisecond,
	}, o.GetStateTimeSpent())
	assert.Equal(t, 2, o.GetTransitionCounts()["Collapsed->FadingIn"])
}

func TestMetricsObserver_Attempts(t *testing.T) {
	o := NewMetricsObserver[string]()
	tr := &autofsm.Transition[string]{From: "A", To: "B"}

	o.OnConditionEvaluated(tr, true)
	o.OnConditionEvaluated(tr, false)
	o.OnAttemptDropped(tr, "C")
	o.OnFault(autofsm.FaultEvent[string]{Phase: autofsm.PhaseChain})

	passed, rejected := o.GetConditionCounts()
	assert.Equal(t, 1, passed)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 1, o.GetDroppedCount())
	assert.Equal(t, 1, o.GetFaultCountByPhase(autofsm.PhaseChain))
	assert.Zero(t, o.GetFaultCountByPhase(autofsm.PhaseCondition))
}
