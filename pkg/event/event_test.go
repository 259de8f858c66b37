package event

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/authflow/pkg/flow"
)

func TestFireRunsListenersInOrder(t *testing.T) {
	t.Cleanup(Flush)

	var got []string
	Listen(AccountCreated, func(p interface{}) { got = append(got, "a:"+p.(string)) })
	Listen(AccountCreated, func(p interface{}) { got = append(got, "b:"+p.(string)) })
	Fire(AccountCreated, "x")
	Fire("unrelated", "y")

	assert.Equal(t, []string{"a:x", "b:x"}, got)
}

func TestFireAsync(t *testing.T) {
	t.Cleanup(Flush)

	var calls atomic.Int32
	for i := 0; i < 2; i++ {
		Listen(AccountCreated, func(interface{}) { calls.Add(1) })
	}
	FireAsync(AccountCreated, nil)
	Wait()

	assert.EqualValues(t, 2, calls.Load())
}

func TestFlowObserverForwardsTransitions(t *testing.T) {
	t.Cleanup(Flush)

	var seen []flow.Status
	Listen(FlowTransition, func(p interface{}) { seen = append(seen, p.(flow.Transition).To) })

	obs := FlowObserver()
	obs(flow.Transition{Flow: "signin", To: flow.StatusPending})
	obs(flow.Transition{Flow: "signin", To: flow.StatusSuccess})

	assert.Equal(t, []flow.Status{flow.StatusPending, flow.StatusSuccess}, seen)
}
