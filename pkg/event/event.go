// Package event is an in-process event dispatcher. The identity service fires
// AccountCreated; flows publish transitions through FlowObserver.
package event

import (
	"errors"
	"sync"

	"github.com/shashiranjanraj/authflow/pkg/flow"
	"github.com/shashiranjanraj/authflow/pkg/logger"
	"github.com/shashiranjanraj/authflow/pkg/workerpool"
)

const asyncWorkers = 4

// Event names.
const (
	AccountCreated = "account.created"
	FlowTransition = "flow.transition"
)

// Handler is a function that receives an event payload.
type Handler func(payload interface{})

var (
	mu       sync.RWMutex
	handlers = map[string][]Handler{}

	poolOnce sync.Once
	pool     *workerpool.Pool
)

func asyncPool() *workerpool.Pool {
	poolOnce.Do(func() { pool = workerpool.New("events", asyncWorkers) })
	return pool
}

// Listen registers a handler for the given event name.
func Listen(event string, handler Handler) {
	mu.Lock()
	defer mu.Unlock()
	handlers[event] = append(handlers[event], handler)
}

func listeners(event string) []Handler {
	mu.RLock()
	defer mu.RUnlock()
	hs := make([]Handler, len(handlers[event]))
	copy(hs, handlers[event])
	return hs
}

// Fire dispatches an event synchronously to all registered listeners.
func Fire(event string, payload interface{}) {
	for _, h := range listeners(event) {
		h(payload)
	}
}

// FireAsync queues the event for every listener on the shared event pool and
// returns. When the queue is full the listener is skipped and logged.
func FireAsync(event string, payload interface{}) {
	for _, h := range listeners(event) {
		h := h
		err := asyncPool().Submit(func() { h(payload) })
		if errors.Is(err, workerpool.ErrPoolFull) {
			logger.Warn("event: async queue full, listener skipped", "event", event)
		}
	}
}

// Wait blocks until every async listener queued so far has run.
func Wait() {
	asyncPool().Wait()
}

// FlowObserver fires FlowTransition with the flow.Transition as payload.
func FlowObserver() flow.Observer {
	return func(t flow.Transition) {
		Fire(FlowTransition, t)
	}
}

// Flush removes all listeners (useful in tests).
func Flush() {
	mu.Lock()
	defer mu.Unlock()
	handlers = map[string][]Handler{}
}
