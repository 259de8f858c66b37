package flow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shashiranjanraj/authflow/pkg/logger"
)

// Option configures a flow.
type Option func(*options)

type options struct {
	landing   string
	log       *slog.Logger
	observers []Observer
	now       func() time.Time
}

func defaultOptions() options {
	return options{landing: "/", now: time.Now}
}

// WithLandingPath sets the route navigated to after a successful submission.
func WithLandingPath(path string) Option {
	return func(o *options) {
		if path != "" {
			o.landing = path
		}
	}
}

// WithLogger pins the flow's logger. Without it the flow logs through
// logger.WithCtx of the submission context.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithObserver registers an observer of every status change.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

// view is the state machine shared by both flows. mu guards result,
// unmounted, startedAt and the embedding flow's form.
type view struct {
	name string
	opts options

	mu        sync.Mutex
	result    SubmissionResult
	unmounted bool
	startedAt time.Time
}

func newView(name string, opts []Option) view {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return view{name: name, opts: o}
}

func (v *view) logger(ctx context.Context) *slog.Logger {
	l := v.opts.log
	if l == nil {
		l = logger.WithCtx(ctx)
	}
	return l.With("flow", v.name)
}

// Result returns the current submission state.
func (v *view) Result() SubmissionResult {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.result
}

// Unmount discards the view. Results arriving afterwards are dropped and
// further submissions fail with ErrUnmounted.
func (v *view) Unmount() {
	v.mu.Lock()
	v.unmounted = true
	v.mu.Unlock()
}

// edit applies an input event to the form fields.
func (v *view) edit(fn func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.unmounted {
		fn()
	}
}

// begin moves the view to pending and clears the message. prepare runs under
// the lock before the transition, to load the submitted fields.
func (v *view) begin(prepare func()) error {
	v.mu.Lock()
	if v.unmounted {
		v.mu.Unlock()
		return ErrUnmounted
	}
	if v.result.Status == StatusPending {
		v.mu.Unlock()
		return ErrSubmissionPending
	}
	if prepare != nil {
		prepare()
	}
	from := v.result.Status
	now := v.opts.now()
	v.result = SubmissionResult{Status: StatusPending}
	v.startedAt = now
	v.mu.Unlock()

	v.publish(Transition{Flow: v.name, From: from, To: StatusPending, At: now})
	return nil
}

// settle clears pending and records the terminal state in one step. mutate
// runs under the same lock. It reports false when the view was unmounted
// while the call was outstanding; nothing is changed then.
func (v *view) settle(status Status, msg string, mutate func()) (SubmissionResult, bool) {
	v.mu.Lock()
	if v.unmounted {
		res := v.result
		v.mu.Unlock()
		return res, false
	}
	if mutate != nil {
		mutate()
	}
	now := v.opts.now()
	from := v.result.Status
	v.result = SubmissionResult{Status: status, Message: msg}
	res := v.result
	elapsed := now.Sub(v.startedAt)
	v.mu.Unlock()

	v.publish(Transition{Flow: v.name, From: from, To: status, Message: msg, At: now, Elapsed: elapsed})
	return res, true
}

func (v *view) publish(t Transition) {
	for _, obs := range v.opts.observers {
		obs(t)
	}
}
