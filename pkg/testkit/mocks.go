// Package testkit holds the shared test doubles and scenario runner used by
// the flow, identity and controller tests.
//
// Collaborator mocks are testify mocks, so callers set expectations the
// usual way:
//
//	auth := new(testkit.MockAuthenticator)
//	auth.OnAuthenticate("a@b.test", "pw").Return(flow.AuthResult{}, nil)
//	...
//	auth.AssertExpectations(t)
package testkit

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/shashiranjanraj/authflow/pkg/flow"
)

// MockAuthenticator is a testify-backed flow.Authenticator.
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, provider string, opts flow.SignInOptions) (flow.AuthResult, error) {
	args := m.Called(ctx, provider, opts)
	res, _ := args.Get(0).(flow.AuthResult)
	return res, args.Error(1)
}

// OnAuthenticate expects a credentials sign-in with redirect disabled.
func (m *MockAuthenticator) OnAuthenticate(email, password string) *mock.Call {
	return m.On("Authenticate", mock.Anything, flow.ProviderCredentials, flow.SignInOptions{
		Redirect: false,
		Email:    email,
		Password: password,
	})
}

// MockAccountCreator is a testify-backed flow.AccountCreator.
type MockAccountCreator struct {
	mock.Mock
}

func (m *MockAccountCreator) CreateAccount(ctx context.Context, form flow.SignUpForm) (*flow.AccountResponse, error) {
	args := m.Called(ctx, form)
	resp, _ := args.Get(0).(*flow.AccountResponse)
	return resp, args.Error(1)
}

// OnCreateAccount expects exactly form.
func (m *MockAccountCreator) OnCreateAccount(form flow.SignUpForm) *mock.Call {
	return m.On("CreateAccount", mock.Anything, form)
}

// NavRecorder is a flow.Navigator that records every path it was sent to.
type NavRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (n *NavRecorder) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

// Paths returns the recorded navigations in order.
func (n *NavRecorder) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

// TransitionRecorder collects the transitions of a flow.
type TransitionRecorder struct {
	mu  sync.Mutex
	all []flow.Transition
}

// Observe is a flow.Observer.
func (r *TransitionRecorder) Observe(t flow.Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = append(r.all, t)
}

// Statuses returns the To status of every recorded transition.
func (r *TransitionRecorder) Statuses() []flow.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]flow.Status, len(r.all))
	for i, t := range r.all {
		out[i] = t.To
	}
	return out
}

// All returns a copy of the recorded transitions.
func (r *TransitionRecorder) All() []flow.Transition {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]flow.Transition(nil), r.all...)
}
