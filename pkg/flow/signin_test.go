package flow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/authflow/pkg/flow"
	"github.com/shashiranjanraj/authflow/pkg/logger"
	"github.com/shashiranjanraj/authflow/pkg/testkit"
)

var signInForm = flow.SignInForm{Email: "ada@example.com", Password: "correct horse"}

func newSignIn(t *testing.T, auth flow.Authenticator, opts ...flow.Option) (*flow.SignInFlow, *testkit.NavRecorder, *testkit.TransitionRecorder) {
	t.Helper()
	nav := &testkit.NavRecorder{}
	rec := &testkit.TransitionRecorder{}
	opts = append([]flow.Option{flow.WithLogger(logger.Discard()), flow.WithObserver(rec.Observe)}, opts...)
	return flow.NewSignInFlow(auth, nav, opts...), nav, rec
}

func TestSignIn_Success(t *testing.T) {
	auth := new(testkit.MockAuthenticator)
	auth.OnAuthenticate(signInForm.Email, signInForm.Password).Return(flow.AuthResult{URL: "http://id.test/"}, nil).Once()

	f, nav, rec := newSignIn(t, auth)
	assert.Equal(t, flow.StatusIdle, f.Result().Status)

	res, err := f.Submit(context.Background(), signInForm)
	require.NoError(t, err)

	assert.Equal(t, flow.SubmissionResult{Status: flow.StatusSuccess, Message: "✅ Logged in successfully!"}, res)
	assert.Equal(t, res, f.Result())
	assert.Equal(t, []string{"/"}, nav.Paths())
	assert.Equal(t, []flow.Status{flow.StatusPending, flow.StatusSuccess}, rec.Statuses())
	assert.Equal(t, signInForm, f.Form())
	auth.AssertExpectations(t)
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	auth := new(testkit.MockAuthenticator)
	auth.OnAuthenticate(signInForm.Email, signInForm.Password).Return(flow.AuthResult{Error: "CredentialsSignin"}, nil)

	f, nav, rec := newSignIn(t, auth)
	res, err := f.Submit(context.Background(), signInForm)
	require.NoError(t, err)

	assert.Equal(t, flow.StatusFailure, res.Status)
	assert.Equal(t, "❌ Invalid email or password", res.Message)
	assert.Empty(t, nav.Paths())
	assert.Equal(t, []flow.Status{flow.StatusPending, flow.StatusFailure}, rec.Statuses())
	assert.Equal(t, signInForm, f.Form(), "form stays editable with its values")
}

func TestSignIn_RepeatedFailuresAreIdempotent(t *testing.T) {
	auth := new(testkit.MockAuthenticator)
	auth.OnAuthenticate(signInForm.Email, signInForm.Password).Return(flow.AuthResult{Error: "CredentialsSignin"}, nil).Times(3)

	f, _, rec := newSignIn(t, auth)
	for i := 0; i < 3; i++ {
		res, err := f.Submit(context.Background(), signInForm)
		require.NoError(t, err)
		assert.Equal(t, flow.MsgSignInFailure, res.Message)
		assert.False(t, f.Result().Pending())
	}
	assert.Equal(t, []flow.Status{
		flow.StatusPending, flow.StatusFailure,
		flow.StatusPending, flow.StatusFailure,
		flow.StatusPending, flow.StatusFailure,
	}, rec.Statuses())
	auth.AssertExpectations(t)
}

func TestSignIn_TransportFailure(t *testing.T) {
	boom := errors.New("connection refused")
	auth := new(testkit.MockAuthenticator)
	auth.OnAuthenticate(signInForm.Email, signInForm.Password).Return(flow.AuthResult{}, boom)

	f, nav, _ := newSignIn(t, auth)
	res, err := f.Submit(context.Background(), signInForm)

	require.ErrorIs(t, err, boom)
	assert.Equal(t, flow.SubmissionResult{Status: flow.StatusFailure, Message: flow.MsgUnavailable}, res)
	assert.False(t, f.Result().Pending())
	assert.Empty(t, nav.Paths())
}

func TestSignIn_PassesRedirectFalseAndProvider(t *testing.T) {
	var got flow.SignInOptions
	var provider string
	auth := flow.AuthenticatorFunc(func(_ context.Context, p string, opts flow.SignInOptions) (flow.AuthResult, error) {
		provider, got = p, opts
		return flow.AuthResult{}, nil
	})

	f, _, _ := newSignIn(t, auth)
	_, err := f.Submit(context.Background(), signInForm)
	require.NoError(t, err)

	assert.Equal(t, "credentials", provider)
	assert.False(t, got.Redirect)
	assert.Equal(t, signInForm.Email, got.Email)
	assert.Equal(t, signInForm.Password, got.Password)
}

func TestSignIn_PendingNeverOverlapsTerminal(t *testing.T) {
	auth := new(testkit.MockAuthenticator)
	auth.OnAuthenticate(signInForm.Email, signInForm.Password).Return(flow.AuthResult{}, nil)

	var f *flow.SignInFlow
	var seen []flow.SubmissionResult
	f = flow.NewSignInFlow(auth, &testkit.NavRecorder{},
		flow.WithLogger(logger.Discard()),
		flow.WithObserver(func(tr flow.Transition) {
			seen = append(seen, f.Result())
			assert.Equal(t, tr.To, f.Result().Status, "observer sees the state it is told about")
		}),
	)

	_, err := f.Submit(context.Background(), signInForm)
	require.NoError(t, err)
	require.Len(t, seen, 2)
	assert.Equal(t, flow.SubmissionResult{Status: flow.StatusPending}, seen[0], "pending clears the prior message")
	assert.Equal(t, flow.StatusSuccess, seen[1].Status)
}

func TestSignIn_RejectsSubmissionWhilePending(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	auth := new(testkit.MockAuthenticator)
	auth.OnAuthenticate(signInForm.Email, signInForm.Password).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(flow.AuthResult{}, nil).Once()

	f, nav, _ := newSignIn(t, auth)

	done := make(chan flow.SubmissionResult)
	go func() {
		res, _ := f.Submit(context.Background(), signInForm)
		done <- res
	}()
	<-started

	assert.True(t, f.Result().Pending())
	res, err := f.Submit(context.Background(), signInForm)
	assert.ErrorIs(t, err, flow.ErrSubmissionPending)
	assert.True(t, res.Pending())

	close(release)
	select {
	case res := <-done:
		assert.Equal(t, flow.StatusSuccess, res.Status)
	case <-time.After(5 * time.Second):
		t.Fatal("first submission never settled")
	}
	assert.Equal(t, []string{"/"}, nav.Paths())
	auth.AssertExpectations(t)
}

func TestSignIn_UnmountDropsLateResult(t *testing.T) {
	var f *flow.SignInFlow
	auth := flow.AuthenticatorFunc(func(context.Context, string, flow.SignInOptions) (flow.AuthResult, error) {
		f.Unmount()
		return flow.AuthResult{}, nil
	})
	nav := &testkit.NavRecorder{}
	f = flow.NewSignInFlow(auth, nav, flow.WithLogger(logger.Discard()))

	_, err := f.Submit(context.Background(), signInForm)
	assert.ErrorIs(t, err, flow.ErrUnmounted)
	assert.Empty(t, nav.Paths())

	_, err = f.Submit(context.Background(), signInForm)
	assert.ErrorIs(t, err, flow.ErrUnmounted)
}

func TestSignIn_InputEventsAndLandingPath(t *testing.T) {
	auth := new(testkit.MockAuthenticator)
	auth.OnAuthenticate("typed@example.com", "pw").Return(flow.AuthResult{}, nil)

	f, nav, _ := newSignIn(t, auth, flow.WithLandingPath("/dashboard"))
	f.SetEmail("typed@example.com")
	f.SetPassword("pw")

	_, err := f.Submit(context.Background(), f.Form())
	require.NoError(t, err)
	assert.Equal(t, []string{"/dashboard"}, nav.Paths())
}

func TestSignIn_TransitionTiming(t *testing.T) {
	auth := new(testkit.MockAuthenticator)
	auth.OnAuthenticate(signInForm.Email, signInForm.Password).Return(flow.AuthResult{Error: "x"}, nil)

	f, _, rec := newSignIn(t, auth)
	_, err := f.Submit(context.Background(), signInForm)
	require.NoError(t, err)

	all := rec.All()
	require.Len(t, all, 2)
	assert.Equal(t, "signin", all[0].Flow)
	assert.Equal(t, flow.StatusIdle, all[0].From)
	assert.Equal(t, flow.StatusPending, all[1].From)
	assert.Equal(t, flow.MsgSignInFailure, all[1].Message)
	assert.GreaterOrEqual(t, all[1].Elapsed, time.Duration(0))
}
