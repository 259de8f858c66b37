package flow

import (
	"context"
	"fmt"
)

// SignInFlow is the sign-in form view.
type SignInFlow struct {
	view
	auth Authenticator
	nav  Navigator
	form SignInForm
}

// NewSignInFlow mounts an empty sign-in view.
func NewSignInFlow(auth Authenticator, nav Navigator, opts ...Option) *SignInFlow {
	return &SignInFlow{
		view: newView("signin", opts),
		auth: auth,
		nav:  nav,
	}
}

// SetEmail applies an email input event.
func (f *SignInFlow) SetEmail(v string) { f.edit(func() { f.form.Email = v }) }

// SetPassword applies a password input event.
func (f *SignInFlow) SetPassword(v string) { f.edit(func() { f.form.Password = v }) }

// Form returns the current field values.
func (f *SignInFlow) Form() SignInForm {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

// Submit authenticates with form and settles the view. Field presence is the
// caller's concern. On success the flow navigates to the landing route.
//
// A rejected submission (ErrSubmissionPending, ErrUnmounted) leaves the view
// untouched. A transport failure settles the view as failed with
// MsgUnavailable and is returned wrapped.
func (f *SignInFlow) Submit(ctx context.Context, form SignInForm) (SubmissionResult, error) {
	if err := f.begin(func() { f.form = form }); err != nil {
		return f.Result(), err
	}
	log := f.logger(ctx)

	res, err := f.auth.Authenticate(ctx, ProviderCredentials, SignInOptions{
		Redirect: false,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		log.Error("sign-in call failed", "error", err)
		out, _ := f.settle(StatusFailure, MsgUnavailable, nil)
		return out, fmt.Errorf("flow: authenticate: %w", err)
	}

	if !res.OK() {
		log.Info("sign-in rejected", "reason", res.Error)
		out, ok := f.settle(StatusFailure, MsgSignInFailure, nil)
		if !ok {
			return out, ErrUnmounted
		}
		return out, nil
	}

	out, ok := f.settle(StatusSuccess, MsgSignInSuccess, nil)
	if !ok {
		return out, ErrUnmounted
	}
	log.Info("signed in", "landing", f.opts.landing)
	f.nav.Navigate(f.opts.landing)
	return out, nil
}
