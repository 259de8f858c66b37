package flow

import (
	"context"
	"fmt"
	"net/http"
)

// SignUpFlow is the sign-up form view.
type SignUpFlow struct {
	view
	accounts AccountCreator
	auth     Authenticator
	nav      Navigator
	form     SignUpForm
}

// NewSignUpFlow mounts an empty sign-up view. Role starts unset.
func NewSignUpFlow(accounts AccountCreator, auth Authenticator, nav Navigator, opts ...Option) *SignUpFlow {
	return &SignUpFlow{
		view:     newView("signup", opts),
		accounts: accounts,
		auth:     auth,
		nav:      nav,
	}
}

func (f *SignUpFlow) SetName(v string)     { f.edit(func() { f.form.Name = v }) }
func (f *SignUpFlow) SetEmail(v string)    { f.edit(func() { f.form.Email = v }) }
func (f *SignUpFlow) SetPassword(v string) { f.edit(func() { f.form.Password = v }) }
func (f *SignUpFlow) SetRole(r Role)       { f.edit(func() { f.form.Role = r }) }

// Form returns the current field values.
func (f *SignUpFlow) Form() SignUpForm {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

// Submit creates the account described by form and settles the view.
//
// On a 2xx reply the fields are reset, the submitted credentials are used
// for a chained sign-in, and the flow navigates to the landing route whether
// or not that sign-in succeeded. On any other status the view fails with the
// server's error string and keeps the fields.
func (f *SignUpFlow) Submit(ctx context.Context, form SignUpForm) (SubmissionResult, error) {
	if err := f.begin(func() { f.form = form }); err != nil {
		return f.Result(), err
	}
	log := f.logger(ctx)

	resp, err := f.accounts.CreateAccount(ctx, form)
	if err == nil && resp == nil {
		err = ErrNoResponse
	}
	if err != nil {
		log.Error("account creation call failed", "error", err)
		out, _ := f.settle(StatusFailure, MsgUnavailable, nil)
		return out, fmt.Errorf("flow: create account: %w", err)
	}

	if !resp.OK() {
		log.Info("account creation rejected", "status", resp.StatusCode, "reason", resp.Error)
		out, ok := f.settle(StatusFailure, failurePrefix+accountError(resp), nil)
		if !ok {
			return out, ErrUnmounted
		}
		return out, nil
	}

	// The reset below clears the fields; the chained sign-in must use what
	// was submitted.
	email, password := form.credentials()

	out, ok := f.settle(StatusSuccess, MsgSignUpSuccess, func() { f.form = SignUpForm{} })
	if !ok {
		return out, ErrUnmounted
	}
	log.Info("account created", "role", form.Role)

	res, err := f.auth.Authenticate(ctx, ProviderCredentials, SignInOptions{
		Redirect: false,
		Email:    email,
		Password: password,
	})
	switch {
	case err != nil:
		log.Warn("chained sign-in call failed", "error", err)
	case !res.OK():
		log.Warn("chained sign-in rejected", "reason", res.Error)
	}

	f.nav.Navigate(f.opts.landing)
	return out, nil
}

func accountError(resp *AccountResponse) string {
	if resp.Error != "" {
		return resp.Error
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}
