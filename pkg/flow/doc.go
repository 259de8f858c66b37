// Package flow implements the client-side authentication submission flows:
// SignInFlow and SignUpFlow.
//
// A flow is one mounted form view. It owns the form fields and the
// SubmissionResult, moves through idle -> pending -> {success, failure} on
// every Submit, and talks to the outside world only through three
// collaborators: an Authenticator (session authentication), an
// AccountCreator (account creation endpoint) and a Navigator (route
// changes).
//
//	f := flow.NewSignInFlow(auth, nav)
//	res, err := f.Submit(ctx, flow.SignInForm{Email: email, Password: pw})
//	fmt.Println(res.Message)
package flow
