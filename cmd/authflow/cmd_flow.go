package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/authflow/config"
	"github.com/shashiranjanraj/authflow/internal/kernel"
	"github.com/shashiranjanraj/authflow/pkg/flow"
	"github.com/shashiranjanraj/authflow/pkg/metrics"
	"github.com/shashiranjanraj/authflow/pkg/validate"
)

var (
	emailFlag    string
	passwordFlag string
	nameFlag     string
	roleFlag     string
)

// authflow signin
var signinCmd = &cobra.Command{
	Use:   "signin",
	Short: "Sign in against the identity service",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		_, newAuth := kernel.IdentityClients()
		authn, err := newAuth()
		if err != nil {
			return err
		}

		f := flow.NewSignInFlow(authn, navigator(out), cliOptions(out)...)
		f.SetEmail(emailFlag)
		f.SetPassword(passwordFlag)

		form := f.Form()
		if errs := validate.Struct(form); validate.HasErrors(errs) {
			return errors.New(validate.First(errs))
		}

		res, err := f.Submit(cmd.Context(), form)
		return report(out, res, err)
	},
}

// authflow signup
var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account, then sign in with it",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		accounts, newAuth := kernel.IdentityClients()
		authn, err := newAuth()
		if err != nil {
			return err
		}

		role, err := flow.ParseRole(roleFlag)
		if err != nil {
			return err
		}

		f := flow.NewSignUpFlow(accounts, authn, navigator(out), cliOptions(out)...)
		f.SetName(nameFlag)
		f.SetEmail(emailFlag)
		f.SetPassword(passwordFlag)
		f.SetRole(role)

		form := f.Form()
		if errs := validate.Struct(form); validate.HasErrors(errs) {
			return errors.New(validate.First(errs))
		}

		res, err := f.Submit(cmd.Context(), form)
		return report(out, res, err)
	},
}

func init() {
	for _, c := range []*cobra.Command{signinCmd, signupCmd} {
		c.Flags().StringVar(&emailFlag, "email", "", "account email")
		c.Flags().StringVar(&passwordFlag, "password", "", "account password")
	}
	signupCmd.Flags().StringVar(&nameFlag, "name", "", "display name")
	signupCmd.Flags().StringVar(&roleFlag, "role", "", "CUSTOMER or ADMIN")
}

func cliOptions(out io.Writer) []flow.Option {
	return []flow.Option{
		flow.WithLandingPath(config.LandingPath()),
		flow.WithObserver(metrics.FlowObserver()),
		flow.WithObserver(func(t flow.Transition) {
			fmt.Fprintf(out, "  %s: %s → %s\n", t.Flow, t.From, t.To)
		}),
	}
}

func navigator(out io.Writer) flow.Navigator {
	return flow.NavigatorFunc(func(path string) {
		fmt.Fprintf(out, "  → navigate %s\n", path)
	})
}

// report prints the final message and turns a failed submission into an
// error so the process exits non-zero.
func report(out io.Writer, res flow.SubmissionResult, err error) error {
	if res.Message != "" {
		fmt.Fprintln(out, res.Message)
	}
	if err != nil {
		return err
	}
	if res.Status != flow.StatusSuccess {
		return errors.New("submission failed")
	}
	return nil
}
