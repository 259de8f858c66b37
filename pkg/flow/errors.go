package flow

import "errors"

var (
	// ErrSubmissionPending is returned by Submit while an earlier submission
	// of the same view is still outstanding.
	ErrSubmissionPending = errors.New("flow: submission already pending")
	// ErrUnmounted is returned by Submit after Unmount.
	ErrUnmounted = errors.New("flow: view unmounted")
	// ErrNoResponse is reported when an AccountCreator returns neither a
	// response nor an error.
	ErrNoResponse = errors.New("flow: no response from account endpoint")
)
