package flow

import "time"

// Status is the submission state shown by a form view.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSuccess
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends a submission.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailure
}

// User-facing messages.
const (
	MsgSignInFailure = "❌ Invalid email or password"
	MsgSignInSuccess = "✅ Logged in successfully!"
	MsgSignUpSuccess = "✅ Account created successfully! You can now log in."
	MsgUnavailable   = "❌ Something went wrong. Please try again."

	failurePrefix = "❌ "
)

// SubmissionResult is the derived UI state of a view.
type SubmissionResult struct {
	Status  Status
	Message string
}

// Pending reports whether a submission is outstanding. The submit control is
// disabled while this holds.
func (r SubmissionResult) Pending() bool { return r.Status == StatusPending }

// Transition is one status change published to observers.
type Transition struct {
	Flow    string
	From    Status
	To      Status
	Message string
	At      time.Time
	// Elapsed is the time spent pending; zero unless To is terminal.
	Elapsed time.Duration
}

// Observer receives every Transition of a flow, synchronously and in order.
type Observer func(Transition)
