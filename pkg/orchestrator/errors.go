package orchestrator

import "errors"

var (
	// ErrNoPendingApproval is returned by SubmitApproval when no task is
	// currently blocked on an approval checkpoint under that id.
	ErrNoPendingApproval = errors.New("orchestrator: no pending approval for task")
	// ErrTaskNotFound is returned when an operation names an unknown task id.
	ErrTaskNotFound = errors.New("orchestrator: task not found")
	// ErrBundleNotFound is returned by GetBundle for an unknown bundle id.
	ErrBundleNotFound = errors.New("orchestrator: bundle not found")
)
