package scheduler

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCircularDependency is the sentinel wrapped by CircularDependencyError.
var ErrCircularDependency = errors.New("circular dependency among plan steps")

// CircularDependencyError names the step ids that could not be placed into
// any batch because their dependency sets never reduce to the done set.
type CircularDependencyError struct {
	RemainingIDs []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("%v: %s", ErrCircularDependency, strings.Join(e.RemainingIDs, ", "))
}

func (e *CircularDependencyError) Unwrap() error { return ErrCircularDependency }

// ErrAgentKindMissing is the sentinel wrapped when no agent is registered
// for a step's selected Kind.
var ErrAgentKindMissing = errors.New("no agent registered for kind")

// ErrNoAgentForKind reports that the scheduler's registry has no agent for
// the given Kind.
func ErrNoAgentForKind(kind Kind) error {
	return fmt.Errorf("%w: %s", ErrAgentKindMissing, kind)
}
