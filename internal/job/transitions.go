package job

import (
	"fmt"
	"strings"
)

// Action names a lifecycle operation.
type Action string

const (
	ActionStart      Action = "start"
	ActionMarkOnSite Action = "mark-on-site"
	ActionPause      Action = "pause"
	ActionResume     Action = "resume"
	ActionComplete   Action = "complete"
	ActionCancel     Action = "cancel"
	ActionReschedule Action = "reschedule"
)

// Policy decides whether source-state preconditions are enforced.
type Policy int

const (
	// PolicyPermissive applies every operation regardless of the current status.
	// One exception: pausing a job that is already paused keeps its existing
	// PreviousStatus instead of overwriting it with "paused".
	PolicyPermissive Policy = iota
	// PolicyStrict rejects operations whose source status is not in the transition
	// table, and every operation on a terminal job.
	PolicyStrict
)

// anyStatus marks actions that accept every non-terminal source status.
var anyStatus []Status

// transitions maps each action to the source statuses it is intended for.
var transitions = map[Action][]Status{
	ActionStart:      {StatusConfirmed},
	ActionMarkOnSite: {StatusEnRoute},
	ActionPause:      {StatusOnSite},
	ActionResume:     {StatusPaused},
	ActionComplete:   {StatusOnSite, StatusEnRoute},
	ActionCancel:     anyStatus,
	ActionReschedule: anyStatus,
}

// CanApply reports whether action is an intended transition out of from.
func CanApply(action Action, from Status) bool {
	if from.Terminal() {
		return false
	}
	sources, ok := transitions[action]
	if !ok {
		return false
	}
	if sources == nil {
		return true
	}
	for _, s := range sources {
		if s == from {
			return true
		}
	}
	return false
}

func (p Policy) check(action Action, from Status) error {
	if p == PolicyPermissive || CanApply(action, from) {
		return nil
	}
	return &TransitionError{Action: action, From: from}
}

// TransitionError reports an operation rejected under PolicyStrict.
type TransitionError struct {
	Action Action
	From   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a job that is %s", e.Action.verb(), e.From)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

func (a Action) verb() string {
	return strings.ReplaceAll(string(a), "-", " ")
}

func (p Policy) String() string {
	if p == PolicyStrict {
		return "strict"
	}
	return "permissive"
}
