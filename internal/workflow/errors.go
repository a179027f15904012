// Package workflow implements the status state machines of the portal:
// volunteer approval, incident lifecycle, assignment lifecycle and
// training session scheduling.
//
// Every transition is a pure function over a loaded record.  It checks the
// actor's capabilities, validates the request, checks the source state and
// only then mutates the record, so a failed transition leaves the record
// untouched.  Persisting the result is the caller's job.
package workflow

import "errors"

var (
	// ErrInvalid marks malformed transition input (unknown target status,
	// blank rejection reason, missing responders).
	ErrInvalid = errors.New("invalid request")

	// ErrForbidden marks an actor that lacks the capability or identity
	// required for the transition.
	ErrForbidden = errors.New("not permitted")

	// ErrStateConflict marks a transition that is not allowed from the
	// record's current status.
	ErrStateConflict = errors.New("state conflict")
)
