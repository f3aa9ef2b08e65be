package timer

import "github.com/ayoisaiah/focusguard/internal/apperr"

var (
	errInvalidTask = &apperr.Error{
		Message: "task needs a positive block and total length and a non-negative break length",
	}

	errRestoreMismatch = &apperr.Error{
		Message: "saved session belongs to task %s, not %s",
	}

	errUnknownPhase = &apperr.Error{
		Message: "unknown session phase: %q",
	}

	errStrictMode = &apperr.Error{
		Message: "focus phases cannot be paused at the maximum blocking level",
	}

	errSessionClosed = &apperr.Error{
		Message: "the session has already ended",
	}
)
