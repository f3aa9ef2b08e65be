package store

import "github.com/ayoisaiah/focusguard/internal/apperr"

var (
	errFocusRunning = &apperr.Error{
		Message: "is focusguard already running? Only one instance can be active at a time",
	}

	errTaskNotFound = &apperr.Error{
		Message: "task %q not found",
	}

	errCorruptSnapshot = &apperr.Error{
		Message: "saved session is unreadable",
	}
)
