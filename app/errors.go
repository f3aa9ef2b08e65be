package app

import "github.com/ayoisaiah/focusguard/internal/apperr"

var (
	errUnexpectedArgs = &apperr.Error{
		Message: "unexpected argument %q: use --title to name the task",
	}

	errNoSavedSession = &apperr.Error{
		Message: "there is no interrupted session to resume",
	}

	errTaskNotFound = &apperr.Error{
		Message: "no task matches %q",
	}

	errAmbiguousTask = &apperr.Error{
		Message: "%q matches more than one task: use a longer prefix",
	}

	errTaskCompleted = &apperr.Error{
		Message: "task %q is already complete",
	}

	errMissingTitle = &apperr.Error{
		Message: "a task needs a title: use --title",
	}

	errMissingArgs = &apperr.Error{
		Message: "expected at least one argument",
	}

	errConflictingFlags = &apperr.Error{
		Message: "--app and --category cannot be used together",
	}

	errLayerArg = &apperr.Error{
		Message: "expected exactly one layer: screen_time, focus_mode or network",
	}
)

var errUnknownCategory = &apperr.Error{
	Message: "unknown category %q: define its applications under blocking.category_apps",
}
