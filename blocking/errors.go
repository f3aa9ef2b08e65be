package blocking

import "github.com/ayoisaiah/focusguard/internal/apperr"

var (
	// ErrAuthorizationDenied means the user or the platform did not allow a
	// layer to enforce itself. It is never retried automatically.
	ErrAuthorizationDenied = &apperr.Error{
		Message: "%s layer is not authorized",
	}

	// ErrEnforcementFailed means a layer could not be enabled for a reason
	// that may go away on its own.
	ErrEnforcementFailed = &apperr.Error{
		Message: "%s layer could not be enabled",
	}

	errUnknownLevel = &apperr.Error{
		Message: "unknown blocking level %q (expected off, light, strict or maximum)",
	}

	errUnknownLayer = &apperr.Error{
		Message: "unknown blocking layer %q (expected screen_time, focus_mode or network)",
	}

	errLayerUnavailable = &apperr.Error{
		Message: "%s layer is not available",
	}

	errGaveUp = &apperr.Error{
		Message: "%s layer failed on consecutive focus phases and is off for this session",
	}
)
