package config

import "github.com/ayoisaiah/focusguard/internal/apperr"

var (
	errConfigOption = &apperr.Error{
		Message: "config option error",
	}

	errConfigValidation = &apperr.Error{
		Message: "config validation error",
	}

	errReadConfig = &apperr.Error{
		Message: "reading config file failed",
	}

	errWriteConfig = &apperr.Error{
		Message: "writing default config failed",
	}

	errPrompt = &apperr.Error{
		Message: "first-run prompt failed",
	}

	errBreakTooLong = &apperr.Error{
		Message: "break duration (%v) must be less than work duration (%v)",
	}

	errTotalTooShort = &apperr.Error{
		Message: "total duration (%v) must be at least one work phase (%v)",
	}

	errInvalidColor = &apperr.Error{
		Message: "%s color must be a valid hex color code (e.g. #FF0000), got %s",
	}

	errEmptyMsg = &apperr.Error{
		Message: "%s message cannot be empty",
	}

	errInvalidDuration = &apperr.Error{
		Message: "%s duration must be between %v and %v",
	}

	errInvalidCLIDuration = &apperr.Error{
		Message: "invalid %s duration: %v",
	}

	errInvalidFraction = &apperr.Error{
		Message: "emergency access fraction must be greater than 0 and at most 1, got %v",
	}

	errInvalidSinkhole = &apperr.Error{
		Message: "sinkhole address %q must be host:port",
	}

	errInvalidHistoryLimit = &apperr.Error{
		Message: "history limit must be positive, got %d",
	}

	errUnknownCategory = &apperr.Error{
		Message: "blocked category %q has no apps in category_apps",
	}
)

var (
	errNotInBlocklist = &apperr.Error{
		Message: "%q is not in the blocklist",
	}

	errEmptyBlocklistEntry = &apperr.Error{
		Message: "blocklist entries cannot be empty",
	}
)
