package network

import "github.com/ayoisaiah/focusguard/internal/apperr"

var (
	errMalformedHosts = &apperr.Error{
		Message: "hosts file has an unterminated focusguard block",
	}

	errInvalidDomain = &apperr.Error{
		Message: "invalid domain %q",
	}
)
