package logging

import "github.com/ayoisaiah/focusguard/internal/apperr"

var errLogDir = &apperr.Error{
	Message: "unable to create log directory",
}
