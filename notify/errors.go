package notify

import "github.com/ayoisaiah/focusguard/internal/apperr"

var errParseCmd = &apperr.Error{
	Message: "unable to parse settings.cmd",
}
