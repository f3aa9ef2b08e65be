// Package report prints user-facing messages
package report

import (
	"os"

	"github.com/pterm/pterm"

	"github.com/ayoisaiah/focusguard/internal/osutil"
)

func Info(format string, a ...any) {
	pterm.Info.Printfln(format, a...)
}

func Success(format string, a ...any) {
	pterm.Success.Printfln(format, a...)
}

func Warn(format string, a ...any) {
	pterm.Warning.Printfln(format, a...)
}

func Error(err error) {
	pterm.Error.Println(err)
}

func Quit(err error) {
	pterm.Error.Println(err)
	os.Exit(int(osutil.ExitError))
}
