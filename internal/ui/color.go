// Package ui holds the colour and table helpers of the non-interactive
// commands
package ui

import (
	"github.com/pterm/pterm"

	"github.com/ayoisaiah/focusguard/blocking"
)

// DarkTheme selects the light variants of each colour.
var DarkTheme bool

func Green(a any) string {
	if DarkTheme {
		return pterm.LightGreen(a)
	}

	return pterm.Green(a)
}

func Cyan(a any) string {
	if DarkTheme {
		return pterm.LightCyan(a)
	}

	return pterm.Cyan(a)
}

func Yellow(a any) string {
	if DarkTheme {
		return pterm.LightYellow(a)
	}

	return pterm.Yellow(a)
}

func Red(a any) string {
	if DarkTheme {
		return pterm.LightRed(a)
	}

	return pterm.Red(a)
}

func Highlight(a any) string {
	if DarkTheme {
		return pterm.LightWhite(a)
	}

	return pterm.Black(a)
}

// Outcome colours the result of arming a layer.
func Outcome(o blocking.Outcome) string {
	switch o {
	case blocking.Armed:
		return Green(o)
	case blocking.Failed:
		return Red(o)
	case blocking.SkippedUnauthorized, blocking.SkippedOverride:
		return Yellow(o)
	default:
		return Cyan(o)
	}
}

// Progress colours a completion percentage.
func Progress(pct float64) string {
	s := pterm.Sprintf("%.0f%%", pct)

	if pct >= 100 {
		return Green(s)
	}

	return Cyan(s)
}
