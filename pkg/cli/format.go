// Package cli provides shared formatting helpers for the lanemap CLI.
package cli

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// colorEnabled is false when NO_COLOR env var is set (per no-color.org) or
// stdout is not a terminal.
var colorEnabled = os.Getenv("NO_COLOR") == "" && term.IsTerminal(int(os.Stdout.Fd()))

// SetColor forces color output on or off.
func SetColor(on bool) {
	colorEnabled = on
}

// ColorEnabled reports whether color codes are emitted.
func ColorEnabled() bool {
	return colorEnabled
}

func wrap(code, s string) string {
	if !colorEnabled {
		return s
	}
	return code + s + "\033[0m"
}

// Green wraps s in ANSI green.
func Green(s string) string { return wrap("\033[32m", s) }

// Yellow wraps s in ANSI yellow.
func Yellow(s string) string { return wrap("\033[33m", s) }

// Red wraps s in ANSI red.
func Red(s string) string { return wrap("\033[31m", s) }

// Bold wraps s in ANSI bold.
func Bold(s string) string { return wrap("\033[1m", s) }

// Dim wraps s in ANSI dim.
func Dim(s string) string { return wrap("\033[2m", s) }

// Status renders a validation or publish outcome.
func Status(ok bool) string {
	if ok {
		return Green("OK")
	}
	return Red("FAIL")
}

// DotPad pads name with dots to the given width.
// Example: DotPad("wedge400", 20) → "wedge400 ..........."
func DotPad(name string, width int) string {
	if width <= 0 || len(name) >= width-1 {
		return name
	}
	dots := width - len(name) - 1
	return name + " " + strings.Repeat(".", dots)
}

// OrDash returns "-" for empty values.
func OrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
