// Package display renders prayer times for the terminal.
//
// Colours follow NO_COLOR (https://no-color.org/) and are disabled when
// stdout is piped or redirected. FORCE_COLOR turns them back on.
package display

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	boldStyle   = color.New(color.Bold)
	dimStyle    = color.New(color.Faint)
	greenStyle  = color.New(color.FgGreen)
	yellowStyle = color.New(color.FgYellow)
	redStyle    = color.New(color.FgRed)
	cyanStyle   = color.New(color.FgCyan)
	grayStyle   = color.New(color.FgHiBlack)
	accentStyle = color.New(color.Bold, color.FgCyan)
)

func init() {
	color.NoColor = !shouldEnable()
}

func shouldEnable() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if _, ok := os.LookupEnv("FORCE_COLOR"); ok {
		return true
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// SetEnabled overrides the detected colour state.
func SetEnabled(b bool) {
	color.NoColor = !b
}

// Enabled reports whether colour output is active.
func Enabled() bool {
	return !color.NoColor
}

// Bold returns text rendered in bold.
func Bold(text string) string { return boldStyle.Sprint(text) }

// Dim returns text rendered faint.
func Dim(text string) string { return dimStyle.Sprint(text) }

// Green returns text rendered in green.
func Green(text string) string { return greenStyle.Sprint(text) }

// Yellow returns text rendered in yellow.
func Yellow(text string) string { return yellowStyle.Sprint(text) }

// Red returns text rendered in red. Used for the error state.
func Red(text string) string { return redStyle.Sprint(text) }

// Cyan returns text rendered in cyan.
func Cyan(text string) string { return cyanStyle.Sprint(text) }

// Gray returns text rendered in gray (bright black).
func Gray(text string) string { return grayStyle.Sprint(text) }

// Accent highlights the next prayer (bold cyan).
func Accent(text string) string { return accentStyle.Sprint(text) }

// Boldf formats and bolds a string.
func Boldf(format string, a ...any) string {
	return Bold(fmt.Sprintf(format, a...))
}
