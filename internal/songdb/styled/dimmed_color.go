package styled

import "github.com/fatih/color"

// DimmedColor returns a dimmed *color.Color to print secondary information.
func DimmedColor() *color.Color {
	return color.RGB(128, 128, 128)
}

// ErrorColor returns the *color.Color used for error messages.
func ErrorColor() *color.Color {
	return color.New(color.FgRed, color.Bold)
}
