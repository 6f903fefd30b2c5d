// Package ui renders run reports for the terminal.
package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette — muted, dark-terminal friendly.
var (
	purple = lipgloss.Color("99")
	green  = lipgloss.Color("76")
	red    = lipgloss.Color("204")
	yellow = lipgloss.Color("214")
	dim    = lipgloss.Color("243")
)

var (
	AccentStyle  = lipgloss.NewStyle().Foreground(purple)
	SuccessStyle = lipgloss.NewStyle().Foreground(green)
	ErrorStyle   = lipgloss.NewStyle().Foreground(red)
	WarnStyle    = lipgloss.NewStyle().Foreground(yellow)
	MutedStyle   = lipgloss.NewStyle().Foreground(dim)
)

var plain = termenv.EnvColorProfile() == termenv.Ascii

func style(s lipgloss.Style, text string) string {
	if plain {
		return text
	}
	return s.Render(text)
}

func Accent(s string) string  { return style(AccentStyle, s) }
func Success(s string) string { return style(SuccessStyle, s) }
func Warn(s string) string    { return style(WarnStyle, s) }
func Muted(s string) string   { return style(MutedStyle, s) }
func Error(s string) string   { return style(ErrorStyle, s) }
