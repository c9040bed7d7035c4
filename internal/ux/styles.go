package ux

import "github.com/charmbracelet/lipgloss"

// Semantic colors, shared with the rest of the palette.
var (
	Success     = lipgloss.Color("#8BC34A") // Lime Green
	Destructive = lipgloss.Color("#e53935") // Red
	Info        = lipgloss.Color("#2196F3") // Blue
)

var (
	successStyle = lipgloss.NewStyle().Foreground(Success).Bold(true)
	failureStyle = lipgloss.NewStyle().Foreground(Destructive).Bold(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(Info)
)

const (
	successGlyph = "✓"
	failureGlyph = "✗"
	pendingGlyph = "•"
)

func successLine(msg string) string { return successStyle.Render(successGlyph) + " " + msg }
func failureLine(msg string) string { return failureStyle.Render(failureGlyph) + " " + msg }
