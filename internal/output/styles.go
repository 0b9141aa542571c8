package output

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles holds all lipgloss styles for text output
var Styles = struct {
	// Summary styles
	Header  lipgloss.Style
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Info    lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Danger  lipgloss.Style

	// Picker styles
	Selected lipgloss.Style
	Help     lipgloss.Style
}{
	// Summary
	Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(lipgloss.Color("239")),
	Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
	Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	Value:   lipgloss.NewStyle().Bold(true),
	Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
	Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),  // Green
	Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true), // Orange
	Danger:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true), // Red

	// Picker
	Selected: lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("39")),
	Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
}

// CheckStyle returns the style for a doctor check status
func CheckStyle(status string) lipgloss.Style {
	switch status {
	case CheckOK:
		return Styles.Success
	case CheckWarn:
		return Styles.Warning
	case CheckFail:
		return Styles.Danger
	default:
		return Styles.Muted
	}
}

// CheckIndicator returns a styled status marker
func CheckIndicator(status string) string {
	style := CheckStyle(status)
	switch status {
	case CheckOK:
		return style.Render("[OK]  ")
	case CheckWarn:
		return style.Render("[WARN]")
	case CheckFail:
		return style.Render("[FAIL]")
	default:
		return style.Render("[SKIP]")
	}
}

// StatusText returns styled overall status text
func StatusText(hasWarnings, hasFailures bool) string {
	if hasFailures {
		return Styles.Danger.Render("PROBLEMS FOUND")
	}
	if hasWarnings {
		return Styles.Warning.Render("WARNINGS")
	}
	return Styles.Success.Render("OK")
}
