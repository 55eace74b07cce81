package output

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles used for text output.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	// ID renders tenant ids and product codes.
	ID lipgloss.Style

	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
	StatusSkipped lipgloss.Style
}

// NewStyles builds the style set for a lipgloss renderer. The renderer's
// color profile decides whether escape codes are emitted.
func NewStyles(lr *lipgloss.Renderer) *Styles {
	green := lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}
	yellow := lipgloss.AdaptiveColor{Light: "#A16207", Dark: "#FACC15"}
	red := lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	blue := lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	gray := lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}

	return &Styles{
		Header1: lr.NewStyle().Bold(true).Underline(true),
		Header2: lr.NewStyle().Bold(true).Foreground(blue),
		Bold:    lr.NewStyle().Bold(true),
		Muted:   lr.NewStyle().Foreground(gray),
		ID:      lr.NewStyle().Foreground(blue),

		Success: lr.NewStyle().Foreground(green),
		Warning: lr.NewStyle().Foreground(yellow),
		Error:   lr.NewStyle().Foreground(red).Bold(true),
		Info:    lr.NewStyle().Foreground(blue),

		StatusSuccess: lr.NewStyle().Foreground(green).SetString("✓"),
		StatusFailed:  lr.NewStyle().Foreground(red).SetString("✗"),
		StatusSkipped: lr.NewStyle().Foreground(gray).SetString("-"),
	}
}
