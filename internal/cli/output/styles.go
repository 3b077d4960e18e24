package output

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	colorSuccess = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}
	colorError   = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	colorAccent  = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#C4B5FD"}
)

// Styles holds the text styles used by text output.
type Styles struct {
	Header1     lipgloss.Style
	Header2     lipgloss.Style
	Bold        lipgloss.Style
	Muted       lipgloss.Style
	Success     lipgloss.Style
	Error       lipgloss.Style
	Placeholder lipgloss.Style
}

// NewStyles creates styles bound to r, so color is dropped when r does not
// write to a terminal.
func NewStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header1:     r.NewStyle().Bold(true).Foreground(colorPrimary),
		Header2:     r.NewStyle().Bold(true).Underline(true),
		Bold:        r.NewStyle().Bold(true),
		Muted:       r.NewStyle().Foreground(colorMuted),
		Success:     r.NewStyle().Foreground(colorSuccess),
		Error:       r.NewStyle().Bold(true).Foreground(colorError),
		Placeholder: r.NewStyle().Foreground(colorAccent),
	}
}
