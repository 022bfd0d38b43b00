// Package style provides shared UI styling primitives including brand colors
// and icons for consistent visual presentation across the CLI.
package style

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/verso/internal/core/domain"
)

// Brand Colors.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	White  = lipgloss.Color("#FFFFFF")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Tilde   = "~"
	Dot     = "●"
	Circle  = "○"
)

// ColorProfile returns the color profile for the current terminal.
// NO_COLOR forces Ascii.
func ColorProfile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// Palette holds the styles of one renderer.
type Palette struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Muted   lipgloss.Style
	Done    lipgloss.Style
	Pending lipgloss.Style
	Running lipgloss.Style
	Failed  lipgloss.Style
	Cached  lipgloss.Style
}

// NewPalette creates the styles for r.
func NewPalette(r *lipgloss.Renderer) Palette {
	return Palette{
		Title:   r.NewStyle().Bold(true).Padding(0, 1).Background(Iris).Foreground(White),
		Header:  r.NewStyle().Bold(true).Foreground(Iris).Padding(0, 1),
		Muted:   r.NewStyle().Foreground(Slate),
		Done:    r.NewStyle().Foreground(Green),
		Pending: r.NewStyle().Foreground(Slate),
		Running: r.NewStyle().Foreground(Yellow).Bold(true),
		Failed:  r.NewStyle().Foreground(Red),
		Cached:  r.NewStyle().Foreground(Slate).Faint(true),
	}
}

// Stage returns the style and icon of a pipeline state.
func (p Palette) Stage(s domain.Stage) (lipgloss.Style, string) {
	switch s {
	case domain.StageDone:
		return p.Done, Check
	case domain.StageFailed:
		return p.Failed, Cross
	case domain.StagePending:
		return p.Pending, Circle
	default:
		return p.Running, Dot
	}
}
