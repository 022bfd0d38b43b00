// Package report renders manifests and run reports for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
	"go.trai.ch/verso/internal/core/domain"
	"go.trai.ch/verso/internal/engine/orchestrator"
	"go.trai.ch/verso/internal/ui/style"
)

// Printer writes styled reports to one writer.
type Printer struct {
	w       io.Writer
	palette style.Palette
}

// NewPrinter creates a Printer for w using the terminal color profile.
func NewPrinter(w io.Writer) *Printer {
	return NewPrinterWithProfile(w, style.ColorProfile())
}

// NewPrinterWithProfile creates a Printer for w with a fixed color profile.
func NewPrinterWithProfile(w io.Writer, profile termenv.Profile) *Printer {
	r := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	return &Printer{w: w, palette: style.NewPalette(r)}
}

// Status prints one row per (revision, module) of m.
func (p *Printer) Status(m *domain.Manifest) error {
	if m == nil || len(m.Revisions) == 0 {
		_, err := fmt.Fprintln(p.w, p.palette.Muted.Render("no revisions versioned yet"))
		return err
	}

	var states []domain.Stage
	var rows [][]string
	for _, rm := range m.Revisions {
		for _, rec := range rm.Modules {
			_, icon := p.palette.Stage(rec.State)
			rows = append(rows, []string{
				rm.Revision.String(),
				rec.Name,
				icon + " " + string(rec.State),
				rec.TargetNamespace,
				yesNo(rec.Installable),
				artifacts(rec.Artifacts),
			})
			states = append(states, rec.State)
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.palette.Muted).
		Headers("REVISION", "MODULE", "STATE", "NAMESPACE", "INSTALLABLE", "ARTIFACTS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.palette.Header
			}
			if col == 2 && row >= 0 && row < len(states) {
				s, _ := p.palette.Stage(states[row])
				return s.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	_, err := fmt.Fprintf(p.w, "%s\n%s\n", p.palette.Title.Render(fmt.Sprintf("manifest v%d", m.Version)), t.Render())
	return err
}

// Run prints the outcome of every module of r.
func (p *Printer) Run(r *orchestrator.Report) error {
	if r == nil {
		return nil
	}

	var b strings.Builder
	b.WriteString(p.palette.Title.Render("revision "+r.Revision.String()) + "\n")
	for _, m := range r.Modules {
		s, icon := p.palette.Stage(m.Stage)
		line := s.Render(icon) + " " + m.Module + " " + p.palette.Muted.Render(string(m.Stage))
		switch {
		case m.Cached:
			line = p.palette.Cached.Render(style.Tilde) + " " + m.Module + " " + p.palette.Cached.Render("up to date")
		case m.Err != nil:
			line += " " + p.palette.Failed.Render(style.Warning+" "+firstLine(m.Err.Error()))
		}
		b.WriteString(line + "\n")
	}
	_, err := io.WriteString(p.w, b.String())
	return err
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func artifacts(recs []domain.ArtifactRecord) string {
	if len(recs) == 0 {
		return "-"
	}
	names := make([]string, len(recs))
	for i, r := range recs {
		names[i] = r.RenamedName
	}
	return strings.Join(names, ",")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
