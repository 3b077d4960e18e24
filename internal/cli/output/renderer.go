// Package output renders command results as styled text, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"
)

// Mode selects how results are written.
type Mode string

// Output modes.
const (
	ModeText Mode = "text"
	ModeJSON Mode = "json"
	ModeYAML Mode = "yaml"
)

// Renderer writes command output in one mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	styles *Styles
}

// NewRenderer creates a renderer. Colors are detected from out; unknown
// modes fall back to text.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	return newRenderer(out, errOut, mode, lipgloss.NewRenderer(out))
}

// NewRendererWithProfile creates a renderer that uses the given color
// profile instead of detecting one. termenv.Ascii disables color.
func NewRendererWithProfile(out, errOut io.Writer, mode Mode, profile termenv.Profile) *Renderer {
	lr := lipgloss.NewRenderer(out)
	lr.SetColorProfile(profile)
	return newRenderer(out, errOut, mode, lr)
}

func newRenderer(out, errOut io.Writer, mode Mode, lr *lipgloss.Renderer) *Renderer {
	switch mode {
	case ModeText, ModeJSON, ModeYAML:
	default:
		mode = ModeText
	}
	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		styles: NewStyles(lr),
	}
}

// Mode returns the output mode in effect.
func (r *Renderer) Mode() Mode { return r.mode }

// Writer returns the result stream.
func (r *Renderer) Writer() io.Writer { return r.out }

// ErrWriter returns the diagnostics stream.
func (r *Renderer) ErrWriter() io.Writer { return r.errOut }

// Styles returns the styles bound to the result stream.
func (r *Renderer) Styles() *Styles { return r.styles }

// Println writes a line to the result stream.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text to the result stream.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Warnf writes a formatted diagnostic to the error stream.
func (r *Renderer) Warnf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.errOut, format, a...)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML writes v as a YAML document.
func (r *Renderer) YAML(v any) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
