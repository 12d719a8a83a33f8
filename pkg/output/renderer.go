// Package output renders command results as styled terminal text, plain
// text, JSON or YAML.
//
// Structured formats encode the result value directly. Human formats ask
// the value to describe itself through a Printer: results implement View.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/logging"
)

// View is a result that knows its human readable form.
type View interface {
	Write(p *Printer) error
}

// Renderer writes results in one format.
type Renderer struct {
	format Format
	w      io.Writer
}

// NewRenderer creates a renderer. FormatAuto is resolved against w when it
// is a file, and falls back to terminal output otherwise.
func NewRenderer(format Format, w io.Writer) *Renderer {
	if format == FormatAuto {
		format = FormatTerminal
		if f, ok := w.(*os.File); ok {
			format = DetectFormat(f)
		}
	}
	if format == FormatTerminal {
		// lipgloss decides light or dark colors from the real output
		lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(w))
	}
	logger := logging.GetLogger("output")
	logger.Debug().Str("format", format.String()).Msg("Created renderer")
	return &Renderer{format: format, w: w}
}

// Format returns the resolved format
func (r *Renderer) Format() Format { return r.format }

// Render writes v
func (r *Renderer) Render(v any) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(r.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}

	if view, ok := v.(View); ok {
		p := r.printer()
		if err := view.Write(p); err != nil {
			return err
		}
		return p.Err()
	}
	_, err := fmt.Fprintf(r.w, "%+v\n", v)
	return err
}

// errorBody is the structured form of an error.
type errorBody struct {
	Error   string         `json:"error" yaml:"error"`
	Code    string         `json:"code" yaml:"code"`
	Details map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
}

// RenderError writes err with its code
func (r *Renderer) RenderError(err error) error {
	if r.format.Structured() {
		return r.Render(errorBody{
			Error:   err.Error(),
			Code:    string(errors.GetErrorCode(err)),
			Details: errors.GetErrorDetails(err),
		})
	}
	p := r.printer()
	p.Line("%s %s", p.Style("Error", "Error:"), err.Error())
	return p.Err()
}

// RenderMessage writes a one line message in the named style
func (r *Renderer) RenderMessage(style, message string) error {
	if r.format.Structured() {
		return r.Render(map[string]string{"message": message})
	}
	p := r.printer()
	p.Line("%s", p.Style(style, message))
	return p.Err()
}

func (r *Renderer) printer() *Printer {
	return &Printer{w: r.w, styled: r.format == FormatTerminal}
}
