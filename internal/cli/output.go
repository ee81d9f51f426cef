// Package cli provides the command-line interface for the signal decision
// pipeline.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Output writes command results as colored text or, with --json, as
// indented JSON. Color is dropped automatically on non-terminal writers.
type Output struct {
	w        io.Writer
	jsonMode bool

	good *color.Color
	bad  *color.Color
	warn *color.Color
	note *color.Color
	bold *color.Color
	dim  *color.Color
}

// NewOutput builds an Output bound to the command's stdout, honoring the
// persistent --json flag.
func NewOutput(cmd *cobra.Command) *Output {
	jsonMode, _ := cmd.Flags().GetBool("json")
	o := &Output{
		w:        cmd.OutOrStdout(),
		jsonMode: jsonMode,
		good:     color.New(color.FgGreen),
		bad:      color.New(color.FgRed),
		warn:     color.New(color.FgYellow),
		note:     color.New(color.FgCyan),
		bold:     color.New(color.Bold),
		dim:      color.New(color.Faint),
	}
	if jsonMode {
		for _, c := range []*color.Color{o.good, o.bad, o.warn, o.note, o.bold, o.dim} {
			c.DisableColor()
		}
	}
	return o
}

// IsJSON reports whether --json was requested.
func (o *Output) IsJSON() bool {
	return o.jsonMode
}

// JSON writes data as indented JSON.
func (o *Output) JSON(data interface{}) error {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// Println writes a plain line.
func (o *Output) Println(args ...interface{}) {
	fmt.Fprintln(o.w, args...)
}

// Printf writes plain formatted text.
func (o *Output) Printf(format string, args ...interface{}) {
	fmt.Fprintf(o.w, format, args...)
}

// Success writes a green line.
func (o *Output) Success(format string, args ...interface{}) {
	o.line(o.good, format, args...)
}

// Error writes a red line.
func (o *Output) Error(format string, args ...interface{}) {
	o.line(o.bad, format, args...)
}

// Warning writes a yellow line.
func (o *Output) Warning(format string, args ...interface{}) {
	o.line(o.warn, format, args...)
}

// Info writes a cyan line.
func (o *Output) Info(format string, args ...interface{}) {
	o.line(o.note, format, args...)
}

// Bold writes a bold line.
func (o *Output) Bold(format string, args ...interface{}) {
	o.line(o.bold, format, args...)
}

// Dim writes a faint line.
func (o *Output) Dim(format string, args ...interface{}) {
	o.line(o.dim, format, args...)
}

func (o *Output) line(c *color.Color, format string, args ...interface{}) {
	c.Fprintf(o.w, format+"\n", args...)
}
