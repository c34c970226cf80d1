package output

import (
	"fmt"

	"github.com/BackEndTea/sql-parser/pkg/parser"
)

// DefaultErrorFormat numbers each error and shows its message, the text it
// was found near and its code point offset.
const DefaultErrorFormat = `#%d: %s (near "%s" at position %d)`

// ErrorEntry is the machine-readable form of a parser error.
type ErrorEntry struct {
	Kind    string `json:"kind" yaml:"kind"`
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
	Text    string `json:"text" yaml:"text"`
	Line    int    `json:"line" yaml:"line"`
	Column  int    `json:"column" yaml:"column"`
	Offset  int    `json:"offset" yaml:"offset"`
}

// ErrorEntries converts errors for JSON or YAML output.
func ErrorEntries(errs []*parser.Error) []ErrorEntry {
	out := make([]ErrorEntry, 0, len(errs))
	for _, e := range errs {
		out = append(out, ErrorEntry{
			Kind:    e.Kind.String(),
			Code:    e.Code.String(),
			Message: e.Message,
			Text:    e.Text,
			Line:    e.Pos.Line,
			Column:  e.Pos.Column,
			Offset:  e.Pos.Offset,
		})
	}
	return out
}

// FormatErrors renders one line per error. format receives the 1-based
// error number, the message, the offending text and the offset, in that
// order. An empty format uses DefaultErrorFormat.
func FormatErrors(errs []*parser.Error, format string) []string {
	if format == "" {
		format = DefaultErrorFormat
	}
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = fmt.Sprintf(format, i+1, e.Message, e.Text, e.Pos.Offset)
	}
	return lines
}

// Errors prints errors to the error stream, prefixed with name when set.
func (r *Renderer) Errors(name string, errs []*parser.Error, format string) {
	for _, line := range FormatErrors(errs, format) {
		if name != "" {
			line = name + ": " + line
		}
		r.Error(line)
	}
}
