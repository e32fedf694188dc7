package report

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/nao1215/leakscan/internal/model"
)

// JSONWriter outputs reports in the {target, type, breaches, stats, checked_at} shape.
// A single report is written as an object, several as an array.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs one report as a JSON object.
func (w *JSONWriter) Write(report *model.Report) (int, error) {
	return w.writeJSON(report.ForDisplay())
}

// WriteAll outputs the reports as a JSON array.
func (w *JSONWriter) WriteAll(reports []*model.Report) (int, error) {
	return w.writeJSON(displayAll(reports))
}

// writeJSON encodes v followed by a newline. HTML characters in breach
// descriptions are left unescaped.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if w.indent {
		enc.SetIndent(w.indentPrefix, w.indentString)
	}
	if err := enc.Encode(v); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}
