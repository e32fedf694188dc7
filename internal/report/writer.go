package report

import (
	"io"
	"strings"

	"github.com/nao1215/leakscan/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs one report.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.Report) (int, error)

	// WriteAll outputs several reports as one document.
	WriteAll(reports []*model.Report) (int, error)
}

// Format selects a Writer implementation.
type Format string

const (
	// FormatText is the human-readable terminal format.
	FormatText Format = "text"
	// FormatJSON is the machine-readable format.
	FormatJSON Format = "json"
	// FormatMarkdown is the shareable document format.
	FormatMarkdown Format = "markdown"
)

// New returns the Writer for format. Unknown formats fall back to text.
func New(output io.Writer, format Format, verbose bool) Writer {
	switch format {
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint())
	case FormatMarkdown:
		return NewMarkdownWriter(output)
	default:
		return NewSimpleWriter(output, WithVerbose(verbose))
	}
}

// displayAll returns display copies of reports, skipping nil entries.
// pipeline.BatchProcessor never yields nil reports, so the result keeps the
// input order and length for batch output.
func displayAll(reports []*model.Report) []*model.Report {
	out := make([]*model.Report, 0, len(reports))
	for _, r := range reports {
		if r != nil {
			out = append(out, r.ForDisplay())
		}
	}
	return out
}

// dataClasses renders leaked data classes for display, e.g. "Email Addresses, Passwords".
func dataClasses(f model.Finding) string {
	if len(f.DataLeaked) == 0 {
		return "-"
	}
	caser := cases.Title(language.English)
	names := make([]string, len(f.DataLeaked))
	for i, class := range f.DataLeaked {
		names[i] = caser.String(class)
	}
	return strings.Join(names, ", ")
}

// status summarizes a report in one line.
func status(r *model.Report) string {
	switch {
	case r.Cancelled:
		return "Cancelled (partial results)"
	case r.Type() == model.KindUnknown:
		return "Not checked (empty target)"
	case r.Password != nil && r.Password.Compromised():
		return "COMPROMISED"
	case r.Exposed():
		return "EXPOSED"
	default:
		return "No known exposure"
	}
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
