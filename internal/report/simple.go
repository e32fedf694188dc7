package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/leakscan/internal/model"
	"github.com/olekukonko/tablewriter"
)

const ruleWidth = 70

// SimpleWriter outputs human-readable text reports with a findings table.
type SimpleWriter struct {
	baseWriter

	// verbose adds breach descriptions below the table.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables breach descriptions.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs one report.
func (w *SimpleWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder
	if err := w.render(&sb, report.ForDisplay()); err != nil {
		return 0, err
	}
	w.writeFooter(&sb)
	return io.WriteString(w.output, sb.String())
}

// WriteAll outputs the reports one after another with a single footer.
func (w *SimpleWriter) WriteAll(reports []*model.Report) (int, error) {
	var sb strings.Builder
	for _, r := range displayAll(reports) {
		if err := w.render(&sb, r); err != nil {
			return 0, err
		}
	}
	w.writeFooter(&sb)
	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) render(sb *strings.Builder, report *model.Report) error {
	w.writeHeader(sb, report)
	w.writeStats(sb, report)
	return w.writeBreaches(sb, report)
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.Report) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                          LEAKSCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Target:      %s\n", report.Target.Value())
	fmt.Fprintf(sb, "Type:        %s\n", report.Type())
	fmt.Fprintf(sb, "Checked At:  %s\n", report.CheckedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Status:      %s\n", status(report))
	sb.WriteString("\n")
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeStats(sb *strings.Builder, report *model.Report) {
	switch {
	case report.Password != nil:
		m := report.Password
		section(sb, "PASSWORD STRENGTH")
		fmt.Fprintf(sb, "  Entropy:     %s bits\n", strconv.FormatFloat(m.Entropy, 'f', -1, 64))
		fmt.Fprintf(sb, "  Crack Time:  %s\n", m.CrackTime)
		fmt.Fprintf(sb, "  Score:       %d / 100\n", m.Score)
		fmt.Fprintf(sb, "  Leak Count:  %d\n", m.LeakCount)
		fmt.Fprintf(sb, "  Level:       %s\n", m.Level())
		sb.WriteString("\n")
	case report.Risk != nil:
		r := report.Risk
		section(sb, "RISK")
		fmt.Fprintf(sb, "  Risk Score:  %d / 100 (%s)\n", r.RiskScore, r.Level)
		if r.FirstSeen != "" {
			fmt.Fprintf(sb, "  First Seen:  %s\n", r.FirstSeen)
		}
		sb.WriteString("\n")
	}
}

func (w *SimpleWriter) writeBreaches(sb *strings.Builder, report *model.Report) error {
	if report.Type() == model.KindUnknown {
		return nil
	}

	section(sb, "BREACHES")

	findings := report.Breaches.Findings()
	if len(findings) == 0 {
		sb.WriteString("  No breaches found\n\n")
		return nil
	}

	table := tablewriter.NewWriter(sb)
	table.Header("#", "Breach", "Year", "Source", "Data Leaked")
	for i, f := range findings {
		row := []string{
			strconv.Itoa(i + 1),
			f.Name,
			f.Year,
			f.SourceType,
			truncateString(dataClasses(f), 60),
		}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to render breach table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render breach table: %w", err)
	}
	sb.WriteString("\n")

	if w.verbose {
		for _, f := range findings {
			if f.Description != "" {
				fmt.Fprintf(sb, "  * %s\n    %s\n", f.Name, f.Description)
			}
		}
		sb.WriteString("\n")
	}
	return nil
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("Report generated by leakscan\n")
	sb.WriteString("https://github.com/nao1215/leakscan\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
}
