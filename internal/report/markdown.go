package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/leakscan/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports as GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs one report.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	return w.WriteAll([]*model.Report{report})
}

// WriteAll outputs the reports as one document with a section per target.
func (w *MarkdownWriter) WriteAll(reports []*model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("Leakscan Report")
	md.PlainText("")

	for _, r := range displayAll(reports) {
		w.writeReport(md, r)
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeReport(md *markdown.Markdown, report *model.Report) {
	md.H2("`" + report.Target.Value() + "`")
	md.PlainText("")

	rows := [][]string{
		{"Type", report.Type().String()},
		{"Checked At", report.CheckedAt.Format("2006-01-02 15:04:05 MST")},
		{"Status", status(report)},
	}
	switch {
	case report.Password != nil:
		m := report.Password
		rows = append(rows,
			[]string{"Entropy", strconv.FormatFloat(m.Entropy, 'f', -1, 64) + " bits"},
			[]string{"Crack Time", m.CrackTime},
			[]string{"Score", strconv.Itoa(m.Score) + " / 100"},
			[]string{"Leak Count", strconv.Itoa(m.LeakCount)},
		)
	case report.Risk != nil:
		rows = append(rows, []string{"Risk Score", strconv.Itoa(report.Risk.RiskScore) + " / 100"})
		if report.Risk.FirstSeen != "" {
			rows = append(rows, []string{"First Seen", report.Risk.FirstSeen})
		}
	}
	rows = append(rows, []string{"Level", "**" + report.Level().String() + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeAlert(md, report)
	w.writeBreaches(md, report)
}

// writeAlert picks the GFM alert kind from the report's level.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.Report) {
	if report.Type() == model.KindUnknown {
		md.Note("Empty target, nothing was checked.")
		md.PlainText("")
		return
	}

	n := report.Breaches.Len()
	switch report.Level() {
	case model.RiskCritical:
		if report.Password != nil {
			md.Cautionf("This password appeared %d time(s) in breach corpora. Stop using it everywhere.", report.Password.LeakCount)
		} else {
			md.Cautionf("Found in %d breach(es). Treat the account as compromised and rotate its credentials.", n)
		}
	case model.RiskHigh:
		md.Warningf("High risk. Found in %d breach(es) or the password is weak.", n)
	case model.RiskMedium:
		md.Importantf("Medium risk. Found in %d breach(es).", n)
	default:
		if n > 0 {
			md.Note("Low risk, but some exposure was found.")
		} else {
			md.Tip("No known exposure.")
		}
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeBreaches(md *markdown.Markdown, report *model.Report) {
	findings := report.Breaches.Findings()
	if len(findings) == 0 {
		return
	}

	md.H3("Breaches")
	md.PlainText("")

	rows := make([][]string, len(findings))
	for i, f := range findings {
		rows[i] = []string{
			f.Name,
			f.Year,
			f.SourceType,
			truncateString(dataClasses(f), 60),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Breach", "Year", "Source", "Data Leaked"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, findings)

	for _, f := range findings {
		if f.Description != "" {
			md.Details(f.Name, f.Description)
		}
	}
	md.PlainText("")
}

// writePieChart shows how often each data class was leaked.
// It is skipped when fewer than two classes are known.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, findings []model.Finding) {
	counts := make(map[string]uint64)
	var order []string
	for _, f := range findings {
		for _, class := range f.DataLeaked {
			key := strings.ToLower(class)
			if counts[key] == 0 {
				order = append(order, key)
			}
			counts[key]++
		}
	}
	if len(order) < 2 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Leaked Data Classes"),
		piechart.WithShowData(true),
	)
	for _, class := range order {
		chart.LabelAndIntValue(class, counts[class])
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [leakscan](https://github.com/nao1215/leakscan)*")
}
