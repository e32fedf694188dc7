// Package report renders check reports for people and tools.
//
//   - SimpleWriter: plain text with a findings table, for terminals
//   - JSONWriter: the report's JSON shape, for scripts
//   - MarkdownWriter: GitHub-flavored Markdown, for sharing
//
// Every writer renders model.Report.ForDisplay(): a checked password never
// reaches the output, while emails and phone numbers are shown in full.
package report
