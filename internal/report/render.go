package report

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/pgdelta/pgdelta/internal/differ"
)

// Render renders sd per spec §4.7: a summary section, an optional details
// section (omitted at VerbositySummary), and a footer noting an empty
// diff.
func Render(sd *differ.SchemaDiff, opts Options) string {
	var b strings.Builder

	writeSummary(&b, sd, opts)

	if opts.Verbosity != VerbositySummary {
		b.WriteString("\n")
		writeDetails(&b, sd, opts)
	}

	if sd.IsEmpty() {
		b.WriteString("\nNo differences found\n")
	}

	return b.String()
}

func writeSummary(b *strings.Builder, sd *differ.SchemaDiff, opts Options) {
	b.WriteString(heading(opts, "Schema Diff Summary"))
	b.WriteString("\n\n")
	fmt.Fprintf(b, "%s %d, %s %d, %s %d\n", bold(opts, "tables added:"), sd.TablesAdded,
		bold(opts, "removed:"), sd.TablesRemoved, bold(opts, "modified:"), sd.TablesModified)

	fmt.Fprintf(b, "%s %d  %s %d  %s %d\n",
		severityLabel(opts, differ.SeverityCritical), sd.Critical,
		severityLabel(opts, differ.SeverityWarning), sd.Warning,
		severityLabel(opts, differ.SeverityInfo), sd.Info)
}

func writeDetails(b *strings.Builder, sd *differ.SchemaDiff, opts Options) {
	b.WriteString(heading(opts, "Details"))
	b.WriteString("\n\n")

	for _, td := range sd.TableDiffs {
		writeTableDetail(b, td, opts)
	}
}

func writeTableDetail(b *strings.Builder, td *differ.TableDiff, opts Options) {
	fmt.Fprintf(b, "%s\n", subheading(opts, td.Table))

	switch {
	case td.Added:
		b.WriteString(line(opts, differ.SeverityWarning, fmt.Sprintf("table %q added", td.Table)))
		return
	case td.Removed:
		b.WriteString(line(opts, differ.SeverityCritical, fmt.Sprintf("table %q removed", td.Table)))
		return
	}

	for _, d := range td.Diffs {
		b.WriteString(diffLine(d, opts))
	}
}

func diffLine(d differ.Diff, opts Options) string {
	label := kindLabel(d.Kind)
	var suffix string
	switch {
	case d.Old != "" && d.New != "":
		suffix = fmt.Sprintf(" (%s → %s)", d.Old, d.New)
	case d.Old != "":
		suffix = fmt.Sprintf(" (%s)", d.Old)
	case d.New != "":
		suffix = fmt.Sprintf(" (%s)", d.New)
	}

	var elementPart string
	if d.Element != "" {
		elementPart = " : " + d.Element
	}

	return line(opts, d.Severity, label+elementPart+suffix)
}

func kindLabel(k differ.Kind) string {
	return strings.ToLower(strings.ReplaceAll(string(k), "_", " "))
}

func line(opts Options, sev differ.Severity, text string) string {
	prefix := ""
	if opts.ShowIcons {
		prefix = severityIcon(opts, sev) + " "
	}
	return prefix + text + "\n"
}

func severityIcon(opts Options, sev differ.Severity) string {
	icon := "?"
	switch sev {
	case differ.SeverityCritical:
		icon = "✗" // ✗
	case differ.SeverityWarning:
		icon = "⚠" // ⚠
	case differ.SeverityInfo:
		icon = "✓" // ✓
	}
	if !opts.UseColor || opts.Format == FormatMarkdown {
		return icon
	}
	return colorForSeverity(sev).Sprint(icon)
}

func severityLabel(opts Options, sev differ.Severity) string {
	return severityIcon(opts, sev) + " " + strings.ToUpper(string(sev)) + ":"
}

func colorForSeverity(sev differ.Severity) *color.Color {
	switch sev {
	case differ.SeverityCritical:
		return color.New(color.FgRed)
	case differ.SeverityWarning:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

func heading(opts Options, text string) string {
	if opts.Format == FormatMarkdown {
		return "## " + text
	}
	return text + "\n" + strings.Repeat("=", len(text))
}

func subheading(opts Options, text string) string {
	if opts.Format == FormatMarkdown {
		return "### " + text
	}
	return text + "\n" + strings.Repeat("-", len(text))
}

func bold(opts Options, text string) string {
	if opts.Format == FormatMarkdown {
		return "**" + text + "**"
	}
	if opts.UseColor {
		return color.New(color.Bold).Sprint(text)
	}
	return text
}
