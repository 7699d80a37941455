// Package report renders a SchemaDiff as a human-readable summary and
// detail listing, per spec §4.7. Like differ and sqlgen, it writes only to
// an in-memory builder and is pure with respect to its inputs (spec §5).
package report

// Format selects the output syntax: plain text or Markdown.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// Verbosity controls how much detail accompanies the summary, per spec
// §4.7.
type Verbosity string

const (
	VerbositySummary  Verbosity = "summary"
	VerbosityNormal   Verbosity = "normal"
	VerbosityDetailed Verbosity = "detailed"
	VerbosityVerbose  Verbosity = "verbose"
)

// Options controls the Report Generator's rendering, per spec §4.7.
type Options struct {
	Format          Format
	Verbosity       Verbosity
	UseColor        bool
	ShowIcons       bool
	GroupBySeverity bool
	MaxWidth        int
}
