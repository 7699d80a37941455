package parser

import "fmt"

// Diagnostic is a single lex or parse error, per spec §7: both LexError and
// ParseError are reported with a position and an English message and are
// accumulated rather than aborting the parse.
type Diagnostic struct {
	Message string
	Line    int
	Column  int
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s", d.Line, d.Column, d.Message)
}
