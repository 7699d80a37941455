package parser

import (
	"strings"

	"github.com/pgdelta/pgdelta/internal/lexer"
)

// writeTokenTo renders tok's source text into b, reconstructing punctuation
// and quoting that the lexer already stripped (quoted identifiers and
// string literals), so verbatim-captured expressions read the way they
// were written, per spec §4.2's expression-capture rule.
func writeTokenTo(b *strings.Builder, tok lexer.Token) {
	if b.Len() > 0 {
		last := b.String()[b.Len()-1]
		if last != '(' && last != '.' && tok.Kind != lexer.DOT && tok.Kind != lexer.COMMA &&
			tok.Kind != lexer.LPAREN && tok.Kind != lexer.RPAREN && tok.Kind != lexer.LBRACKET &&
			last != '[' {
			b.WriteByte(' ')
		}
	}
	switch tok.Kind {
	case lexer.STRING_LITERAL:
		b.WriteByte('\'')
		b.WriteString(strings.ReplaceAll(tok.Lexeme, "'", "''"))
		b.WriteByte('\'')
	default:
		b.WriteString(tok.Lexeme)
	}
}

// captureParenGroupText captures verbatim text from just after an already
// consumed opening '(' through its matching ')', which this function also
// consumes. The returned text does not include the outer parens, per spec
// §4.2's rule for CHECK/DEFAULT/GENERATED expression bodies.
func (p *Parser) captureParenGroupText() string {
	depth := 1
	var b strings.Builder
	for {
		if p.check(lexer.EOF) {
			return b.String()
		}
		if p.check(lexer.LPAREN) {
			depth++
			writeTokenTo(&b, p.current)
			p.advance()
			continue
		}
		if p.check(lexer.RPAREN) {
			depth--
			p.advance()
			if depth == 0 {
				return b.String()
			}
			writeTokenTo(&b, p.previous)
			continue
		}
		writeTokenTo(&b, p.current)
		p.advance()
	}
}

// captureExpressionUntilBoundary captures verbatim text for a DEFAULT
// expression, which is not parenthesized in the grammar and so ends at the
// first comma/')' at depth zero or at the start of the next column
// constraint keyword, per spec §4.2.
func (p *Parser) captureExpressionUntilBoundary() string {
	depth := 0
	var b strings.Builder
	for {
		if p.check(lexer.EOF) {
			return b.String()
		}
		if depth == 0 {
			if p.check(lexer.COMMA) || p.check(lexer.RPAREN) {
				return b.String()
			}
			if p.current.Kind == lexer.KEYWORD && isColumnConstraintBoundary(p.current.Lexeme) {
				return b.String()
			}
		}
		switch p.current.Kind {
		case lexer.LPAREN, lexer.LBRACKET:
			depth++
		case lexer.RPAREN, lexer.RBRACKET:
			depth--
		}
		writeTokenTo(&b, p.current)
		p.advance()
	}
}

// isColumnConstraintBoundary reports whether word begins a new column
// constraint clause, terminating a preceding DEFAULT expression capture.
func isColumnConstraintBoundary(word string) bool {
	switch word {
	case "not", "null", "default", "check", "unique", "primary", "references",
		"generated", "collate", "constraint", "storage", "compression":
		return true
	}
	return false
}
