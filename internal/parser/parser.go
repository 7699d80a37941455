// Package parser is a hand-written recursive-descent parser over the
// lexer's token stream, building one ir.TableDef per CREATE TABLE
// statement (spec §4.2). It keeps one token of lookahead, recovers at
// statement boundaries on error, and never aborts the overall parse: a
// malformed statement is recorded as a Diagnostic and skipped.
package parser

import (
	"strings"

	"github.com/pgdelta/pgdelta/internal/ir"
	"github.com/pgdelta/pgdelta/internal/lexer"
)

// Parser holds one token of lookahead over a Lexer plus the accumulating
// diagnostic list described in spec §4.2.
type Parser struct {
	lex       *lexer.Lexer
	current   lexer.Token
	previous  lexer.Token
	panicMode bool
	diags     []Diagnostic
}

// New returns a Parser positioned at the first token of src.
func New(src string) *Parser {
	p := &Parser{lex: lexer.New(src)}
	p.advance()
	return p
}

// ParseSchema parses every CREATE TABLE statement in src into a Schema
// named "public", skipping and recording diagnostics for anything that
// does not parse. It is the package's main entry point.
func ParseSchema(src string) (*ir.Schema, []Diagnostic) {
	p := New(src)
	schema := ir.NewSchema()
	for !p.check(lexer.EOF) {
		if p.checkKeyword("create") {
			if table, ok := p.parseCreateTable(); ok && table != nil {
				schema.Tables = append(schema.Tables, table)
			}
			continue
		}
		p.skipStatement()
	}
	return schema, p.diags
}

// --- token plumbing -------------------------------------------------------

func (p *Parser) advance() {
	p.previous = p.current
	for {
		tok := p.lex.Next()
		if tok.Kind == lexer.ERROR {
			p.record(tok.Line, tok.Column, tok.Message)
			continue
		}
		p.current = tok
		return
	}
}

func (p *Parser) check(k lexer.TokenKind) bool {
	return p.current.Kind == k
}

func (p *Parser) checkKeyword(word string) bool {
	return p.current.Kind == lexer.KEYWORD && p.current.Lexeme == word
}

func (p *Parser) match(k lexer.TokenKind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) matchKeyword(word string) bool {
	if p.checkKeyword(word) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(k lexer.TokenKind, what string) bool {
	if p.match(k) {
		return true
	}
	p.errorHere("expected " + what + ", found " + p.describeCurrent())
	return false
}

func (p *Parser) expectKeyword(word string) bool {
	if p.matchKeyword(word) {
		return true
	}
	p.errorHere("expected '" + word + "', found " + p.describeCurrent())
	return false
}

func (p *Parser) describeCurrent() string {
	if p.current.Kind == lexer.EOF {
		return "end of input"
	}
	if p.current.Lexeme != "" {
		return p.current.Lexeme
	}
	return p.current.Kind.String()
}

func (p *Parser) errorHere(msg string) {
	p.record(p.current.Line, p.current.Column, msg)
}

func (p *Parser) record(line, col int, msg string) {
	p.diags = append(p.diags, Diagnostic{Message: msg, Line: line, Column: col})
	p.panicMode = true
}

// skipStatement consumes tokens up to and including the next ';', or up to
// (but not including) the next CREATE keyword. ALTER and DROP are not
// treated as boundaries: skipping runs past them to the next ';' or CREATE.
func (p *Parser) skipStatement() {
	for !p.check(lexer.EOF) {
		if p.check(lexer.SEMICOLON) {
			p.advance()
			return
		}
		if p.current.Kind == lexer.KEYWORD {
			switch p.current.Lexeme {
			case "create":
				return
			}
		}
		p.advance()
	}
}

// synchronize implements the panic-mode recovery described in spec §4.2:
// resync to the next ';' or top-level CREATE, then clear panic mode.
func (p *Parser) synchronize() {
	p.skipStatement()
	p.panicMode = false
}

// qualifiedName parses `ident ('.' ident)*` and returns the final segment
// (the model does not track a per-table schema qualifier separately; see
// spec §3 "Schema... identified by a schema name").
func (p *Parser) qualifiedName() string {
	if !(p.check(lexer.IDENTIFIER) || p.current.Kind == lexer.KEYWORD) {
		return ""
	}
	name := p.current.Lexeme
	p.advance()
	for p.match(lexer.DOT) {
		if p.check(lexer.IDENTIFIER) || p.current.Kind == lexer.KEYWORD {
			name = p.current.Lexeme
			p.advance()
		}
	}
	return name
}

func (p *Parser) identifierName() string {
	if p.check(lexer.IDENTIFIER) {
		name := p.current.Lexeme
		p.advance()
		return name
	}
	return ""
}

// --- CREATE TABLE ---------------------------------------------------------

func (p *Parser) parseCreateTable() (*ir.TableDef, bool) {
	p.advance() // consume 'create'

	t := &ir.TableDef{Persistence: ir.PersistenceNormal}

	switch {
	case p.matchKeyword("global"), p.matchKeyword("local"):
		// legacy no-op modifiers, ignored
	}
	switch {
	case p.matchKeyword("temporary"), p.matchKeyword("temp"):
		t.Persistence = ir.PersistenceTemporary
	case p.matchKeyword("unlogged"):
		t.Persistence = ir.PersistenceUnlogged
	}

	if !p.expectKeyword("table") {
		p.synchronize()
		return nil, false
	}

	if p.matchKeyword("if") {
		p.expectKeyword("not")
		p.expectKeyword("exists")
	}

	t.Name = p.qualifiedName()
	if t.Name == "" {
		p.errorHere("expected table name")
		p.synchronize()
		return nil, false
	}

	if p.matchKeyword("partition") {
		t.Variant = ir.TableVariantPartitionOf
		p.expectKeyword("of")
		parent := p.qualifiedName()
		bound := ""
		if p.matchKeyword("for") {
			p.expectKeyword("values")
			bound = p.capturePartitionBound()
		}
		t.Partition = &ir.PartitionSpec{Parent: parent, Bound: bound}
	} else {
		t.Variant = ir.TableVariantRegular
		if !p.expect(lexer.LPAREN, "'('") {
			p.synchronize()
			return nil, false
		}
		if !p.check(lexer.RPAREN) {
			for {
				el := p.parseTableElement()
				if p.panicMode {
					p.synchronize()
					return nil, false
				}
				if el != nil {
					t.Elements = append(t.Elements, el)
				}
				if !p.match(lexer.COMMA) {
					break
				}
			}
		}
		if !p.expect(lexer.RPAREN, "')'") {
			p.synchronize()
			return nil, false
		}
	}

	p.parseTrailingOptions(t)
	if p.panicMode {
		p.synchronize()
		return nil, false
	}

	p.match(lexer.SEMICOLON)
	p.panicMode = false
	return t, true
}

// parseTableElement dispatches one element inside a CREATE TABLE body to a
// column definition, a (possibly CONSTRAINT-named) table constraint, or a
// LIKE clause, per spec §4.2.
func (p *Parser) parseTableElement() ir.TableElement {
	if p.matchKeyword("constraint") {
		name := p.identifierName()
		return p.parseTableConstraintBody(name)
	}
	if p.matchKeyword("like") {
		return p.parseLikeClause()
	}
	if p.current.Kind == lexer.KEYWORD && isTableConstraintStart(p.current.Lexeme) {
		return p.parseTableConstraintBody("")
	}
	return p.parseColumnDef()
}

func (p *Parser) parseLikeClause() *ir.LikeClause {
	lc := &ir.LikeClause{SourceTable: p.qualifiedName()}
	for p.matchKeyword("including") || p.matchKeyword("excluding") {
		excluding := p.previous.Lexeme == "excluding"
		opt := strings.ToLower(p.identifierOrKeywordText())
		if excluding {
			lc.Excluding = append(lc.Excluding, opt)
		} else {
			lc.Including = append(lc.Including, opt)
		}
	}
	return lc
}

func (p *Parser) identifierOrKeywordText() string {
	text := p.current.Lexeme
	p.advance()
	return text
}

// isTableConstraintStart reports whether word begins a table-level
// constraint clause without a leading CONSTRAINT keyword, per spec §4.2.
func isTableConstraintStart(word string) bool {
	switch word {
	case "check", "unique", "primary", "foreign", "exclude":
		return true
	}
	return false
}

// capturePartitionBound captures a FOR VALUES clause's bound text verbatim
// (e.g. "FROM (...) TO (...)" or "IN (...)" or "WITH (MODULUS .., REMAINDER
// ..)"), stopping at the next depth-zero ';' or trailing-option keyword.
// This spec parses partition bounds shallowly (spec §9 Open Question) and
// does not interpret them.
func (p *Parser) capturePartitionBound() string {
	depth := 0
	var b strings.Builder
	for {
		if p.check(lexer.EOF) {
			return b.String()
		}
		if depth == 0 {
			if p.check(lexer.SEMICOLON) {
				return b.String()
			}
			if p.current.Kind == lexer.KEYWORD {
				switch p.current.Lexeme {
				case "partition", "tablespace":
					return b.String()
				}
			}
		}
		if p.check(lexer.LPAREN) {
			depth++
		} else if p.check(lexer.RPAREN) {
			depth--
		}
		writeTokenTo(&b, p.current)
		p.advance()
	}
}

// captureBalancedText consumes tokens from the current LPAREN through its
// matching RPAREN (inclusive) and returns that text with the outer parens
// included, rebuilt token by token via writeTokenTo. parseDataType uses it
// for type modifiers such as varchar(100).
func (p *Parser) captureBalancedText() string {
	if !p.check(lexer.LPAREN) {
		return ""
	}
	depth := 0
	var b strings.Builder
	for {
		if p.check(lexer.EOF) {
			return b.String()
		}
		if p.check(lexer.LPAREN) {
			depth++
			b.WriteString("(")
			p.advance()
			continue
		}
		if p.check(lexer.RPAREN) {
			depth--
			b.WriteString(")")
			p.advance()
			if depth == 0 {
				return b.String()
			}
			continue
		}
		writeTokenTo(&b, p.current)
		p.advance()
	}
}
