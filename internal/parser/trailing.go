package parser

import (
	"strings"

	"github.com/pgdelta/pgdelta/internal/ir"
	"github.com/pgdelta/pgdelta/internal/lexer"
)

// parseTrailingOptions parses the clauses that may follow a CREATE TABLE
// body: INHERITS, PARTITION BY, WITH/WITHOUT (storage params or OIDS), ON
// COMMIT, and TABLESPACE, in the order PostgreSQL accepts them (spec §4.2).
func (p *Parser) parseTrailingOptions(t *ir.TableDef) {
	if p.matchKeyword("inherits") {
		p.expect(lexer.LPAREN, "'('")
		if !p.check(lexer.RPAREN) {
			for {
				t.Inherits = append(t.Inherits, p.qualifiedName())
				if !p.match(lexer.COMMA) {
					break
				}
			}
		}
		p.expect(lexer.RPAREN, "')'")
	}

	if p.matchKeyword("partition") {
		p.expectKeyword("by")
		spec := &ir.PartitionSpec{}
		switch {
		case p.matchKeyword("range"):
			spec.Strategy = "RANGE"
		case p.matchKeyword("list"):
			spec.Strategy = "LIST"
		case p.matchKeyword("hash"):
			spec.Strategy = "HASH"
		default:
			spec.Strategy = strings.ToUpper(p.identifierOrKeywordText())
		}
		spec.Columns = p.parsePartitionKeyList()
		t.Partition = spec
	}

	switch {
	case p.matchKeyword("with"):
		p.expect(lexer.LPAREN, "'('")
		if !p.check(lexer.RPAREN) {
			for {
				param := ir.StorageParam{Name: p.identifierOrKeywordText()}
				if p.match(lexer.EQUALS) {
					param.Value = p.storageValueText()
				}
				t.StorageParams = append(t.StorageParams, param)
				if !p.match(lexer.COMMA) {
					break
				}
			}
		}
		p.expect(lexer.RPAREN, "')'")
	case p.matchKeyword("without"):
		p.expectKeyword("oids")
	}

	if p.matchKeyword("on") {
		p.expectKeyword("commit")
		switch {
		case p.matchKeyword("preserve"):
			p.expectKeyword("rows")
		case p.matchKeyword("delete"):
			p.expectKeyword("rows")
		case p.matchKeyword("drop"):
		}
	}

	if p.matchKeyword("tablespace") {
		t.Tablespace = p.identifierName()
	}
}

// parsePartitionKeyList parses the "(col|expr [opclass], ...)" list after
// PARTITION BY RANGE/LIST/HASH, keeping only column-like leading tokens:
// this spec diffs partitioning shallowly (spec §9 Open Question).
func (p *Parser) parsePartitionKeyList() []string {
	if !p.expect(lexer.LPAREN, "'('") {
		return nil
	}
	var cols []string
	if !p.check(lexer.RPAREN) {
		for {
			if p.check(lexer.LPAREN) {
				p.advance()
				cols = append(cols, "("+p.captureParenGroupText()+")")
			} else {
				cols = append(cols, p.identifierOrKeywordText())
				if p.check(lexer.IDENTIFIER) {
					p.advance() // optional opclass
				}
			}
			if !p.match(lexer.COMMA) {
				break
			}
		}
	}
	p.expect(lexer.RPAREN, "')'")
	return cols
}

// storageValueText captures a storage-parameter value, which may be an
// identifier, a number, or a string literal.
func (p *Parser) storageValueText() string {
	v := p.current.Lexeme
	p.advance()
	return v
}
