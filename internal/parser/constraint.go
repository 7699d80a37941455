package parser

import (
	"strings"

	"github.com/pgdelta/pgdelta/internal/ir"
	"github.com/pgdelta/pgdelta/internal/lexer"
)

// parseTableConstraintBody parses one table-level constraint clause, with
// name already consumed by the caller if it followed a CONSTRAINT keyword,
// per spec §4.2. TableConstraintNotNull has no DDL spelling in this grammar
// (it only arrives from introspected pg_constraint rows) and so is
// never constructed here; the differ still compares it when present from
// an introspected schema.
func (p *Parser) parseTableConstraintBody(name string) *ir.TableConstraint {
	switch {
	case p.matchKeyword("check"):
		tc := &ir.TableConstraint{Name: name, Kind: ir.TableConstraintCheck}
		p.expect(lexer.LPAREN, "'('")
		tc.Expr = p.captureParenGroupText()
		if p.matchKeyword("no") {
			p.expectKeyword("inherit")
		}
		p.parseTableEnforced(tc)
		return tc

	case p.matchKeyword("unique"):
		tc := &ir.TableConstraint{Name: name, Kind: ir.TableConstraintUnique}
		p.parseNullsDistinct(tc)
		tc.Columns = p.parseColumnList()
		p.parseWithoutOverlaps(tc)
		p.skipIndexParameters()
		p.parseTableDeferrable(tc)
		return tc

	case p.matchKeyword("primary"):
		p.expectKeyword("key")
		tc := &ir.TableConstraint{Name: name, Kind: ir.TableConstraintPrimaryKey}
		tc.Columns = p.parseColumnList()
		p.parseWithoutOverlaps(tc)
		p.skipIndexParameters()
		p.parseTableDeferrable(tc)
		return tc

	case p.matchKeyword("foreign"):
		p.expectKeyword("key")
		tc := &ir.TableConstraint{Name: name, Kind: ir.TableConstraintForeignKey}
		tc.Columns = p.parseColumnList()
		if p.matchKeyword("period") {
			tc.PeriodColumns = p.parseColumnList()
		}
		p.expectKeyword("references")
		tc.RefTable = p.qualifiedName()
		if p.check(lexer.LPAREN) {
			tc.RefColumns = p.parseColumnList()
		}
		p.parseTableMatchAndActions(tc)
		p.parseTableDeferrable(tc)
		return tc

	case p.matchKeyword("exclude"):
		tc := &ir.TableConstraint{Name: name, Kind: ir.TableConstraintExclude}
		if p.matchKeyword("using") {
			tc.ExcludeMethod = p.identifierOrKeywordText()
		}
		p.expect(lexer.LPAREN, "'('")
		tc.ExcludeElements = p.parseExcludeElements()
		p.expect(lexer.RPAREN, "')'")
		p.skipIndexParameters()
		if p.matchKeyword("where") {
			p.expect(lexer.LPAREN, "'('")
			tc.ExcludeWhere = p.captureParenGroupText()
		}
		p.parseTableDeferrable(tc)
		return tc
	}

	p.errorHere("expected a table constraint, found " + p.describeCurrent())
	return nil
}

// parseColumnList parses "(col, col, ...)".
func (p *Parser) parseColumnList() []string {
	if !p.expect(lexer.LPAREN, "'('") {
		return nil
	}
	var cols []string
	if !p.check(lexer.RPAREN) {
		for {
			cols = append(cols, p.identifierName())
			if !p.match(lexer.COMMA) {
				break
			}
		}
	}
	p.expect(lexer.RPAREN, "')'")
	return cols
}

func (p *Parser) parseNullsDistinct(tc *ir.TableConstraint) {
	if p.matchKeyword("nulls") {
		distinct := true
		if p.matchKeyword("not") {
			distinct = false
		}
		p.expectKeyword("distinct")
		tc.NullsDistinct = &distinct
	}
}

func (p *Parser) parseWithoutOverlaps(tc *ir.TableConstraint) {
	if p.matchKeyword("without") {
		p.identifierOrKeywordText() // consumes OVERLAPS
		if p.match(lexer.LPAREN) {
			tc.WithoutOverlaps = p.identifierName()
			p.expect(lexer.RPAREN, "')'")
		}
	}
}

func (p *Parser) parseExcludeElements() []ir.ExcludeElement {
	var els []ir.ExcludeElement
	for !p.check(lexer.RPAREN) && !p.check(lexer.EOF) {
		var el ir.ExcludeElement
		if p.check(lexer.LPAREN) {
			p.advance()
			el.Expr = p.captureParenGroupText()
		} else {
			el.Expr = p.identifierOrKeywordText()
		}
		if p.matchKeyword("collate") {
			el.Collation = p.qualifiedName()
		}
		if p.check(lexer.IDENTIFIER) && !isOrderWord(p.current.Lexeme) {
			el.OpClass = p.identifierOrKeywordText()
		}
		switch {
		case p.matchKeywordText("asc"):
			el.Order = "ASC"
		case p.matchKeywordText("desc"):
			el.Order = "DESC"
		}
		if p.matchKeyword("nulls") {
			if p.matchKeywordText("first") {
				el.NullsOrder = "FIRST"
			} else if p.matchKeywordText("last") {
				el.NullsOrder = "LAST"
			}
		}
		p.expectKeyword("with")
		el.Operator = p.captureOperatorText()
		els = append(els, el)
		if !p.match(lexer.COMMA) {
			break
		}
	}
	return els
}

// isOrderWord reports whether word is ASC/DESC, neither of which is a
// keyword in this grammar's closed set, so they would otherwise be
// misidentified as an operator class name in an EXCLUDE element.
func isOrderWord(word string) bool {
	return strings.EqualFold(word, "asc") || strings.EqualFold(word, "desc")
}

// captureOperatorText captures a single operator token sequence (e.g. "=",
// "&&") up to the next comma or ')'. Operators lex as OPERATOR tokens (a
// bare "=" as EQUALS); the lexemes are concatenated without spaces.
func (p *Parser) captureOperatorText() string {
	var b strings.Builder
	for !p.check(lexer.COMMA) && !p.check(lexer.RPAREN) && !p.check(lexer.EOF) {
		b.WriteString(p.current.Lexeme)
		p.advance()
	}
	return b.String()
}

func (p *Parser) parseTableMatchAndActions(tc *ir.TableConstraint) {
	for {
		switch {
		case p.matchKeyword("match"):
			switch {
			case p.matchKeyword("full"):
				tc.Match = ir.MatchFull
			case p.matchKeywordText("partial"):
				tc.Match = ir.MatchPartial
			case p.matchKeyword("simple"):
				tc.Match = ir.MatchSimple
			}
		case p.matchKeyword("on"):
			onDelete := p.matchKeyword("delete")
			if !onDelete {
				p.expectKeyword("update")
			}
			action, setCols := p.parseTableReferentialAction()
			if onDelete {
				tc.OnDelete = action
				tc.SetColsOnDelete = setCols
			} else {
				tc.OnUpdate = action
				tc.SetColsOnUpdate = setCols
			}
		default:
			return
		}
	}
}

func (p *Parser) parseTableReferentialAction() (ir.ReferentialAction, []string) {
	switch {
	case p.matchKeyword("no"):
		p.expectKeyword("action")
		return ir.ActionNoAction, nil
	case p.matchKeyword("restrict"):
		return ir.ActionRestrict, nil
	case p.matchKeyword("cascade"):
		return ir.ActionCascade, nil
	case p.matchKeyword("set"):
		if p.matchKeyword("null") {
			var cols []string
			if p.check(lexer.LPAREN) {
				cols = p.parseColumnList()
			}
			return ir.ActionSetNull, cols
		}
		p.expectKeyword("default")
		var cols []string
		if p.check(lexer.LPAREN) {
			cols = p.parseColumnList()
		}
		return ir.ActionSetDefault, cols
	}
	return ir.ActionUnspecified, nil
}

func (p *Parser) parseTableDeferrable(tc *ir.TableConstraint) {
	if p.matchKeyword("not") {
		p.expectKeyword("deferrable")
		return
	}
	if p.matchKeyword("deferrable") {
		tc.Deferrable = true
		if p.matchKeyword("initially") {
			if p.matchKeyword("deferred") {
				tc.InitiallyDeferred = true
			} else {
				p.matchKeyword("immediate")
			}
		}
	}
}

func (p *Parser) parseTableEnforced(tc *ir.TableConstraint) {
	if p.matchKeyword("not") {
		if p.matchKeyword("enforced") {
			tc.NotEnforced = true
		}
	} else {
		p.matchKeyword("enforced")
	}
}
