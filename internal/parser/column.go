package parser

import (
	"strings"

	"github.com/pgdelta/pgdelta/internal/ir"
	"github.com/pgdelta/pgdelta/internal/lexer"
)

// parseColumnDef parses `<name> <type> <modifier>*`, per spec §4.2.
func (p *Parser) parseColumnDef() *ir.Column {
	name := p.identifierName()
	if name == "" {
		p.errorHere("expected column name, found " + p.describeCurrent())
		return nil
	}
	col := &ir.Column{Name: name, Storage: ir.StorageUnset}
	col.DataType = p.parseDataType()
	if col.DataType == "" {
		p.errorHere("expected data type for column " + name)
		return nil
	}
	p.parseColumnModifiers(col)
	return col
}

// parseDataType parses a (possibly multi-word, possibly array) type name,
// handling the "with/without time zone" ambiguity via lexer backtracking:
// WITH/WITHOUT is not otherwise valid here, so a failed speculative match
// simply rewinds and lets parseColumnModifiers see it instead.
func (p *Parser) parseDataType() string {
	var parts []string

	if p.current.Kind != lexer.IDENTIFIER && p.current.Kind != lexer.KEYWORD {
		return ""
	}
	parts = append(parts, p.current.Lexeme)
	p.advance()

	// Multi-word base types: "double precision", "character varying",
	// "bit varying", "timestamp"/"time" with optional precision handled below.
	switch strings.ToLower(parts[0]) {
	case "double":
		if p.matchKeywordText("precision") {
			parts = append(parts, "precision")
		}
	case "character", "bit":
		if p.matchKeywordText("varying") {
			parts = append(parts, "varying")
		}
	}

	if p.check(lexer.LPAREN) {
		parts = append(parts, p.captureBalancedText())
	}

	lowerFirst := strings.ToLower(parts[0])
	if lowerFirst == "timestamp" || lowerFirst == "time" {
		if tz, ok := p.tryParseTimeZone(); ok {
			parts = append(parts, tz)
		}
	}

	for p.match(lexer.LBRACKET) {
		parts = append(parts, "[")
		if p.check(lexer.NUMBER) {
			parts = append(parts, p.current.Lexeme)
			p.advance()
		}
		p.expect(lexer.RBRACKET, "']'")
		parts = append(parts, "]")
	}

	return joinTypeParts(parts)
}

// joinTypeParts joins type tokens with a single space, except that "(...)"
// and "[" / "]" attach directly to the preceding part.
func joinTypeParts(parts []string) string {
	var b strings.Builder
	for i, part := range parts {
		if i > 0 {
			prev := parts[i-1]
			if !strings.HasPrefix(part, "(") && part != "[" && part != "]" && prev != "[" {
				b.WriteByte(' ')
			}
		}
		b.WriteString(part)
	}
	return b.String()
}

// tryParseTimeZone speculatively consumes "with time zone" or "without time
// zone", restoring lexer state if the identifiers following WITH/WITHOUT do
// not spell "time zone" (spec §4.2, §9).
func (p *Parser) tryParseTimeZone() (string, bool) {
	if !p.checkKeyword("with") && !p.checkKeyword("without") {
		return "", false
	}
	mark := p.lex.Mark()
	savedCurrent, savedPrevious, savedPanic := p.current, p.previous, p.panicMode

	without := p.checkKeyword("without")
	p.advance()
	okTime := (p.current.Kind == lexer.IDENTIFIER || p.current.Kind == lexer.KEYWORD) &&
		strings.EqualFold(p.current.Lexeme, "time")
	if okTime {
		p.advance()
	}
	okZone := okTime && (p.current.Kind == lexer.IDENTIFIER || p.current.Kind == lexer.KEYWORD) &&
		strings.EqualFold(p.current.Lexeme, "zone")
	if okZone {
		p.advance()
		if without {
			return "without time zone", true
		}
		return "with time zone", true
	}

	p.lex.Reset(mark)
	p.current, p.previous, p.panicMode = savedCurrent, savedPrevious, savedPanic
	return "", false
}

func (p *Parser) matchKeywordText(word string) bool {
	if (p.current.Kind == lexer.IDENTIFIER || p.current.Kind == lexer.KEYWORD) &&
		strings.EqualFold(p.current.Lexeme, word) {
		p.advance()
		return true
	}
	return false
}

// parseColumnModifiers parses the sequence of column constraints and
// storage/compression clauses following a column's data type, per spec
// §4.2.
func (p *Parser) parseColumnModifiers(col *ir.Column) {
	for {
		var name string
		if p.matchKeyword("constraint") {
			name = p.identifierName()
		}

		switch {
		case p.matchKeyword("not"):
			p.expectKeyword("null")
			col.Constraints = append(col.Constraints, &ir.ColumnConstraint{Name: name, Kind: ir.ColumnConstraintNotNull})
		case p.matchKeyword("null"):
			col.Constraints = append(col.Constraints, &ir.ColumnConstraint{Name: name, Kind: ir.ColumnConstraintNull})
		case p.matchKeyword("default"):
			col.Constraints = append(col.Constraints, &ir.ColumnConstraint{Name: name, Kind: ir.ColumnConstraintDefault, Expr: p.captureExpressionUntilBoundary()})
		case p.matchKeyword("check"):
			cc := &ir.ColumnConstraint{Name: name, Kind: ir.ColumnConstraintCheck}
			p.expect(lexer.LPAREN, "'('")
			cc.Expr = p.captureParenGroupText()
			if p.matchKeyword("no") {
				p.expectKeyword("inherit")
				cc.NoInherit = true
			}
			p.parseEnforced(cc)
			col.Constraints = append(col.Constraints, cc)
		case p.matchKeyword("unique"):
			cc := &ir.ColumnConstraint{Name: name, Kind: ir.ColumnConstraintUnique}
			p.skipIndexParameters()
			p.parseDeferrable(cc)
			col.Constraints = append(col.Constraints, cc)
		case p.matchKeyword("primary"):
			p.expectKeyword("key")
			cc := &ir.ColumnConstraint{Name: name, Kind: ir.ColumnConstraintPrimaryKey}
			p.skipIndexParameters()
			p.parseDeferrable(cc)
			col.Constraints = append(col.Constraints, cc)
		case p.matchKeyword("references"):
			cc := &ir.ColumnConstraint{Name: name, Kind: ir.ColumnConstraintReferences}
			cc.RefTable = p.qualifiedName()
			if p.match(lexer.LPAREN) {
				cc.RefColumn = p.identifierName()
				p.expect(lexer.RPAREN, "')'")
			}
			p.parseMatchAndActions(cc)
			p.parseDeferrable(cc)
			col.Constraints = append(col.Constraints, cc)
		case p.matchKeyword("generated"):
			col.Constraints = append(col.Constraints, p.parseGeneratedColumn(name))
		case p.matchKeyword("collate"):
			col.Collation = p.qualifiedName()
		case p.matchKeyword("storage"):
			col.Storage = ir.StorageKind(strings.ToUpper(p.identifierOrKeywordText()))
		case p.matchKeyword("compression"):
			col.Compression = p.identifierOrKeywordText()
		default:
			return
		}
	}
}

// parseGeneratedColumn parses both "GENERATED ALWAYS AS (expr) STORED /
// VIRTUAL" and "GENERATED {ALWAYS|BY DEFAULT} AS IDENTITY [(seq opts)]".
func (p *Parser) parseGeneratedColumn(name string) *ir.ColumnConstraint {
	always := true
	if p.matchKeyword("by") {
		p.expectKeyword("default")
		always = false
	} else {
		p.expectKeyword("always")
	}
	p.expectKeyword("as")

	if p.matchKeyword("identity") {
		cc := &ir.ColumnConstraint{Name: name, Kind: ir.ColumnConstraintGeneratedIdentity}
		if always {
			cc.IdentityGeneration = ir.IdentityAlways
		} else {
			cc.IdentityGeneration = ir.IdentityByDefault
		}
		if p.match(lexer.LPAREN) {
			cc.SequenceOptions = p.parseSequenceOptions()
			p.expect(lexer.RPAREN, "')'")
		}
		return cc
	}

	cc := &ir.ColumnConstraint{Name: name, Kind: ir.ColumnConstraintGeneratedAlways}
	p.expect(lexer.LPAREN, "'('")
	cc.Expr = p.captureParenGroupText()
	if p.matchKeyword("stored") {
		cc.GeneratedStored = true
	} else if p.matchKeywordText("virtual") {
		cc.GeneratedStored = false
	}
	return cc
}

// parseSequenceOptions parses the space-separated sequence option clauses
// inside a GENERATED ... AS IDENTITY (...) parameter list.
func (p *Parser) parseSequenceOptions() []ir.StorageParam {
	var opts []ir.StorageParam
	for !p.check(lexer.RPAREN) && !p.check(lexer.EOF) {
		switch {
		case p.matchKeyword("start"):
			p.matchKeyword("with")
			opts = append(opts, ir.StorageParam{Name: "start", Value: p.signedNumber()})
		case p.matchKeyword("increment"):
			p.matchKeyword("by")
			opts = append(opts, ir.StorageParam{Name: "increment", Value: p.signedNumber()})
		case p.matchKeyword("minvalue"):
			opts = append(opts, ir.StorageParam{Name: "minvalue", Value: p.signedNumber()})
		case p.matchKeyword("maxvalue"):
			opts = append(opts, ir.StorageParam{Name: "maxvalue", Value: p.signedNumber()})
		case p.matchKeyword("no"):
			word := p.identifierOrKeywordText()
			opts = append(opts, ir.StorageParam{Name: "no " + word})
		case p.matchKeyword("cache"):
			opts = append(opts, ir.StorageParam{Name: "cache", Value: p.signedNumber()})
		case p.matchKeyword("cycle"):
			opts = append(opts, ir.StorageParam{Name: "cycle"})
		default:
			p.advance()
		}
	}
	return opts
}

func (p *Parser) signedNumber() string {
	neg := ""
	if p.current.Kind == lexer.OPERATOR && p.current.Lexeme == "-" {
		neg = "-"
		p.advance()
	}
	if p.check(lexer.NUMBER) {
		v := p.current.Lexeme
		p.advance()
		return neg + v
	}
	return ""
}

func (p *Parser) parseDeferrable(cc *ir.ColumnConstraint) {
	if p.matchKeyword("not") {
		p.expectKeyword("deferrable")
		return
	}
	if p.matchKeyword("deferrable") {
		cc.Deferrable = true
		if p.matchKeyword("initially") {
			if p.matchKeyword("deferred") {
				cc.InitiallyDeferred = true
			} else {
				p.matchKeyword("immediate")
			}
		}
	}
}

func (p *Parser) parseEnforced(cc *ir.ColumnConstraint) {
	if p.matchKeyword("not") {
		if p.matchKeyword("enforced") {
			cc.NotEnforced = true
		}
	} else {
		p.matchKeyword("enforced")
	}
}

func (p *Parser) parseMatchAndActions(cc *ir.ColumnConstraint) {
	for {
		switch {
		case p.matchKeyword("match"):
			switch {
			case p.matchKeyword("full"):
				cc.Match = ir.MatchFull
			case p.matchKeywordText("partial"):
				cc.Match = ir.MatchPartial
			case p.matchKeyword("simple"):
				cc.Match = ir.MatchSimple
			}
		case p.matchKeyword("on"):
			onDelete := p.matchKeyword("delete")
			if !onDelete {
				p.expectKeyword("update")
			}
			action := p.parseReferentialAction()
			if onDelete {
				cc.OnDelete = action
			} else {
				cc.OnUpdate = action
			}
		default:
			return
		}
	}
}

func (p *Parser) parseReferentialAction() ir.ReferentialAction {
	switch {
	case p.matchKeyword("no"):
		p.expectKeyword("action")
		return ir.ActionNoAction
	case p.matchKeyword("restrict"):
		return ir.ActionRestrict
	case p.matchKeyword("cascade"):
		return ir.ActionCascade
	case p.matchKeyword("set"):
		if p.matchKeyword("null") {
			return ir.ActionSetNull
		}
		p.expectKeyword("default")
		return ir.ActionSetDefault
	}
	return ir.ActionUnspecified
}

// skipIndexParameters consumes an optional index_parameters clause
// (INCLUDE (...), WITH (...), USING INDEX TABLESPACE ...) that this spec
// treats as not semantically significant for equivalence (spec §9).
func (p *Parser) skipIndexParameters() {
	if p.matchKeyword("include") {
		p.expect(lexer.LPAREN, "'('")
		p.captureParenGroupText()
	}
	if p.matchKeyword("with") {
		p.expect(lexer.LPAREN, "'('")
		p.captureParenGroupText()
	}
	if p.matchKeyword("using") {
		p.expectKeyword("index")
		p.expectKeyword("tablespace")
		p.identifierName()
	}
}
