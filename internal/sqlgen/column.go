package sqlgen

import (
	"fmt"
	"strings"

	"github.com/pgdelta/pgdelta/internal/ir"
)

// columnDefinition renders one column's full CREATE TABLE / ADD COLUMN
// clause: type, then STORAGE/COMPRESSION/COLLATE, then inline constraints,
// following PostgreSQL's column_definition grammar order.
func columnDefinition(col *ir.Column) string {
	var b strings.Builder
	b.WriteString(QuoteIdentifier(col.Name))
	b.WriteByte(' ')
	b.WriteString(col.DataType)

	if col.Storage != ir.StorageUnset {
		fmt.Fprintf(&b, " STORAGE %s", col.Storage)
	}
	if col.Compression != "" {
		fmt.Fprintf(&b, " COMPRESSION %s", col.Compression)
	}
	if col.Collation != "" {
		fmt.Fprintf(&b, " COLLATE %s", QuoteIdentifier(col.Collation))
	}

	for _, cc := range col.Constraints {
		clause := columnConstraintClause(cc)
		if clause == "" {
			continue
		}
		b.WriteByte(' ')
		if cc.Name != "" {
			fmt.Fprintf(&b, "CONSTRAINT %s ", QuoteIdentifier(cc.Name))
		}
		b.WriteString(clause)
	}

	return b.String()
}

// columnConstraintClause renders a single inline column constraint's SQL
// text, without its optional CONSTRAINT <name> prefix.
func columnConstraintClause(cc *ir.ColumnConstraint) string {
	switch cc.Kind {
	case ir.ColumnConstraintNotNull:
		return "NOT NULL"
	case ir.ColumnConstraintNull:
		return "NULL"
	case ir.ColumnConstraintDefault:
		return "DEFAULT " + cc.Expr
	case ir.ColumnConstraintCheck:
		s := fmt.Sprintf("CHECK (%s)", cc.Expr)
		if cc.NoInherit {
			s += " NO INHERIT"
		}
		return s + enforcedSuffix(cc.NotEnforced)
	case ir.ColumnConstraintUnique:
		return "UNIQUE" + deferrableSuffix(cc.Deferrable, cc.InitiallyDeferred)
	case ir.ColumnConstraintPrimaryKey:
		return "PRIMARY KEY" + deferrableSuffix(cc.Deferrable, cc.InitiallyDeferred)
	case ir.ColumnConstraintReferences:
		s := "REFERENCES " + QuoteIdentifier(cc.RefTable)
		if cc.RefColumn != "" {
			s += fmt.Sprintf(" (%s)", QuoteIdentifier(cc.RefColumn))
		}
		if cc.Match != ir.MatchUnspecified {
			s += " MATCH " + string(cc.Match)
		}
		if cc.OnDelete != ir.ActionUnspecified {
			s += " ON DELETE " + string(cc.OnDelete)
		}
		if cc.OnUpdate != ir.ActionUnspecified {
			s += " ON UPDATE " + string(cc.OnUpdate)
		}
		return s + deferrableSuffix(cc.Deferrable, cc.InitiallyDeferred)
	case ir.ColumnConstraintGeneratedIdentity:
		s := fmt.Sprintf("GENERATED %s AS IDENTITY", cc.IdentityGeneration)
		if len(cc.SequenceOptions) > 0 {
			s += " (" + sequenceOptionsClause(cc.SequenceOptions) + ")"
		}
		return s
	case ir.ColumnConstraintGeneratedAlways:
		mode := "VIRTUAL"
		if cc.GeneratedStored {
			mode = "STORED"
		}
		return fmt.Sprintf("GENERATED ALWAYS AS (%s) %s", cc.Expr, mode)
	}
	return ""
}

func sequenceOptionsClause(opts []ir.StorageParam) string {
	parts := make([]string, len(opts))
	for i, o := range opts {
		parts[i] = strings.ToUpper(o.Name) + " " + o.Value
	}
	return strings.Join(parts, " ")
}

func deferrableSuffix(deferrable, initiallyDeferred bool) string {
	if !deferrable {
		return ""
	}
	s := " DEFERRABLE"
	if initiallyDeferred {
		s += " INITIALLY DEFERRED"
	}
	return s
}

func enforcedSuffix(notEnforced bool) string {
	if notEnforced {
		return " NOT ENFORCED"
	}
	return ""
}
