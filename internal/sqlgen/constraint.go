package sqlgen

import (
	"fmt"
	"strings"

	"github.com/pgdelta/pgdelta/internal/ir"
)

// tableConstraintDefinition renders a table-level constraint's full
// definition text, used both inline in CREATE TABLE and after ADD
// [CONSTRAINT <name>] in ALTER TABLE. The optional CONSTRAINT <name>
// prefix is NOT included; callers add it when tc.Name != "".
func tableConstraintDefinition(tc *ir.TableConstraint) string {
	switch tc.Kind {
	case ir.TableConstraintCheck:
		s := fmt.Sprintf("CHECK (%s)", tc.Expr)
		return s + enforcedSuffix(tc.NotEnforced)

	case ir.TableConstraintPrimaryKey, ir.TableConstraintUnique:
		label := "UNIQUE"
		if tc.Kind == ir.TableConstraintPrimaryKey {
			label = "PRIMARY KEY"
		}
		s := fmt.Sprintf("%s (%s)", label, quoteNameList(tc.Columns))
		if tc.WithoutOverlaps != "" {
			s += fmt.Sprintf(", WITHOUT OVERLAPS %s", QuoteIdentifier(tc.WithoutOverlaps))
		}
		if tc.NullsDistinct != nil {
			if *tc.NullsDistinct {
				s += " NULLS DISTINCT"
			} else {
				s += " NULLS NOT DISTINCT"
			}
		}
		return s + deferrableSuffix(tc.Deferrable, tc.InitiallyDeferred)

	case ir.TableConstraintForeignKey:
		return foreignKeyDefinition(tc.Columns, tc.RefTable, tc.RefColumns, tc.Match, tc.OnDelete, tc.OnUpdate,
			tc.SetColsOnDelete, tc.SetColsOnUpdate, tc.PeriodColumns) + deferrableSuffix(tc.Deferrable, tc.InitiallyDeferred)

	case ir.TableConstraintExclude:
		s := fmt.Sprintf("EXCLUDE USING %s (%s)", tc.ExcludeMethod, excludeElementsClause(tc.ExcludeElements))
		if tc.ExcludeWhere != "" {
			s += fmt.Sprintf(" WHERE (%s)", tc.ExcludeWhere)
		}
		return s

	case ir.TableConstraintNotNull:
		return fmt.Sprintf("NOT NULL %s", QuoteIdentifier(tc.NotNullColumn))
	}
	return ""
}

func foreignKeyDefinition(localCols []string, refTable string, refCols []string, match ir.MatchType,
	onDelete, onUpdate ir.ReferentialAction, setColsDelete, setColsUpdate, periodCols []string) string {
	s := fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s", quoteNameList(localCols), QuoteIdentifier(refTable))
	if len(refCols) > 0 {
		s += fmt.Sprintf(" (%s)", quoteNameList(refCols))
	}
	if len(periodCols) > 0 {
		s += fmt.Sprintf(" PERIOD (%s)", quoteNameList(periodCols))
	}
	if match != ir.MatchUnspecified {
		s += " MATCH " + string(match)
	}
	if onDelete != ir.ActionUnspecified {
		s += " ON DELETE " + string(onDelete)
		if len(setColsDelete) > 0 {
			s += fmt.Sprintf(" (%s)", quoteNameList(setColsDelete))
		}
	}
	if onUpdate != ir.ActionUnspecified {
		s += " ON UPDATE " + string(onUpdate)
		if len(setColsUpdate) > 0 {
			s += fmt.Sprintf(" (%s)", quoteNameList(setColsUpdate))
		}
	}
	return s
}

// liftedForeignKeyFromColumn renders the FOREIGN KEY definition for a
// column's inline REFERENCES constraint, lifted to table-constraint form,
// per spec §4.6 ("for added column-level REFERENCES, it is lifted to
// FOREIGN KEY (<col>) REFERENCES …").
func liftedForeignKeyFromColumn(colName string, cc *ir.ColumnConstraint) string {
	var refCols []string
	if cc.RefColumn != "" {
		refCols = []string{cc.RefColumn}
	}
	return foreignKeyDefinition([]string{colName}, cc.RefTable, refCols, cc.Match, cc.OnDelete, cc.OnUpdate, nil, nil, nil) +
		deferrableSuffix(cc.Deferrable, cc.InitiallyDeferred)
}

func excludeElementsClause(elements []ir.ExcludeElement) string {
	parts := make([]string, len(elements))
	for i, el := range elements {
		var b strings.Builder
		b.WriteString(el.Expr)
		if el.Collation != "" {
			fmt.Fprintf(&b, " COLLATE %s", QuoteIdentifier(el.Collation))
		}
		if el.OpClass != "" {
			b.WriteByte(' ')
			b.WriteString(el.OpClass)
		}
		if el.Order != "" {
			b.WriteByte(' ')
			b.WriteString(el.Order)
		}
		if el.NullsOrder != "" {
			fmt.Fprintf(&b, " NULLS %s", el.NullsOrder)
		}
		fmt.Fprintf(&b, " WITH %s", el.Operator)
		parts[i] = b.String()
	}
	return strings.Join(parts, ", ")
}

func quoteNameList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = QuoteIdentifier(n)
	}
	return strings.Join(quoted, ", ")
}

// namedConstraintClause renders "[CONSTRAINT <name>] <definition>" for a
// table constraint, used both inside CREATE TABLE bodies and after
// ALTER TABLE ... ADD.
func namedConstraintClause(tc *ir.TableConstraint) string {
	def := tableConstraintDefinition(tc)
	if tc.Name == "" {
		return def
	}
	return fmt.Sprintf("CONSTRAINT %s %s", QuoteIdentifier(tc.Name), def)
}
