package differ

import (
	"strings"

	"github.com/pgdelta/pgdelta/internal/ir"
)

// candidate is one constraint eligible for matching: a genuine table-level
// constraint, or a column-level inline PRIMARY KEY/UNIQUE promoted to a
// synthetic table-level one, per spec §4.4.2.
type candidate struct {
	tc         *ir.TableConstraint
	fromColumn string // non-empty when promoted from an inline constraint
}

// diffConstraints implements spec §4.4.2's two-pass greedy matching
// between the source and target table's constraint sets.
func diffConstraints(td *TableDiff, src, tgt *ir.TableDef, opts Options) {
	srcCands := constraintCandidates(src)
	tgtCands := constraintCandidates(tgt)

	srcMatched := make([]bool, len(srcCands))
	tgtMatched := make([]bool, len(tgtCands))

	// Pass 1: direct equivalence.
	for ti, t := range tgtCands {
		if tgtMatched[ti] {
			continue
		}
		for si, s := range srcCands {
			if srcMatched[si] {
				continue
			}
			if constraintsEquivalent(s, t, opts) {
				srcMatched[si] = true
				tgtMatched[ti] = true
				if constraintChanged(s, t, opts) {
					recordModified(td, s, t)
				}
				break
			}
		}
	}

	// Pass 2: N-to-1, target table-level vs source column-level inline.
	matchPromoted(tgtCands, tgtMatched, srcCands, srcMatched)
	// Pass 2 reversed: source table-level vs target column-level inline.
	matchPromoted(srcCands, srcMatched, tgtCands, tgtMatched)

	for ti, t := range tgtCands {
		if tgtMatched[ti] {
			continue
		}
		td.AddedConstraints = append(td.AddedConstraints, &ConstraintDiff{
			Name: constraintDiffName(t), Added: true, NewKind: t.tc.Kind,
			FromColumn: t.fromColumn, Constraint: t.tc,
		})
		td.Diffs = append(td.Diffs, Diff{
			Kind: KindConstraintAdded, Severity: SeverityInfo, Table: tgt.Name,
			Element: constraintDiffName(t),
		})
	}
	for si, s := range srcCands {
		if srcMatched[si] {
			continue
		}
		td.RemovedConstraints = append(td.RemovedConstraints, &ConstraintDiff{
			Name: constraintDiffName(s), Removed: true, OldKind: s.tc.Kind,
			FromColumn: s.fromColumn, Constraint: s.tc,
		})
		td.Diffs = append(td.Diffs, Diff{
			Kind: KindConstraintRemoved, Severity: SeverityWarning, Table: tgt.Name,
			Element: constraintDiffName(s),
		})
	}
}

func recordModified(td *TableDiff, s, t candidate) {
	td.ModifiedConstraints = append(td.ModifiedConstraints, &ConstraintDiff{
		Name: constraintDiffName(t), Modified: true,
		OldKind: s.tc.Kind, NewKind: t.tc.Kind,
		FromColumn: t.fromColumn, Constraint: t.tc,
	})
	td.Diffs = append(td.Diffs, Diff{
		Kind: KindConstraintModified, Severity: SeverityInfo, Table: td.Table,
		Element: constraintDiffName(t), Old: constraintDiffName(s), New: constraintDiffName(t),
	})
}

// matchPromoted implements spec §4.4.2's N-to-1 pass: an unmatched
// table-level PK/UNIQUE on tableSide, covered exactly by N unmatched
// column-level (promoted) entries of the same kind on colSide, matches all
// N at once. Called once in each direction (target-vs-source and
// source-vs-target).
func matchPromoted(tableSide []candidate, tableMatched []bool, colSide []candidate, colMatched []bool) {
	for ti, t := range tableSide {
		if tableMatched[ti] || t.fromColumn != "" {
			continue
		}
		if t.tc.Kind != ir.TableConstraintPrimaryKey && t.tc.Kind != ir.TableConstraintUnique {
			continue
		}
		need := map[string]bool{}
		for _, c := range t.tc.Columns {
			need[lowerName(c)] = true
		}
		if len(need) != len(t.tc.Columns) {
			continue // duplicate column name in the list, not expressible via N-to-1
		}

		var coveringIdx []int
		covered := map[string]bool{}
		for ci, c := range colSide {
			if colMatched[ci] || c.fromColumn == "" {
				continue
			}
			if c.tc.Kind != t.tc.Kind {
				continue
			}
			if len(c.tc.Columns) != 1 {
				continue
			}
			name := lowerName(c.tc.Columns[0])
			if need[name] && !covered[name] {
				covered[name] = true
				coveringIdx = append(coveringIdx, ci)
			}
		}

		if len(coveringIdx) != len(need) {
			continue
		}

		tableMatched[ti] = true
		for _, ci := range coveringIdx {
			colMatched[ci] = true
		}
	}
}

// constraintCandidates returns every table-level constraint plus a
// synthetic entry for each column-level inline PRIMARY KEY/UNIQUE, per
// spec §4.4.2.
func constraintCandidates(t *ir.TableDef) []candidate {
	var cands []candidate
	for _, tc := range t.TableConstraints() {
		cands = append(cands, candidate{tc: tc})
	}
	for _, col := range t.Columns() {
		for _, cc := range col.Constraints {
			if cc.Kind == ir.ColumnConstraintPrimaryKey || cc.Kind == ir.ColumnConstraintUnique {
				synthetic := ir.InlineColumnConstraint(col, cc)
				cands = append(cands, candidate{tc: synthetic, fromColumn: col.Name})
			}
		}
	}
	return cands
}

func constraintDiffName(c candidate) string {
	if c.tc.Name != "" {
		return c.tc.Name
	}
	if c.fromColumn != "" {
		return c.fromColumn
	}
	return "(unnamed)"
}

func lowerName(s string) string {
	return strings.ToLower(s)
}

// constraintsEquivalent implements the Pass 1 equivalence test from spec
// §4.4.2.
func constraintsEquivalent(s, t candidate, opts Options) bool {
	sameKind := s.tc.Kind == t.tc.Kind
	mixedPKOrUnique := (s.tc.Kind == ir.TableConstraintPrimaryKey || s.tc.Kind == ir.TableConstraintUnique) &&
		s.tc.Kind == t.tc.Kind && (s.fromColumn != "") != (t.fromColumn != "")

	if !sameKind {
		return false
	}

	if !opts.IgnoreConstraintNames && !mixedPKOrUnique {
		if !ir.EqualNames(s.tc.Name, t.tc.Name, opts.CaseSensitive) {
			return false
		}
	}

	if mixedPKOrUnique {
		tableLevel, colLevel := s, t
		if s.fromColumn != "" {
			tableLevel, colLevel = t, s
		}
		return len(tableLevel.tc.Columns) == 1 &&
			ir.EqualNames(tableLevel.tc.Columns[0], colLevel.fromColumn, opts.CaseSensitive)
	}

	return constraintPayloadEqual(s.tc, t.tc, opts)
}

// constraintChanged reports whether two matched constraints still differ in
// a way worth surfacing as CONSTRAINT_MODIFIED rather than silence. Pass 1's
// equivalence test already bakes in payload equality, so the only gap a
// matched pair can still show is a name mismatch, and only when the match
// went through opts.IgnoreConstraintNames: the mixed inline/table-level
// PK-UNIQUE comparison (spec §4.4.2) never checks names at all, so a
// mismatch there is expected, not a rename.
func constraintChanged(s, t candidate, opts Options) bool {
	mixedPKOrUnique := s.tc.Kind == t.tc.Kind &&
		(s.tc.Kind == ir.TableConstraintPrimaryKey || s.tc.Kind == ir.TableConstraintUnique) &&
		(s.fromColumn != "") != (t.fromColumn != "")
	if mixedPKOrUnique {
		return false
	}
	return opts.IgnoreConstraintNames && !ir.EqualNames(s.tc.Name, t.tc.Name, opts.CaseSensitive)
}

func constraintPayloadEqual(a, b *ir.TableConstraint, opts Options) bool {
	switch a.Kind {
	case ir.TableConstraintCheck:
		return ir.EqualExprs(a.Expr, b.Expr, opts.IgnoreWhitespace)

	case ir.TableConstraintPrimaryKey, ir.TableConstraintUnique:
		if !sameNameList(a.Columns, b.Columns, opts.CaseSensitive) {
			return false
		}
		if !ir.EqualNames(a.WithoutOverlaps, b.WithoutOverlaps, opts.CaseSensitive) {
			return false
		}
		if a.NullsDistinct != nil && b.NullsDistinct != nil && *a.NullsDistinct != *b.NullsDistinct {
			return false
		}
		return true

	case ir.TableConstraintForeignKey:
		if !ir.EqualNames(a.RefTable, b.RefTable, opts.CaseSensitive) {
			return false
		}
		if !sameNameList(a.Columns, b.Columns, opts.CaseSensitive) {
			return false
		}
		if !sameNameList(a.RefColumns, b.RefColumns, opts.CaseSensitive) {
			return false
		}
		if a.Match != "" && b.Match != "" && a.Match != b.Match {
			return false
		}
		if a.OnDelete != b.OnDelete || a.OnUpdate != b.OnUpdate {
			return false
		}
		if !sameNameList(a.SetColsOnDelete, b.SetColsOnDelete, opts.CaseSensitive) {
			return false
		}
		if !sameNameList(a.SetColsOnUpdate, b.SetColsOnUpdate, opts.CaseSensitive) {
			return false
		}
		return sameNameList(a.PeriodColumns, b.PeriodColumns, opts.CaseSensitive)

	case ir.TableConstraintExclude:
		if a.ExcludeMethod != b.ExcludeMethod {
			return false
		}
		if len(a.ExcludeElements) != len(b.ExcludeElements) {
			return false
		}
		for i := range a.ExcludeElements {
			ea, eb := a.ExcludeElements[i], b.ExcludeElements[i]
			if ea.Expr != eb.Expr || ea.Collation != eb.Collation || ea.OpClass != eb.OpClass ||
				ea.Order != eb.Order || ea.NullsOrder != eb.NullsOrder || ea.Operator != eb.Operator {
				return false
			}
		}
		return ir.EqualExprs(a.ExcludeWhere, b.ExcludeWhere, opts.IgnoreWhitespace)

	case ir.TableConstraintNotNull:
		return ir.EqualNames(a.NotNullColumn, b.NotNullColumn, opts.CaseSensitive)
	}
	return false
}

func sameNameList(a, b []string, caseSensitive bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !ir.EqualNames(a[i], b[i], caseSensitive) {
			return false
		}
	}
	return true
}
