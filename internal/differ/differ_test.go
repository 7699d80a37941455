package differ

import (
	"testing"

	"github.com/pgdelta/pgdelta/internal/ir"
)

func col(name, dataType string, constraints ...*ir.ColumnConstraint) *ir.Column {
	return &ir.Column{Name: name, DataType: dataType, Constraints: constraints}
}

func notNull() *ir.ColumnConstraint {
	return &ir.ColumnConstraint{Kind: ir.ColumnConstraintNotNull}
}

func defaultExprConstraint(expr string) *ir.ColumnConstraint {
	return &ir.ColumnConstraint{Kind: ir.ColumnConstraintDefault, Expr: expr}
}

func table(name string, elements ...ir.TableElement) *ir.TableDef {
	return &ir.TableDef{Name: name, Elements: elements}
}

func schemaOf(tables ...*ir.TableDef) *ir.Schema {
	return &ir.Schema{Name: "public", Tables: tables}
}

func defaultOptions() Options {
	return Options{CompareConstraints: true}
}

func findDiff(diffs []Diff, kind Kind, element string) *Diff {
	for i := range diffs {
		if diffs[i].Kind == kind && diffs[i].Element == element {
			return &diffs[i]
		}
	}
	return nil
}

func TestDiff_ColumnAdded(t *testing.T) {
	src := schemaOf(table("users", col("id", "integer")))
	tgt := schemaOf(table("users", col("id", "integer"), col("email", "text")))

	result := Diff(src, tgt, defaultOptions())

	if result.TablesModified != 1 {
		t.Fatalf("TablesModified = %d, want 1", result.TablesModified)
	}
	if d := findDiff(result.TableDiffs[0].Diffs, KindColumnAdded, "email"); d == nil {
		t.Fatalf("expected COLUMN_ADDED diff for email")
	} else if d.Severity != SeverityWarning {
		t.Errorf("severity = %s, want WARNING", d.Severity)
	}
}

func TestDiff_ColumnRemoved(t *testing.T) {
	src := schemaOf(table("users", col("id", "integer"), col("legacy", "text")))
	tgt := schemaOf(table("users", col("id", "integer")))

	result := Diff(src, tgt, defaultOptions())

	d := findDiff(result.TableDiffs[0].Diffs, KindColumnRemoved, "legacy")
	if d == nil {
		t.Fatalf("expected COLUMN_REMOVED diff for legacy")
	}
	if d.Severity != SeverityCritical {
		t.Errorf("severity = %s, want CRITICAL", d.Severity)
	}
}

func TestDiff_ColumnTypeChanged(t *testing.T) {
	src := schemaOf(table("users", col("age", "smallint")))
	tgt := schemaOf(table("users", col("age", "integer")))

	result := Diff(src, tgt, defaultOptions())

	d := findDiff(result.TableDiffs[0].Diffs, KindColumnTypeChanged, "age")
	if d == nil {
		t.Fatalf("expected COLUMN_TYPE_CHANGED diff")
	}
	if d.Old != "smallint" || d.New != "integer" {
		t.Errorf("Old/New = %q/%q, want smallint/integer", d.Old, d.New)
	}
	if d.Severity != SeverityCritical {
		t.Errorf("severity = %s, want CRITICAL", d.Severity)
	}
}

func TestDiff_ColumnNullableChanged(t *testing.T) {
	src := schemaOf(table("users", col("email", "text")))
	tgt := schemaOf(table("users", col("email", "text", notNull())))

	result := Diff(src, tgt, defaultOptions())

	d := findDiff(result.TableDiffs[0].Diffs, KindColumnNullableChanged, "email")
	if d == nil {
		t.Fatalf("expected COLUMN_NULLABLE_CHANGED diff")
	}
	if d.Old != "NULL" || d.New != "NOT NULL" {
		t.Errorf("Old/New = %q/%q, want NULL/NOT NULL", d.Old, d.New)
	}
}

func TestDiff_ColumnDefaultChanged(t *testing.T) {
	src := schemaOf(table("users", col("status", "text", defaultExprConstraint("'pending'"))))
	tgt := schemaOf(table("users", col("status", "text", defaultExprConstraint("'active'"))))

	result := Diff(src, tgt, defaultOptions())

	d := findDiff(result.TableDiffs[0].Diffs, KindColumnDefaultChanged, "status")
	if d == nil {
		t.Fatalf("expected COLUMN_DEFAULT_CHANGED diff")
	}
	if d.Old != "'pending'" || d.New != "'active'" {
		t.Errorf("Old/New = %q/%q", d.Old, d.New)
	}
}

func TestDiff_TableAddedAndRemoved(t *testing.T) {
	src := schemaOf(table("old_tbl", col("id", "integer")))
	tgt := schemaOf(table("new_tbl", col("id", "integer")))

	result := Diff(src, tgt, defaultOptions())

	if result.TablesAdded != 1 || result.TablesRemoved != 1 {
		t.Fatalf("TablesAdded=%d TablesRemoved=%d, want 1/1", result.TablesAdded, result.TablesRemoved)
	}
	if len(result.AddedTableNames) != 1 || result.AddedTableNames[0] != "new_tbl" {
		t.Errorf("AddedTableNames = %v", result.AddedTableNames)
	}
	if len(result.RemovedTableNames) != 1 || result.RemovedTableNames[0] != "old_tbl" {
		t.Errorf("RemovedTableNames = %v", result.RemovedTableNames)
	}
}

func TestDiff_ConstraintDirectMatch(t *testing.T) {
	pk := &ir.TableConstraint{Name: "users_pkey", Kind: ir.TableConstraintPrimaryKey, Columns: []string{"id"}}
	src := schemaOf(table("users", col("id", "integer"), pk))
	tgt := schemaOf(table("users", col("id", "integer"), pk))

	result := Diff(src, tgt, defaultOptions())

	if result.TableDiffs[0].Modified {
		t.Errorf("table should not be modified when constraints are identical")
	}
}

func TestDiff_ConstraintPromotedInlineMatchesTableLevel(t *testing.T) {
	// Source: inline column-level PRIMARY KEY. Target: equivalent table-level
	// PRIMARY KEY over the same column, matched by Pass 1's mixed
	// inline/table-level PK-UNIQUE rule.
	src := schemaOf(table("users", col("id", "integer", &ir.ColumnConstraint{Kind: ir.ColumnConstraintPrimaryKey})))
	tgt := schemaOf(table("users",
		col("id", "integer"),
		&ir.TableConstraint{Kind: ir.TableConstraintPrimaryKey, Columns: []string{"id"}},
	))

	result := Diff(src, tgt, defaultOptions())

	td := result.TableDiffs[0]
	if len(td.AddedConstraints) != 0 || len(td.RemovedConstraints) != 0 {
		t.Errorf("expected promoted inline PK to match table-level PK with no add/remove, got added=%d removed=%d",
			len(td.AddedConstraints), len(td.RemovedConstraints))
	}
}

func TestDiff_ConstraintAddedAndRemoved(t *testing.T) {
	chk := &ir.TableConstraint{Name: "amount_check", Kind: ir.TableConstraintCheck, Expr: "amount >= 0"}
	src := schemaOf(table("orders", col("amount", "numeric")))
	tgt := schemaOf(table("orders", col("amount", "numeric"), chk))

	result := Diff(src, tgt, defaultOptions())

	td := result.TableDiffs[0]
	if len(td.AddedConstraints) != 1 || td.AddedConstraints[0].Name != "amount_check" {
		t.Fatalf("expected amount_check to be added, got %+v", td.AddedConstraints)
	}
	if d := findDiff(td.Diffs, KindConstraintAdded, "amount_check"); d == nil {
		t.Errorf("expected CONSTRAINT_ADDED diff")
	}
}

func TestDiff_ConstraintModifiedWhenNamesIgnoredButRenamed(t *testing.T) {
	chkSrc := &ir.TableConstraint{Name: "old_name", Kind: ir.TableConstraintCheck, Expr: "amount >= 0"}
	chkTgt := &ir.TableConstraint{Name: "new_name", Kind: ir.TableConstraintCheck, Expr: "amount >= 0"}
	src := schemaOf(table("orders", col("amount", "numeric"), chkSrc))
	tgt := schemaOf(table("orders", col("amount", "numeric"), chkTgt))

	opts := defaultOptions()
	opts.IgnoreConstraintNames = true
	result := Diff(src, tgt, opts)

	td := result.TableDiffs[0]
	if len(td.ModifiedConstraints) != 1 {
		t.Fatalf("expected one modified constraint, got %d", len(td.ModifiedConstraints))
	}
	if d := findDiff(td.Diffs, KindConstraintModified, "new_name"); d == nil {
		t.Fatalf("expected CONSTRAINT_MODIFIED diff for new_name")
	} else if d.Old != "old_name" || d.New != "new_name" {
		t.Errorf("Old/New = %q/%q, want old_name/new_name", d.Old, d.New)
	}
}

func TestDiff_FilterIncludeExclude(t *testing.T) {
	src := schemaOf(table("users", col("id", "integer")), table("logs_audit", col("id", "integer")))
	tgt := schemaOf(table("users", col("id", "integer"), col("email", "text")), table("logs_audit", col("id", "integer"), col("msg", "text")))

	opts := defaultOptions()
	opts.ExcludePatterns = []string{"logs_"}
	result := Diff(src, tgt, opts)

	if len(result.TableDiffs) != 1 || result.TableDiffs[0].Table != "users" {
		t.Fatalf("expected only users table after excluding logs_, got %+v", result.TableDiffs)
	}
}

func TestDiff_TablePersistenceChanged(t *testing.T) {
	src := &ir.TableDef{Name: "cache", Persistence: ir.PersistenceNormal}
	tgt := &ir.TableDef{Name: "cache", Persistence: ir.PersistenceUnlogged}

	result := Diff(schemaOf(src), schemaOf(tgt), defaultOptions())

	td := result.TableDiffs[0]
	if !td.TypeChanged {
		t.Errorf("expected TypeChanged true")
	}
	if d := findDiff(td.Diffs, KindTableTypeChanged, ""); d == nil {
		t.Errorf("expected TABLE_TYPE_CHANGED diff")
	}
}

func TestDiff_IsEmpty(t *testing.T) {
	src := schemaOf(table("users", col("id", "integer")))
	tgt := schemaOf(table("users", col("id", "integer")))

	result := Diff(src, tgt, defaultOptions())
	if !result.IsEmpty() {
		t.Errorf("expected IsEmpty true for identical schemas")
	}
}
