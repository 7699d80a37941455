package sqlgen

import (
	"fmt"

	"github.com/pgdelta/pgdelta/internal/differ"
	"github.com/pgdelta/pgdelta/internal/ir"
)

// Generate renders sd into forward migration SQL, following the
// deterministic emission order from spec §4.6: header, BEGIN, drops,
// creates (dependency-ordered, cycle-split), modifies (in the diff's
// per-table sub-order), COMMIT.
func Generate(sd *differ.SchemaDiff, opts Options) *SQLMigration {
	w := &writer{}

	if opts.AddComments {
		writeHeader(w, sd)
	}
	if opts.UseTransactions {
		w.raw("BEGIN;\n\n")
	}

	generateDrops(w, sd, opts)
	generateCreates(w, sd, opts)
	generateModifies(w, sd, opts)

	if opts.UseTransactions {
		w.raw("COMMIT;\n")
	}

	return &SQLMigration{
		ForwardSQL:            w.String(),
		StatementCount:        w.statements,
		HasDestructiveChanges: w.destructive,
	}
}

func writeHeader(w *writer, sd *differ.SchemaDiff) {
	w.raw("-- Migration generated by pgdelta\n")
	fmt.Fprintf(&w.out, "-- Tables added: %d, removed: %d, modified: %d\n", sd.TablesAdded, sd.TablesRemoved, sd.TablesModified)
	fmt.Fprintf(&w.out, "-- Diffs: %d critical, %d warning, %d info\n\n", sd.Critical, sd.Warning, sd.Info)
}

func generateDrops(w *writer, sd *differ.SchemaDiff, opts Options) {
	for _, td := range sd.TableDiffs {
		if !td.Removed {
			continue
		}
		w.statement(dropTableSQL(td.Table, opts), true)
	}
	if hasAny(sd.TableDiffs, func(td *differ.TableDiff) bool { return td.Removed }) {
		w.blank()
	}
}

func generateCreates(w *writer, sd *differ.SchemaDiff, opts Options) {
	var added []*ir.TableDef
	for _, td := range sd.TableDiffs {
		if td.Added && td.TargetTable != nil {
			added = append(added, td.TargetTable)
		}
	}
	if len(added) == 0 {
		return
	}

	order := differ.SortByDependency(added)

	var deferredFKs []strippedFK
	for _, t := range order.Tables {
		sql, stripped := createTableSQL(t, opts, order.HasCycles)
		w.statement(sql, false)
		w.blank()
		deferredFKs = append(deferredFKs, stripped...)
	}

	for _, fk := range deferredFKs {
		stmt := fmt.Sprintf("ALTER TABLE %s ADD %s", qualifiedTable(fk.table, opts), fkClauseWithName(fk.name, fk.def))
		w.statement(stmt, false)
	}
	if len(deferredFKs) > 0 {
		w.blank()
	}
}

func fkClauseWithName(name, def string) string {
	if name == "" {
		return def
	}
	return fmt.Sprintf("CONSTRAINT %s %s", QuoteIdentifier(name), def)
}

func generateModifies(w *writer, sd *differ.SchemaDiff, opts Options) {
	for _, td := range sd.TableDiffs {
		if td.Added || td.Removed || !td.Modified {
			continue
		}
		generateModifyTable(w, td, opts)
	}
}

func generateModifyTable(w *writer, td *differ.TableDiff, opts Options) {
	table := qualifiedTable(td.Table, opts)

	// 1. DROP COLUMN
	for _, cd := range td.RemovedColumns {
		w.statement(fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s%s", table, ifExistsClause(opts), QuoteIdentifier(cd.Name)), true)
	}

	// 2. ADD COLUMN, with DEFAULT/NOT NULL inlined; inline REFERENCES is
	// lifted and deferred to the constraint-adds step (5).
	var liftedFKs []strippedFK
	for _, cd := range td.AddedColumns {
		w.statement(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", table, addColumnClause(cd)), false)
		if cd.Column != nil {
			for _, cc := range cd.Column.Constraints {
				if cc.Kind == ir.ColumnConstraintReferences {
					liftedFKs = append(liftedFKs, strippedFK{name: cc.Name, def: liftedForeignKeyFromColumn(cd.Name, cc)})
				}
			}
		}
	}

	// 3. modified columns, per-field sub-order
	for _, cd := range td.ModifiedColumns {
		generateModifiedColumn(w, table, cd, opts)
	}

	// 4. constraint drops
	for _, c := range td.RemovedConstraints {
		w.statement(fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s%s", table, ifExistsClause(opts), QuoteIdentifier(c.Name)), true)
	}

	// 5. constraint adds, then deferred lifted REFERENCES
	for _, c := range td.AddedConstraints {
		w.statement(fmt.Sprintf("ALTER TABLE %s ADD %s", table, namedConstraintClause(c.Constraint)), false)
	}
	for _, fk := range liftedFKs {
		w.statement(fmt.Sprintf("ALTER TABLE %s ADD %s", table, fkClauseWithName(fk.name, fk.def)), false)
	}

	// 6. constraint modifications: drop old, add new
	for _, c := range td.ModifiedConstraints {
		w.statement(fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s%s", table, ifExistsClause(opts), QuoteIdentifier(c.Name)), true)
		w.statement(fmt.Sprintf("ALTER TABLE %s ADD %s", table, namedConstraintClause(c.Constraint)), false)
	}

	w.blank()
}

func generateModifiedColumn(w *writer, table string, cd *differ.ColumnDiff, opts Options) {
	col := QuoteIdentifier(cd.Name)

	if cd.TypeChanged {
		w.statement(fmt.Sprintf("-- WARNING: type change may require an explicit USING clause\nALTER TABLE %s ALTER COLUMN %s TYPE %s", table, col, cd.NewType), true)
	}

	if cd.DefaultChanged {
		if cd.NewDefault == "(none)" {
			w.statement(fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT", table, col), false)
		} else {
			w.statement(fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s", table, col, cd.NewDefault), false)
		}
	}

	if cd.NullableChanged && !cd.NewNullable && opts.AddWarnings {
		placeholder := "NULL"
		if cd.NewDefault != "" && cd.NewDefault != "(none)" {
			placeholder = cd.NewDefault
		}
		w.raw(fmt.Sprintf("-- UPDATE %s SET %s = %s WHERE %s IS NULL;\n", table, col, placeholder, col))
	}

	if cd.NullableChanged {
		if cd.NewNullable {
			w.statement(fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL", table, col), false)
		} else {
			w.statement(fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL", table, col), false)
		}
	}
}

func addColumnClause(cd *differ.ColumnDiff) string {
	s := fmt.Sprintf("%s %s", QuoteIdentifier(cd.Name), cd.NewType)
	if cd.Column != nil {
		if d := cd.Column.Default(); d != nil {
			s += " DEFAULT " + d.Expr
		}
		if cd.Column.HasNotNull() {
			s += " NOT NULL"
		}
	}
	return s
}

func ifExistsClause(opts Options) string {
	if opts.UseIfExists {
		return "IF EXISTS "
	}
	return ""
}

func hasAny(diffs []*differ.TableDiff, pred func(*differ.TableDiff) bool) bool {
	for _, td := range diffs {
		if pred(td) {
			return true
		}
	}
	return false
}
