package differ

import "github.com/pgdelta/pgdelta/internal/ir"

// compareTables runs the ordered comparison steps from spec §4.4's
// "compare_tables": persistence, tablespace, columns, then constraints.
// Partition and inheritance comparison are no-ops in the core, per spec
// §4.4 step 5.
func compareTables(src, tgt *ir.TableDef, opts Options) *TableDiff {
	td := &TableDiff{Table: tgt.Name, TargetTable: tgt}

	if src.Persistence != tgt.Persistence {
		td.TypeChanged = true
		td.Modified = true
		td.Diffs = append(td.Diffs, Diff{
			Kind: KindTableTypeChanged, Severity: SeverityCritical, Table: tgt.Name,
			Old: string(src.Persistence), New: string(tgt.Persistence),
		})
	}

	if opts.CompareTablespaces && src.Tablespace != tgt.Tablespace {
		td.TablespaceChanged = true
		td.Modified = true
		td.Diffs = append(td.Diffs, Diff{
			Kind: KindTablespaceChanged, Severity: SeverityInfo, Table: tgt.Name,
			Old: src.Tablespace, New: tgt.Tablespace,
		})
	}

	diffColumns(td, src, tgt, opts)

	if opts.CompareConstraints {
		diffConstraints(td, src, tgt, opts)
	}

	if len(td.AddedColumns) > 0 || len(td.RemovedColumns) > 0 || len(td.ModifiedColumns) > 0 ||
		len(td.AddedConstraints) > 0 || len(td.RemovedConstraints) > 0 || len(td.ModifiedConstraints) > 0 {
		td.Modified = true
	}

	return td
}
