package differ

import "github.com/pgdelta/pgdelta/internal/ir"

// diffColumns implements spec §4.4.1: builds name-keyed maps for both
// sides, then walks target columns (added/modified) followed by
// source-only columns (removed), appending to td in that order.
func diffColumns(td *TableDiff, src, tgt *ir.TableDef, opts Options) {
	srcCols := src.Columns()
	matchedSrc := make(map[*ir.Column]bool, len(srcCols))

	for _, tc := range tgt.Columns() {
		sc := findColumn(srcCols, tc.Name, opts.CaseSensitive)
		if sc == nil {
			cd := &ColumnDiff{Name: tc.Name, Added: true, NewType: tc.DataType, Column: tc}
			td.AddedColumns = append(td.AddedColumns, cd)
			td.Diffs = append(td.Diffs, Diff{
				Kind: KindColumnAdded, Severity: SeverityWarning, Table: tgt.Name,
				Element: tc.Name, New: tc.DataType,
			})
			continue
		}
		matchedSrc[sc] = true

		cd := &ColumnDiff{Name: tc.Name, Column: tc}
		changed := false

		if !ir.EqualTypes(sc.DataType, tc.DataType, opts.NormalizeTypes) {
			cd.OldType, cd.NewType, cd.TypeChanged = sc.DataType, tc.DataType, true
			changed = true
			td.Diffs = append(td.Diffs, Diff{
				Kind: KindColumnTypeChanged, Severity: SeverityCritical, Table: tgt.Name,
				Element: tc.Name, Old: sc.DataType, New: tc.DataType,
			})
		}

		oldNN, newNN := sc.HasNotNull(), tc.HasNotNull()
		if oldNN != newNN {
			cd.OldNullable, cd.NewNullable, cd.NullableChanged = !oldNN, !newNN, true
			changed = true
			td.Diffs = append(td.Diffs, Diff{
				Kind: KindColumnNullableChanged, Severity: SeverityWarning, Table: tgt.Name,
				Element: tc.Name, Old: nullLabel(oldNN), New: nullLabel(newNN),
			})
		}

		oldDef, newDef := defaultExpr(sc), defaultExpr(tc)
		if !ir.EqualExprs(oldDef, newDef, opts.IgnoreWhitespace) || (oldDef == "") != (newDef == "") {
			cd.OldDefault, cd.NewDefault, cd.DefaultChanged = labelOrNone(oldDef), labelOrNone(newDef), true
			changed = true
			td.Diffs = append(td.Diffs, Diff{
				Kind: KindColumnDefaultChanged, Severity: SeverityInfo, Table: tgt.Name,
				Element: tc.Name, Old: labelOrNone(oldDef), New: labelOrNone(newDef),
			})
		}

		if collationOrDefault(sc.Collation) != "" && collationOrDefault(tc.Collation) != "" &&
			!ir.EqualNames(collationOrDefault(sc.Collation), collationOrDefault(tc.Collation), opts.CaseSensitive) {
			cd.OldCollation, cd.NewCollation, cd.CollationChanged = sc.Collation, tc.Collation, true
			changed = true
			td.Diffs = append(td.Diffs, Diff{
				Kind: KindColumnCollationChanged, Severity: SeverityInfo, Table: tgt.Name,
				Element: tc.Name, Old: sc.Collation, New: tc.Collation,
			})
		}

		if sc.Storage != ir.StorageUnset && sc.Storage != ir.StorageDefault &&
			tc.Storage != ir.StorageUnset && tc.Storage != ir.StorageDefault && sc.Storage != tc.Storage {
			cd.OldStorage, cd.NewStorage, cd.StorageChanged = sc.Storage, tc.Storage, true
			changed = true
			td.Diffs = append(td.Diffs, Diff{
				Kind: KindColumnStorageChanged, Severity: SeverityInfo, Table: tgt.Name,
				Element: tc.Name, Old: string(sc.Storage), New: string(tc.Storage),
			})
		}

		if sc.Compression != tc.Compression {
			cd.OldCompression, cd.NewCompression, cd.CompressionChanged = sc.Compression, tc.Compression, true
			changed = true
			td.Diffs = append(td.Diffs, Diff{
				Kind: KindColumnCompressionChged, Severity: SeverityInfo, Table: tgt.Name,
				Element: tc.Name, Old: sc.Compression, New: tc.Compression,
			})
		}

		if changed {
			td.ModifiedColumns = append(td.ModifiedColumns, cd)
		}
	}

	for _, sc := range srcCols {
		if matchedSrc[sc] {
			continue
		}
		cd := &ColumnDiff{Name: sc.Name, Removed: true, OldType: sc.DataType}
		td.RemovedColumns = append(td.RemovedColumns, cd)
		td.Diffs = append(td.Diffs, Diff{
			Kind: KindColumnRemoved, Severity: SeverityCritical, Table: tgt.Name,
			Element: sc.Name, Old: sc.DataType,
		})
	}
}

func findColumn(cols []*ir.Column, name string, caseSensitive bool) *ir.Column {
	for _, c := range cols {
		if ir.EqualNames(c.Name, name, caseSensitive) {
			return c
		}
	}
	return nil
}

func nullLabel(notNull bool) string {
	if notNull {
		return "NOT NULL"
	}
	return "NULL"
}

func defaultExpr(c *ir.Column) string {
	if d := c.Default(); d != nil {
		return d.Expr
	}
	return ""
}

func labelOrNone(expr string) string {
	if expr == "" {
		return "(none)"
	}
	return expr
}

// collationOrDefault treats the sentinel "default" as absent, per spec
// §4.4.1.
func collationOrDefault(c string) string {
	if c == "default" {
		return ""
	}
	return c
}
