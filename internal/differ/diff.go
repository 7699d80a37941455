package differ

import (
	"strings"

	"github.com/pgdelta/pgdelta/internal/ir"
)

// Diff computes a SchemaDiff between source and target, per spec §4.4.
// Table iteration order follows the order tables were matched: target
// tables in their declared order, with source-only removals appended
// after, matching spec §5's insertion-order guarantee.
func Diff(source, target *ir.Schema, opts Options) *SchemaDiff {
	result := &SchemaDiff{}

	sourceTables := filterTables(source.Tables, opts)
	targetTables := filterTables(target.Tables, opts)

	matchedSource := make(map[*ir.TableDef]bool, len(sourceTables))

	for _, t := range targetTables {
		src := findTable(sourceTables, t.Name, opts.CaseSensitive)
		if src == nil {
			td := addedTableDiff(t)
			result.TableDiffs = append(result.TableDiffs, td)
			result.AddedTableNames = append(result.AddedTableNames, t.Name)
			result.TablesAdded++
			for _, diff := range td.Diffs {
				result.record(diff)
			}
			continue
		}
		matchedSource[src] = true
		td := compareTables(src, t, opts)
		result.TableDiffs = append(result.TableDiffs, td)
		if td.Modified {
			result.TablesModified++
		}
		for _, diff := range td.Diffs {
			result.record(diff)
		}
	}

	for _, s := range sourceTables {
		if matchedSource[s] {
			continue
		}
		td := removedTableDiff(s)
		result.TableDiffs = append(result.TableDiffs, td)
		result.RemovedTableNames = append(result.RemovedTableNames, s.Name)
		result.TablesRemoved++
		for _, diff := range td.Diffs {
			result.record(diff)
		}
	}

	return result
}

// filterTables applies the include/exclude substring-match filter from
// spec §4.4: a table is kept iff it matches at least one include pattern
// (when any are given) and no exclude pattern.
func filterTables(tables []*ir.TableDef, opts Options) []*ir.TableDef {
	if len(opts.IncludePatterns) == 0 && len(opts.ExcludePatterns) == 0 {
		return tables
	}
	var kept []*ir.TableDef
	for _, t := range tables {
		if len(opts.IncludePatterns) > 0 && !matchesAny(t.Name, opts.IncludePatterns) {
			continue
		}
		if matchesAny(t.Name, opts.ExcludePatterns) {
			continue
		}
		kept = append(kept, t)
	}
	return kept
}

func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(name, p) {
			return true
		}
	}
	return false
}

func findTable(tables []*ir.TableDef, name string, caseSensitive bool) *ir.TableDef {
	for _, t := range tables {
		if ir.EqualNames(t.Name, name, caseSensitive) {
			return t
		}
	}
	return nil
}

func addedTableDiff(t *ir.TableDef) *TableDiff {
	td := &TableDiff{Table: t.Name, Added: true, TargetTable: t}
	td.Diffs = append(td.Diffs, Diff{Kind: KindTableAdded, Severity: SeverityWarning, Table: t.Name})
	return td
}

func removedTableDiff(t *ir.TableDef) *TableDiff {
	td := &TableDiff{Table: t.Name, Removed: true, TargetTable: t}
	td.Diffs = append(td.Diffs, Diff{Kind: KindTableRemoved, Severity: SeverityCritical, Table: t.Name})
	return td
}
