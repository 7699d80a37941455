package differ

import "github.com/pgdelta/pgdelta/internal/ir"

// color marks a node's DFS visitation state for cycle detection, per spec
// §4.5 ("DFS (three-color marks)").
type color int

const (
	white color = iota // unvisited
	gray                // on the current DFS stack
	black               // fully processed
)

// DependencyOrder is the Dependency Sorter's output, per spec §4.5: an
// ordering of the given tables such that a table referenced by another
// table's foreign key precedes it, plus a flag reporting whether the
// dependency graph contains a cycle.
type DependencyOrder struct {
	Tables    []*ir.TableDef
	HasCycles bool
}

// SortByDependency builds a directed graph with one node per table in
// tables and an edge A -> B whenever A has a foreign key (column- or
// table-level REFERENCES) targeting B; self-references are omitted and
// edges to tables outside the set are dropped, since those are assumed to
// already exist (spec §4.5). It detects cycles via three-color DFS, then
// produces a topological order via post-order DFS starting from the first
// unvisited table in input order, giving a fixed, stable choice when the
// DAG admits more than one valid order (spec §5).
func SortByDependency(tables []*ir.TableDef) DependencyOrder {
	index := make(map[string]int, len(tables))
	for i, t := range tables {
		index[t.Name] = i
	}

	adj := make([][]int, len(tables))
	for i, t := range tables {
		for _, ref := range foreignKeyTargets(t) {
			j, ok := index[ref]
			if !ok || j == i {
				continue
			}
			adj[i] = append(adj[i], j)
		}
	}

	marks := make([]color, len(tables))
	hasCycles := false
	var detectCycle func(n int)
	detectCycle = func(n int) {
		marks[n] = gray
		for _, m := range adj[n] {
			switch marks[m] {
			case gray:
				hasCycles = true
			case white:
				detectCycle(m)
			}
		}
		marks[n] = black
	}
	for i := range tables {
		if marks[i] == white {
			detectCycle(i)
		}
	}

	visited := make([]bool, len(tables))
	var order []*ir.TableDef
	var visit func(n int)
	visit = func(n int) {
		visited[n] = true
		for _, m := range adj[n] {
			if !visited[m] {
				visit(m)
			}
		}
		order = append(order, tables[n])
	}
	for i := range tables {
		if !visited[i] {
			visit(i)
		}
	}

	return DependencyOrder{Tables: order, HasCycles: hasCycles}
}

// foreignKeyTargets returns every table name referenced by t's foreign
// keys, column-level and table-level alike (spec §4.5).
func foreignKeyTargets(t *ir.TableDef) []string {
	var targets []string
	for _, col := range t.Columns() {
		for _, cc := range col.Constraints {
			if cc.Kind == ir.ColumnConstraintReferences && cc.RefTable != "" {
				targets = append(targets, cc.RefTable)
			}
		}
	}
	for _, tc := range t.TableConstraints() {
		if tc.Kind == ir.TableConstraintForeignKey && tc.RefTable != "" {
			targets = append(targets, tc.RefTable)
		}
	}
	return targets
}
