package sqlgen

import (
	"fmt"
	"strings"

	"github.com/pgdelta/pgdelta/internal/ir"
)

// strippedFK is a foreign key pulled out of a CREATE TABLE body because
// the tables being created contain a dependency cycle (spec §4.6 step 4).
type strippedFK struct {
	table string
	name  string
	def   string
}

// createTableSQL renders one CREATE TABLE statement. When stripFK is true
// (generateCreates passes it for every created table once the dependency
// order has any cycle, whether or not this table is in it), column-level REFERENCES
// and table-level FOREIGN KEY clauses are omitted from the body and
// returned separately for later ALTER TABLE ADD CONSTRAINT emission.
func createTableSQL(t *ir.TableDef, opts Options, stripFK bool) (string, []strippedFK) {
	if t.Variant == ir.TableVariantPartitionOf && t.Partition != nil {
		return partitionOfSQL(t, opts), nil
	}

	var stripped []strippedFK
	var lines []string

	for _, el := range t.Elements {
		switch e := el.(type) {
		case *ir.Column:
			col := e
			if stripFK {
				for _, cc := range col.Constraints {
					if cc.Kind == ir.ColumnConstraintReferences {
						stripped = append(stripped, strippedFK{
							table: t.Name, name: cc.Name,
							def: liftedForeignKeyFromColumn(col.Name, cc),
						})
					}
				}
				lines = append(lines, "    "+columnDefinitionWithoutReferences(col))
				continue
			}
			lines = append(lines, "    "+columnDefinition(col))

		case *ir.TableConstraint:
			tc := e
			if stripFK && tc.Kind == ir.TableConstraintForeignKey {
				stripped = append(stripped, strippedFK{table: t.Name, name: tc.Name, def: tableConstraintDefinition(tc)})
				continue
			}
			lines = append(lines, "    "+namedConstraintClause(tc))

		case *ir.LikeClause:
			lines = append(lines, "    "+likeClause(e))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s%s (\n", persistencePrefix(t.Persistence), qualifiedTable(t.Name, opts))
	b.WriteString(strings.Join(lines, ",\n"))
	b.WriteString("\n)")

	if t.Partition != nil && t.Partition.Strategy != "" {
		fmt.Fprintf(&b, " PARTITION BY %s (%s)", t.Partition.Strategy, quoteNameList(t.Partition.Columns))
	}
	if len(t.Inherits) > 0 {
		fmt.Fprintf(&b, " INHERITS (%s)", quoteNameList(t.Inherits))
	}
	if len(t.StorageParams) > 0 {
		b.WriteString(" WITH (")
		b.WriteString(storageParamsClause(t.StorageParams))
		b.WriteString(")")
	}
	if t.Tablespace != "" {
		fmt.Fprintf(&b, " TABLESPACE %s", QuoteIdentifier(t.Tablespace))
	}

	return b.String(), stripped
}

// partitionOfSQL renders "CREATE TABLE <t> PARTITION OF <parent> FOR VALUES
// <bound>", the child-table form of §4.2's grammar. Column/constraint
// bodies are accepted but not differed for this variant (spec §4.4 step 5).
func partitionOfSQL(t *ir.TableDef, opts Options) string {
	return fmt.Sprintf("CREATE TABLE %s%s PARTITION OF %s %s",
		persistencePrefix(t.Persistence), qualifiedTable(t.Name, opts),
		QuoteIdentifier(t.Partition.Parent), t.Partition.Bound)
}

func persistencePrefix(p ir.Persistence) string {
	switch p {
	case ir.PersistenceTemporary:
		return "TEMPORARY "
	case ir.PersistenceUnlogged:
		return "UNLOGGED "
	}
	return ""
}

func storageParamsClause(params []ir.StorageParam) string {
	parts := make([]string, len(params))
	for i, p := range params {
		if p.Value == "" {
			parts[i] = p.Name
		} else {
			parts[i] = fmt.Sprintf("%s = %s", p.Name, p.Value)
		}
	}
	return strings.Join(parts, ", ")
}

func likeClause(l *ir.LikeClause) string {
	s := "LIKE " + QuoteIdentifier(l.SourceTable)
	for _, inc := range l.Including {
		s += " INCLUDING " + inc
	}
	for _, exc := range l.Excluding {
		s += " EXCLUDING " + exc
	}
	return s
}

// columnDefinitionWithoutReferences renders columnDefinition but omits any
// inline REFERENCES constraint clause, used when a table's foreign keys
// are stripped out for cycle-breaking (spec §4.6 step 4).
func columnDefinitionWithoutReferences(col *ir.Column) string {
	filtered := &ir.Column{
		Name: col.Name, DataType: col.DataType, Collation: col.Collation,
		Storage: col.Storage, Compression: col.Compression,
	}
	for _, cc := range col.Constraints {
		if cc.Kind != ir.ColumnConstraintReferences {
			filtered.Constraints = append(filtered.Constraints, cc)
		}
	}
	return columnDefinition(filtered)
}

func dropTableSQL(name string, opts Options) string {
	return fmt.Sprintf("DROP TABLE %s%s CASCADE", ifExistsClause(opts), qualifiedTable(name, opts))
}
