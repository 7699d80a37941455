// Package ir holds the schema model shared by the parser, the introspection
// adapter, the normalizer, the differ, the dependency sorter, and the SQL
// and report generators. Every node here is constructed once (by the parser
// or by introspection) and treated as immutable by every downstream reader;
// see spec §3 "Lifecycles".
package ir

// Schema is an ordered collection of tables within a single PostgreSQL
// namespace. Types/functions/procedures are intentionally absent: the core
// does not differ them (spec §1 Non-goals), so the model carries nothing
// for them to avoid a silent footgun of fields nobody fills in.
type Schema struct {
	Name   string
	Tables []*TableDef
}

// NewSchema returns an empty schema named "public", PostgreSQL's default.
func NewSchema() *Schema {
	return &Schema{Name: "public"}
}

// Table looks up a table by exact (already case-folded, if desired by the
// caller) name. Returns nil when absent.
func (s *Schema) Table(name string) *TableDef {
	if s == nil {
		return nil
	}
	for _, t := range s.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// TableDef is a single CREATE TABLE statement's model, per spec §3.
type TableDef struct {
	Name          string
	Variant       TableVariant
	Persistence   Persistence
	Tablespace    string
	StorageParams []StorageParam // ordered name -> value
	Inherits      []string
	Partition     *PartitionSpec
	Elements      []TableElement
}

// StorageParam is one entry of a WITH (...) storage-parameters clause.
type StorageParam struct {
	Name  string
	Value string
}

// PartitionSpec carries both PARTITION BY (root) and PARTITION OF (child)
// information. Only one of Strategy/Columns (root) or Bound (child) is
// populated for a given table, per spec §4.2.
type PartitionSpec struct {
	Strategy string // RANGE, LIST, or HASH
	Columns  []string
	Parent   string // set when this table is a partition child
	Bound    string // verbatim "FOR VALUES ..." text for a partition child
}

// TableElement is the closed union of what may appear inside a CREATE
// TABLE's parenthesized body: a column, a table-level constraint, or a LIKE
// clause. It is sealed by an unexported marker method — the three concrete
// types below are the only implementations, matching spec §9's guidance to
// model PostgreSQL's fixed grammar as a closed discriminated union.
type TableElement interface {
	tableElement()
}

func (*Column) tableElement()          {}
func (*TableConstraint) tableElement() {}
func (*LikeClause) tableElement()      {}

// LikeClause models "LIKE <table> (INCLUDING|EXCLUDING <opt>)*". It is
// carried in the model but left unexpanded: the spec defines no semantics
// for resolving it against the referenced table (spec §4.2 "accepted").
type LikeClause struct {
	SourceTable string
	Including   []string
	Excluding   []string
}

// Columns returns the table's columns in declaration order.
func (t *TableDef) Columns() []*Column {
	var cols []*Column
	for _, el := range t.Elements {
		if c, ok := el.(*Column); ok {
			cols = append(cols, c)
		}
	}
	return cols
}

// Column looks up a column by name (by default case-insensitively, since
// spec §3 requires column names be unique case-insensitively).
func (t *TableDef) Column(name string) *Column {
	for _, c := range t.Columns() {
		if EqualNames(c.Name, name, false) {
			return c
		}
	}
	return nil
}

// TableConstraints returns the table's table-level constraints in
// declaration order.
func (t *TableDef) TableConstraints() []*TableConstraint {
	var cs []*TableConstraint
	for _, el := range t.Elements {
		if c, ok := el.(*TableConstraint); ok {
			cs = append(cs, c)
		}
	}
	return cs
}
