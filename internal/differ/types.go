// Package differ computes a semantic diff between two schema models, per
// spec §3 "Diff data model" and §4.4. It is pure: no I/O, no global state,
// and deterministic given its inputs and Options (spec §5).
package differ

import "github.com/pgdelta/pgdelta/internal/ir"

// Severity classifies how disruptive a single Diff entry is, per the fixed
// mapping in spec §3.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
	SeverityInfo     Severity = "INFO"
)

// Kind is the closed set of diff kinds from spec §3.
type Kind string

const (
	KindTableAdded             Kind = "TABLE_ADDED"
	KindTableRemoved           Kind = "TABLE_REMOVED"
	KindTableModified          Kind = "TABLE_MODIFIED"
	KindTableTypeChanged       Kind = "TABLE_TYPE_CHANGED"
	KindTablespaceChanged      Kind = "TABLESPACE_CHANGED"
	KindColumnAdded            Kind = "COLUMN_ADDED"
	KindColumnRemoved          Kind = "COLUMN_REMOVED"
	KindColumnTypeChanged      Kind = "COLUMN_TYPE_CHANGED"
	KindColumnNullableChanged  Kind = "COLUMN_NULLABLE_CHANGED"
	KindColumnDefaultChanged   Kind = "COLUMN_DEFAULT_CHANGED"
	KindColumnCollationChanged Kind = "COLUMN_COLLATION_CHANGED"
	KindColumnStorageChanged   Kind = "COLUMN_STORAGE_CHANGED"
	KindColumnCompressionChged Kind = "COLUMN_COMPRESSION_CHANGED"
	KindConstraintAdded        Kind = "CONSTRAINT_ADDED"
	KindConstraintRemoved      Kind = "CONSTRAINT_REMOVED"
	KindConstraintModified     Kind = "CONSTRAINT_MODIFIED"
	KindPartitionChanged       Kind = "PARTITION_CHANGED"
	KindInheritsChanged        Kind = "INHERITS_CHANGED"
	KindStorageParamsChanged  Kind = "STORAGE_PARAMS_CHANGED"
)

// Options controls matching and comparison behavior, per spec §4.4.
type Options struct {
	CaseSensitive         bool
	NormalizeTypes        bool
	IgnoreConstraintNames bool
	IgnoreWhitespace      bool
	CompareTablespaces    bool
	CompareStorageParams  bool
	CompareConstraints    bool
	ComparePartitioning   bool
	CompareInheritance    bool
	IncludePatterns       []string
	ExcludePatterns       []string
}

// Diff is one atomic difference, the leaf unit every comparison produces.
type Diff struct {
	Kind     Kind
	Severity Severity
	Table    string
	Element  string // column or constraint name, when applicable
	Old      string
	New      string
}

// ColumnDiff describes one column's change between source and target.
type ColumnDiff struct {
	Name string

	Added   bool
	Removed bool

	OldType, NewType           string
	TypeChanged                bool
	OldNullable, NewNullable   bool
	NullableChanged            bool
	OldDefault, NewDefault     string
	DefaultChanged             bool
	OldCollation, NewCollation string
	CollationChanged           bool
	OldStorage, NewStorage     ir.StorageKind
	StorageChanged             bool
	OldCompression, NewCompression string
	CompressionChanged             bool

	// Column is the target column definition, carried so the SQL generator
	// can render an ADD COLUMN or type change without re-walking the diff.
	Column *ir.Column
}

// ConstraintDiff describes one constraint's change between source and
// target, per spec §4.4.2.
type ConstraintDiff struct {
	Name string // may be "" for unnamed constraints

	Added    bool
	Removed  bool
	Modified bool

	OldKind, NewKind ir.TableConstraintKind

	// FromColumn is non-empty when this constraint originated as an inline
	// column-level PRIMARY KEY/UNIQUE (spec §4.4.2 "originated as a
	// column-level inline constraint").
	FromColumn string

	// Constraint is the target-side definition used to regenerate SQL for
	// an added or modified constraint.
	Constraint *ir.TableConstraint
}

// TableDiff is one matched (or added/removed) table's full comparison, per
// spec §3.
type TableDiff struct {
	Table string

	Added    bool
	Removed  bool
	Modified bool

	TypeChanged       bool
	TablespaceChanged bool

	AddedColumns    []*ColumnDiff
	RemovedColumns  []*ColumnDiff
	ModifiedColumns []*ColumnDiff

	AddedConstraints    []*ConstraintDiff
	RemovedConstraints  []*ConstraintDiff
	ModifiedConstraints []*ConstraintDiff

	Diffs []Diff

	// TargetTable is the full target-side table definition, needed by the
	// SQL Generator to render CREATE TABLE for an added table (spec §3).
	TargetTable *ir.TableDef
}

// SchemaDiff is the Differ's top-level output, per spec §3.
type SchemaDiff struct {
	TablesAdded    int
	TablesRemoved  int
	TablesModified int
	Critical       int
	Warning        int
	Info           int
	Total          int

	AddedTableNames   []string
	RemovedTableNames []string

	TableDiffs []*TableDiff
}

// IsEmpty reports whether the schema diff contains no differences at all,
// the condition the Report Generator's footer checks (spec §4.7).
func (d *SchemaDiff) IsEmpty() bool {
	return d.Total == 0
}

func (d *SchemaDiff) record(diff Diff) {
	d.Total++
	switch diff.Severity {
	case SeverityCritical:
		d.Critical++
	case SeverityWarning:
		d.Warning++
	default:
		d.Info++
	}
}
