package ir

// TableConstraint is one table-level constraint clause, per spec §3. As
// with ColumnConstraint, only the fields relevant to Kind are populated.
type TableConstraint struct {
	Name string
	Kind TableConstraintKind

	Columns []string // local columns, order-sensitive

	Expr string // CHECK expression, verbatim

	NullsDistinct   *bool  // UNIQUE ... NULLS [NOT] DISTINCT, nil when unspecified
	WithoutOverlaps string // PRIMARY KEY/UNIQUE ... WITHOUT OVERLAPS (col)

	RefTable        string // FOREIGN KEY
	RefColumns      []string
	Match           MatchType
	OnDelete        ReferentialAction
	OnUpdate        ReferentialAction
	SetColsOnDelete []string // ON DELETE SET NULL/DEFAULT (col, ...)
	SetColsOnUpdate []string
	PeriodColumns   []string // FOREIGN KEY ... PERIOD (col)

	ExcludeMethod   string // EXCLUDE USING <method>
	ExcludeElements []ExcludeElement
	ExcludeWhere    string

	NotNullColumn string // table-level NOT NULL(col) variant

	Deferrable        bool
	InitiallyDeferred bool
	NotEnforced       bool

	// FromColumn records the column this constraint was synthesized from
	// when it is a promoted inline PRIMARY KEY/UNIQUE (spec §4.4.2). Empty
	// for constraints that were genuinely table-level in the source.
	FromColumn string
}

// ExcludeElement is one element of an EXCLUDE (...) constraint.
type ExcludeElement struct {
	Expr       string // column name or parenthesized expression
	Collation  string
	OpClass    string
	Order      string // ASC or DESC
	NullsOrder string // FIRST or LAST
	Operator   string // the exclusion operator, e.g. "="
}

// InlineColumnConstraint builds the synthetic table-level TableConstraint
// used by the differ (spec §4.4.2) to compare an inline column-level
// PRIMARY KEY/UNIQUE against a table-level one on equal footing.
func InlineColumnConstraint(col *Column, cc *ColumnConstraint) *TableConstraint {
	var kind TableConstraintKind
	switch cc.Kind {
	case ColumnConstraintPrimaryKey:
		kind = TableConstraintPrimaryKey
	case ColumnConstraintUnique:
		kind = TableConstraintUnique
	default:
		return nil
	}
	return &TableConstraint{
		Name:              cc.Name,
		Kind:              kind,
		Columns:           []string{col.Name},
		Deferrable:        cc.Deferrable,
		InitiallyDeferred: cc.InitiallyDeferred,
		FromColumn:        col.Name,
	}
}
