// Package sqlgen turns a SchemaDiff into forward migration SQL, per spec
// §4.6. It is pure: it writes only to an in-memory builder, never to I/O,
// and its output depends only on its inputs and Options (spec §5).
package sqlgen

// Options controls the SQL Generator's emission, per spec §4.6.
type Options struct {
	UseTransactions bool
	UseIfExists     bool
	AddComments     bool
	AddWarnings     bool
	SafeMode        bool
	SchemaName      string
}

// SQLMigration is the SQL Generator's output, per spec §4.6.
type SQLMigration struct {
	ForwardSQL            string
	StatementCount        int
	HasDestructiveChanges bool
}
