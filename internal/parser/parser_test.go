package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pgdelta/pgdelta/internal/ir"
)

func TestParseSchema_BasicTable(t *testing.T) {
	src := `CREATE TABLE users (
		id bigint GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		email varchar(255) NOT NULL UNIQUE,
		created_at timestamp with time zone DEFAULT now()
	);`

	schema, diags := ParseSchema(src)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(schema.Tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(schema.Tables))
	}

	tbl := schema.Tables[0]
	if tbl.Name != "users" {
		t.Errorf("table name = %q, want users", tbl.Name)
	}
	cols := tbl.Columns()
	if len(cols) != 3 {
		t.Fatalf("got %d columns, want 3", len(cols))
	}
	if cols[0].Identity() == nil {
		t.Error("id column: expected identity constraint")
	}
	if !cols[0].InlinePrimaryKey() {
		t.Error("id column: expected inline primary key")
	}
	if !cols[1].HasNotNull() {
		t.Error("email column: expected NOT NULL")
	}
	if !cols[1].InlineUnique() {
		t.Error("email column: expected inline UNIQUE")
	}
	if got := cols[2].DataType; got != "timestamp with time zone" {
		t.Errorf("created_at type = %q", got)
	}
	if d := cols[2].Default(); d == nil || d.Expr != "now()" {
		t.Errorf("created_at default = %+v", d)
	}
}

func TestParseSchema_TableConstraintsAndForeignKey(t *testing.T) {
	src := `CREATE TABLE orders (
		id integer,
		customer_id integer,
		amount numeric(10,2),
		CONSTRAINT pk_orders PRIMARY KEY (id),
		CONSTRAINT fk_customer FOREIGN KEY (customer_id) REFERENCES customers (id) ON DELETE CASCADE,
		CHECK (amount >= 0)
	);`

	schema, diags := ParseSchema(src)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	tbl := schema.Tables[0]
	tcs := tbl.TableConstraints()
	if len(tcs) != 3 {
		t.Fatalf("got %d table constraints, want 3: %+v", len(tcs), tcs)
	}

	pk := tcs[0]
	if pk.Kind != ir.TableConstraintPrimaryKey || pk.Name != "pk_orders" {
		t.Errorf("pk = %+v", pk)
	}
	if diff := cmp.Diff([]string{"id"}, pk.Columns); diff != "" {
		t.Errorf("pk columns mismatch (-want +got):\n%s", diff)
	}

	fk := tcs[1]
	if fk.Kind != ir.TableConstraintForeignKey || fk.RefTable != "customers" {
		t.Errorf("fk = %+v", fk)
	}
	if fk.OnDelete != ir.ActionCascade {
		t.Errorf("fk.OnDelete = %v, want CASCADE", fk.OnDelete)
	}

	chk := tcs[2]
	if chk.Kind != ir.TableConstraintCheck || chk.Expr != "amount >= 0" {
		t.Errorf("check = %+v", chk)
	}
}

func TestParseSchema_EmptyBody(t *testing.T) {
	schema, diags := ParseSchema(`CREATE TABLE empty_tbl ();`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(schema.Tables) != 1 || len(schema.Tables[0].Columns()) != 0 {
		t.Fatalf("got %+v", schema.Tables)
	}
}

func TestParseSchema_UnlogifiedAndIfNotExists(t *testing.T) {
	schema, diags := ParseSchema(`CREATE UNLOGGED TABLE IF NOT EXISTS cache (k text);`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if schema.Tables[0].Persistence != ir.PersistenceUnlogged {
		t.Errorf("persistence = %v", schema.Tables[0].Persistence)
	}
}

func TestParseSchema_MalformedStatementRecoversAtNextCreate(t *testing.T) {
	src := `CREATE TABLE broken (;
CREATE TABLE ok (id integer);`
	schema, diags := ParseSchema(src)
	if len(diags) == 0 {
		t.Fatal("expected a diagnostic for the malformed statement")
	}
	if len(schema.Tables) != 1 || schema.Tables[0].Name != "ok" {
		t.Fatalf("got %+v", schema.Tables)
	}
}

func TestParseSchema_InheritsAndTablespace(t *testing.T) {
	src := `CREATE TABLE child (x integer) INHERITS (parent_a, parent_b) TABLESPACE fast_disk;`
	schema, diags := ParseSchema(src)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	tbl := schema.Tables[0]
	if diff := cmp.Diff([]string{"parent_a", "parent_b"}, tbl.Inherits); diff != "" {
		t.Errorf("inherits mismatch (-want +got):\n%s", diff)
	}
	if tbl.Tablespace != "fast_disk" {
		t.Errorf("tablespace = %q", tbl.Tablespace)
	}
}

func TestParseSchema_PartitionByAndOf(t *testing.T) {
	src := `CREATE TABLE events (id integer, ts date) PARTITION BY RANGE (ts);
CREATE TABLE events_2024 PARTITION OF events FOR VALUES FROM ('2024-01-01') TO ('2025-01-01');`

	schema, diags := ParseSchema(src)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(schema.Tables) != 2 {
		t.Fatalf("got %d tables", len(schema.Tables))
	}
	root := schema.Tables[0]
	if root.Partition == nil || root.Partition.Strategy != "RANGE" {
		t.Fatalf("root partition spec = %+v", root.Partition)
	}
	child := schema.Tables[1]
	if child.Variant != ir.TableVariantPartitionOf || child.Partition == nil || child.Partition.Parent != "events" {
		t.Fatalf("child = %+v", child)
	}
}

func TestParseSchema_StorageParamsAndCollation(t *testing.T) {
	src := `CREATE TABLE t (
		name text COLLATE "en_US",
		data jsonb
	) WITH (fillfactor = 70, autovacuum_enabled = true);`

	schema, diags := ParseSchema(src)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	tbl := schema.Tables[0]
	if len(tbl.StorageParams) != 2 || tbl.StorageParams[0].Name != "fillfactor" || tbl.StorageParams[0].Value != "70" {
		t.Errorf("storage params = %+v", tbl.StorageParams)
	}
	if tbl.Column("name").Collation != "en_US" {
		t.Errorf("collation = %q", tbl.Column("name").Collation)
	}
}

func TestParseSchema_LikeClause(t *testing.T) {
	src := `CREATE TABLE copy_of_t (LIKE original_t INCLUDING DEFAULTS INCLUDING CONSTRAINTS);`
	schema, diags := ParseSchema(src)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	tbl := schema.Tables[0]
	if len(tbl.Elements) != 1 {
		t.Fatalf("got %d elements", len(tbl.Elements))
	}
	lc, ok := tbl.Elements[0].(*ir.LikeClause)
	if !ok {
		t.Fatalf("element is %T, want *ir.LikeClause", tbl.Elements[0])
	}
	if lc.SourceTable != "original_t" {
		t.Errorf("source table = %q", lc.SourceTable)
	}
	if diff := cmp.Diff([]string{"defaults", "constraints"}, lc.Including); diff != "" {
		t.Errorf("including mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSchema_ExcludeConstraint(t *testing.T) {
	src := `CREATE TABLE reservations (
		during tsrange,
		EXCLUDE USING gist (during WITH &&)
	);`
	schema, diags := ParseSchema(src)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	tc := schema.Tables[0].TableConstraints()[0]
	if tc.Kind != ir.TableConstraintExclude || tc.ExcludeMethod != "gist" {
		t.Fatalf("exclude constraint = %+v", tc)
	}
	if len(tc.ExcludeElements) != 1 || tc.ExcludeElements[0].Operator != "&&" {
		t.Fatalf("exclude elements = %+v", tc.ExcludeElements)
	}
}
