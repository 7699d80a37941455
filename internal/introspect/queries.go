package introspect

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/pgdelta/pgdelta/internal/ir"
)

// The teacher's own query text (ir/queries/*.sql, sqlc-generated) wasn't
// present in the retrieval pack, so these are authored directly against
// pg_catalog per spec §6's contract, kept in the shape the teacher's
// Inspector expects to consume: one query per concern, scanned into the
// shared ir types rather than an intermediate DTO.

const tablesQuery = `
SELECT c.relname,
       c.relpersistence,
       COALESCE(ts.spcname, ''),
       c.reloptions,
       pc.relname AS parent_name,
       pg_get_expr(c.relpartbound, c.oid) AS partition_bound,
       CASE pt.partstrat WHEN 'r' THEN 'RANGE' WHEN 'l' THEN 'LIST' WHEN 'h' THEN 'HASH' END,
       (SELECT array_agg(attname ORDER BY ord)
        FROM unnest(pt.partattrs) WITH ORDINALITY AS k(attnum, ord)
        JOIN pg_attribute pa ON pa.attrelid = c.oid AND pa.attnum = k.attnum)
FROM pg_class c
JOIN pg_namespace n ON n.oid = c.relnamespace
LEFT JOIN pg_tablespace ts ON ts.oid = c.reltablespace
LEFT JOIN pg_inherits i ON i.inhrelid = c.oid AND c.relispartition
LEFT JOIN pg_class pc ON pc.oid = i.inhparent
LEFT JOIN pg_partitioned_table pt ON pt.partrelid = c.oid
WHERE n.nspname = $1
  AND c.relkind IN ('r', 'p')
ORDER BY c.relname
`

const columnsQuery = `
SELECT c.relname,
       a.attname,
       format_type(a.atttypid, a.atttypmod),
       a.attnotnull,
       pg_get_expr(ad.adbin, ad.adrelid),
       a.attidentity,
       a.attgenerated,
       a.attstorage,
       CASE WHEN a.attcollation <> t.typcollation THEN co.collname END
FROM pg_attribute a
JOIN pg_class c ON c.oid = a.attrelid
JOIN pg_namespace n ON n.oid = c.relnamespace
JOIN pg_type t ON t.oid = a.atttypid
LEFT JOIN pg_attrdef ad ON ad.adrelid = a.attrelid AND ad.adnum = a.attnum
LEFT JOIN pg_collation co ON co.oid = a.attcollation
WHERE n.nspname = $1
  AND c.relkind IN ('r', 'p')
  AND a.attnum > 0
  AND NOT a.attisdropped
ORDER BY c.relname, a.attnum
`

const constraintsQuery = `
SELECT con.conname,
       con.contype,
       con.conrelid::regclass::text,
       array(SELECT attname FROM pg_attribute
             WHERE attrelid = con.conrelid AND attnum = ANY(con.conkey)
             ORDER BY array_position(con.conkey, attnum)),
       CASE WHEN con.confrelid <> 0 THEN con.confrelid::regclass::text ELSE '' END,
       array(SELECT attname FROM pg_attribute
             WHERE attrelid = con.confrelid AND attnum = ANY(con.confkey)
             ORDER BY array_position(con.confkey, attnum)),
       con.confmatchtype,
       con.confupdtype,
       con.confdeltype,
       con.condeferrable,
       con.condeferred,
       pg_get_expr(con.conbin, con.conrelid)
FROM pg_constraint con
JOIN pg_namespace n ON n.oid = con.connamespace
WHERE n.nspname = $1
ORDER BY con.conrelid, con.conname
`

func (insp *Inspector) queryTables(ctx context.Context, schema string) ([]*ir.TableDef, error) {
	r, err := insp.pool.Query(ctx, tablesQuery, schema)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var tables []*ir.TableDef
	for r.Next() {
		var (
			name, persistence, tablespace string
			reloptions                    []string
			parentName, partitionBound    *string
			partStrategy                  *string
			partColumns                   []string
		)
		if err := r.Scan(&name, &persistence, &tablespace, &reloptions, &parentName, &partitionBound,
			&partStrategy, &partColumns); err != nil {
			return nil, fmt.Errorf("scan table row: %w", err)
		}

		t := &ir.TableDef{
			Name:          name,
			Variant:       ir.TableVariantRegular,
			Persistence:   mapPersistence(persistence),
			Tablespace:    tablespace,
			StorageParams: parseReloptions(reloptions),
		}
		switch {
		case parentName != nil && *parentName != "":
			t.Variant = ir.TableVariantPartitionOf
			t.Partition = &ir.PartitionSpec{Parent: *parentName, Bound: derefOr(partitionBound, "")}
		case partStrategy != nil:
			t.Partition = &ir.PartitionSpec{Strategy: *partStrategy, Columns: partColumns}
		}
		tables = append(tables, t)
	}
	return tables, r.Err()
}

// queryColumnsAndConstraints runs the column and constraint queries
// concurrently: both read disjoint pg_catalog views keyed by the same
// table set, mirroring the teacher's Inspector.BuildIR concurrent query
// groups (golang.org/x/sync/errgroup).
func (insp *Inspector) queryColumnsAndConstraints(ctx context.Context, schema string) (
	map[string][]*ir.Column, map[string][]*ir.TableConstraint, error,
) {
	var (
		columns     map[string][]*ir.Column
		constraints map[string][]*ir.TableConstraint
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cols, err := insp.queryColumns(gctx, schema)
		if err != nil {
			return fmt.Errorf("introspect: query columns: %w", err)
		}
		columns = cols
		return nil
	})
	g.Go(func() error {
		cons, err := insp.queryConstraints(gctx, schema)
		if err != nil {
			return fmt.Errorf("introspect: query constraints: %w", err)
		}
		constraints = cons
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return columns, constraints, nil
}

func (insp *Inspector) queryColumns(ctx context.Context, schema string) (map[string][]*ir.Column, error) {
	r, err := insp.pool.Query(ctx, columnsQuery, schema)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	byTable := make(map[string][]*ir.Column)
	for r.Next() {
		var (
			table, name, dataType       string
			notNull                     bool
			defaultExpr                 *string
			identity, generated         string
			storage                     string
			collation                   *string
		)
		if err := r.Scan(&table, &name, &dataType, &notNull, &defaultExpr,
			&identity, &generated, &storage, &collation); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}

		col := &ir.Column{
			Name:      name,
			DataType:  dataType,
			Collation: derefOr(collation, ""),
			Storage:   mapStorage(storage),
		}

		if notNull {
			col.Constraints = append(col.Constraints, &ir.ColumnConstraint{Kind: ir.ColumnConstraintNotNull})
		}
		if generated == "s" && defaultExpr != nil {
			col.Constraints = append(col.Constraints, &ir.ColumnConstraint{
				Kind: ir.ColumnConstraintGeneratedAlways, Expr: *defaultExpr, GeneratedStored: true,
			})
		} else if defaultExpr != nil {
			col.Constraints = append(col.Constraints, &ir.ColumnConstraint{
				Kind: ir.ColumnConstraintDefault, Expr: *defaultExpr,
			})
		}
		if identity == "a" || identity == "d" {
			gen := ir.IdentityByDefault
			if identity == "a" {
				gen = ir.IdentityAlways
			}
			col.Constraints = append(col.Constraints, &ir.ColumnConstraint{
				Kind: ir.ColumnConstraintGeneratedIdentity, IdentityGeneration: gen,
			})
		}

		byTable[table] = append(byTable[table], col)
	}
	return byTable, r.Err()
}

func (insp *Inspector) queryConstraints(ctx context.Context, schema string) (map[string][]*ir.TableConstraint, error) {
	r, err := insp.pool.Query(ctx, constraintsQuery, schema)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	byTable := make(map[string][]*ir.TableConstraint)
	for r.Next() {
		var (
			name, contype, table        string
			columns                     []string
			refTable                    string
			refColumns                  []string
			matchType, updType, delType string
			deferrable, deferred        bool
			checkExpr                   *string
		)
		if err := r.Scan(&name, &contype, &table, &columns, &refTable, &refColumns,
			&matchType, &updType, &delType, &deferrable, &deferred, &checkExpr); err != nil {
			return nil, fmt.Errorf("scan constraint row: %w", err)
		}

		kind, ok := mapConstraintKind(contype)
		if !ok {
			continue // index-only / trigger constraints etc., not part of the model
		}

		tc := &ir.TableConstraint{
			Name: name, Kind: kind, Columns: columns,
			Deferrable: deferrable, InitiallyDeferred: deferred,
		}
		if kind == ir.TableConstraintCheck && checkExpr != nil {
			tc.Expr = *checkExpr
		}
		if kind == ir.TableConstraintForeignKey {
			tc.RefTable = refTable
			tc.RefColumns = refColumns
			tc.Match = mapMatchType(matchType)
			tc.OnDelete = mapReferentialAction(delType)
			tc.OnUpdate = mapReferentialAction(updType)
		}
		if kind == ir.TableConstraintNotNull && len(columns) > 0 {
			tc.NotNullColumn = columns[0]
		}

		byTable[table] = append(byTable[table], tc)
	}
	return byTable, r.Err()
}

func mapPersistence(c string) ir.Persistence {
	switch c {
	case "t":
		return ir.PersistenceTemporary
	case "u":
		return ir.PersistenceUnlogged
	}
	return ir.PersistenceNormal
}

func mapStorage(c string) ir.StorageKind {
	switch c {
	case "p":
		return ir.StoragePlain
	case "e":
		return ir.StorageExternal
	case "x":
		return ir.StorageExtended
	case "m":
		return ir.StorageMain
	}
	return ir.StorageUnset
}

func mapConstraintKind(contype string) (ir.TableConstraintKind, bool) {
	switch contype {
	case "c":
		return ir.TableConstraintCheck, true
	case "u":
		return ir.TableConstraintUnique, true
	case "p":
		return ir.TableConstraintPrimaryKey, true
	case "f":
		return ir.TableConstraintForeignKey, true
	case "x":
		return ir.TableConstraintExclude, true
	case "n":
		return ir.TableConstraintNotNull, true
	}
	return "", false
}

func mapMatchType(c string) ir.MatchType {
	switch c {
	case "f":
		return ir.MatchFull
	case "p":
		return ir.MatchPartial
	case "s":
		return ir.MatchSimple
	}
	return ir.MatchUnspecified
}

func mapReferentialAction(c string) ir.ReferentialAction {
	switch c {
	case "a":
		return ir.ActionNoAction
	case "r":
		return ir.ActionRestrict
	case "c":
		return ir.ActionCascade
	case "n":
		return ir.ActionSetNull
	case "d":
		return ir.ActionSetDefault
	}
	return ir.ActionUnspecified
}

// parseReloptions turns "key=value" WITH-storage-parameter entries (the
// form pg_class.reloptions returns) into ordered StorageParams.
func parseReloptions(opts []string) []ir.StorageParam {
	var params []ir.StorageParam
	for _, o := range opts {
		for i := 0; i < len(o); i++ {
			if o[i] == '=' {
				params = append(params, ir.StorageParam{Name: o[:i], Value: o[i+1:]})
				break
			}
		}
	}
	return params
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
