// Package introspect is the live-database adapter that satisfies spec §6's
// introspection contract: given a connected database and a schema name, it
// produces the same ir.Schema shape the parser produces, so the differ
// never needs to know which side came from DDL text and which came from a
// running database.
//
// It follows the teacher's staged-build shape (internal/postgres +
// ir.Inspector): a sequential prerequisite query for the table list,
// followed by column and constraint queries run concurrently via
// golang.org/x/sync/errgroup, since both read disjoint pg_catalog views for
// the same table set and neither depends on the other's result.
package introspect

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgdelta/pgdelta/internal/ir"
	"github.com/pgdelta/pgdelta/internal/logger"
)

// Inspector builds an ir.Schema from a live PostgreSQL connection.
type Inspector struct {
	pool *pgxpool.Pool
}

// NewInspector wraps an already-connected pool. Callers own the pool's
// lifecycle (Connect/Close); the Inspector never closes it.
func NewInspector(pool *pgxpool.Pool) *Inspector {
	return &Inspector{pool: pool}
}

// Connect opens a pool against dsn and validates the server responds to a
// trivial query, mirroring the teacher's NewExternalDatabase's fail-fast
// connectivity check.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("introspect: open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("introspect: ping: %w", err)
	}
	return pool, nil
}

// BuildSchema introspects targetSchema and returns its tables, columns, and
// constraints per spec §6. Views, sequences, functions, triggers, and
// indexes are intentionally not queried: the core differ never compares
// them (spec §1 Non-goals).
func (insp *Inspector) BuildSchema(ctx context.Context, targetSchema string) (*ir.Schema, error) {
	// sessionID correlates this run's log lines when several introspections
	// (e.g. source and target) are in flight concurrently, the way the
	// teacher's temp-schema-per-run naming keeps overlapping connections
	// from stepping on each other's traces.
	sessionID := uuid.New().String()
	log := logger.Get().With("session", sessionID, "schema", targetSchema)

	schema := &ir.Schema{Name: targetSchema}

	tables, err := insp.queryTables(ctx, targetSchema)
	if err != nil {
		return nil, fmt.Errorf("introspect: list tables: %w", err)
	}
	schema.Tables = tables
	log.Debug("introspect: tables listed", "count", len(tables))
	if len(tables) == 0 {
		return schema, nil
	}

	byName := make(map[string]*ir.TableDef, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
	}

	columnsByTable, constraintsByTable, err := insp.queryColumnsAndConstraints(ctx, targetSchema)
	if err != nil {
		return nil, err
	}

	for name, t := range byName {
		t.Elements = append(t.Elements, toTableElements(columnsByTable[name], constraintsByTable[name])...)
	}

	log.Debug("introspect: schema built")
	return schema, nil
}

// toTableElements places columns first, then table-level constraints,
// matching the declaration order the parser would see for a CREATE TABLE
// written with all columns before its table-level constraints. The differ
// reads through typed accessors (Columns(), TableConstraints()); the SQL
// generator's CREATE TABLE walks Elements in order, so this is also the
// order of its output.
func toTableElements(cols []*ir.Column, cons []*ir.TableConstraint) []ir.TableElement {
	elements := make([]ir.TableElement, 0, len(cols)+len(cons))
	for _, c := range cols {
		elements = append(elements, c)
	}
	for _, c := range cons {
		elements = append(elements, c)
	}
	return elements
}
