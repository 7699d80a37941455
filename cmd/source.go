package cmd

import (
	"context"
	"fmt"

	"github.com/pgdelta/pgdelta/internal/introspect"
	"github.com/pgdelta/pgdelta/internal/ir"
	"github.com/pgdelta/pgdelta/internal/loader"
	"github.com/pgdelta/pgdelta/internal/logger"
)

// sourceFlags is one side's input selection: exactly one of Dir or DSN.
type sourceFlags struct {
	Dir    string
	DSN    string
	Schema string
}

func (f sourceFlags) validate(label string) error {
	if f.Dir == "" && f.DSN == "" {
		return fmt.Errorf("--%s-dir or --%s-dsn is required", label, label)
	}
	if f.Dir != "" && f.DSN != "" {
		return fmt.Errorf("--%s-dir and --%s-dsn are mutually exclusive", label, label)
	}
	return nil
}

// resolve loads f's schema from a directory of DDL files or a live
// database connection, whichever was supplied, and logs any parse
// diagnostics the caller did not otherwise surface.
func resolve(ctx context.Context, label string, f sourceFlags) (*ir.Schema, error) {
	if f.Dir != "" {
		schema, diags, err := loader.LoadDirectory(f.Dir, f.Schema)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", label, err)
		}
		for _, d := range diags {
			logger.Get().Warn("parse diagnostic", "source", label, "file", d.File, "message", d.Diagnostic.String())
		}
		return schema, nil
	}

	pool, err := introspect.Connect(ctx, f.DSN)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	defer pool.Close()

	insp := introspect.NewInspector(pool)
	schema, err := insp.BuildSchema(ctx, f.Schema)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	return schema, nil
}
