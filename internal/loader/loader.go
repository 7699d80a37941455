// Package loader is the directory-globbing, multi-file DDL collaborator
// spec §1 names but leaves external: it reads every *.sql file under a
// directory, parses each concurrently, and merges the results into one
// logical ir.Schema plus a combined, file-tagged diagnostic list. It sits
// outside the core pipeline packages (lexer, parser, ir, differ, sqlgen,
// report): those stay pure functions over in-memory values, while this
// package is the one that touches the filesystem.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/pgdelta/pgdelta/internal/ir"
	"github.com/pgdelta/pgdelta/internal/parser"
)

// Diagnostic is a parser.Diagnostic tagged with the file it came from.
type Diagnostic struct {
	File string
	parser.Diagnostic
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%s", d.File, d.Diagnostic.String())
}

// fileResult is one file's parse outcome, kept in input order until merged.
type fileResult struct {
	path  string
	table []*ir.TableDef
	diags []parser.Diagnostic
	err   error
}

// LoadDirectory globs dir for *.sql files (sorted by name for determinism),
// parses each concurrently, and merges them into a single Schema named
// schemaName. A table name repeated across files is an error: the loader
// has no basis for picking a winner, unlike the differ which is designed
// to compare two complete schemas, not reconcile overlapping fragments.
func LoadDirectory(dir, schemaName string) (*ir.Schema, []Diagnostic, error) {
	paths, err := globSQLFiles(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("loader: glob %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("loader: no .sql files found under %s", dir)
	}
	return loadFiles(paths, schemaName)
}

// LoadFiles parses an explicit, caller-supplied list of files, useful when
// the CLI's globbing is driven by multiple positional arguments rather
// than a single directory.
func LoadFiles(paths []string, schemaName string) (*ir.Schema, []Diagnostic, error) {
	return loadFiles(paths, schemaName)
}

func loadFiles(paths []string, schemaName string) (*ir.Schema, []Diagnostic, error) {
	results := make([]fileResult, len(paths))

	var g errgroup.Group
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			src, err := os.ReadFile(path)
			if err != nil {
				results[i] = fileResult{path: path, err: err}
				return nil
			}
			schema, diags := parser.ParseSchema(string(src))
			results[i] = fileResult{path: path, table: schema.Tables, diags: diags}
			return nil
		})
	}
	_ = g.Wait() // per-file errors are carried in fileResult.err, not returned here

	schema := &ir.Schema{Name: schemaName}
	var diagnostics []Diagnostic
	seen := make(map[string]string) // table name -> defining file

	for _, r := range results {
		if r.err != nil {
			return nil, nil, fmt.Errorf("loader: read %s: %w", r.path, r.err)
		}
		for _, d := range r.diags {
			diagnostics = append(diagnostics, Diagnostic{File: r.path, Diagnostic: d})
		}
		for _, t := range r.table {
			if existing, dup := seen[t.Name]; dup {
				return nil, nil, fmt.Errorf("loader: table %q defined in both %s and %s", t.Name, existing, r.path)
			}
			seen[t.Name] = r.path
			schema.Tables = append(schema.Tables, t)
		}
	}

	return schema, diagnostics, nil
}

func globSQLFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".sql" {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
