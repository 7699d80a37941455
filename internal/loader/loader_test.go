package loader

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadDirectory_MergesMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.sql", `CREATE TABLE departments (id integer PRIMARY KEY);`)
	writeFile(t, dir, "b.sql", `CREATE TABLE employees (id integer PRIMARY KEY, dept_id integer);`)
	writeFile(t, dir, "ignore.txt", `not sql`)

	schema, diags, err := LoadDirectory(dir, "public")
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	if len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %v", diags)
	}
	if len(schema.Tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(schema.Tables))
	}
	if schema.Table("departments") == nil || schema.Table("employees") == nil {
		t.Errorf("expected both tables present, got %+v", schema.Tables)
	}
}

func TestLoadDirectory_DuplicateTableIsError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.sql", `CREATE TABLE users (id integer);`)
	writeFile(t, dir, "b.sql", `CREATE TABLE users (id integer);`)

	_, _, err := LoadDirectory(dir, "public")
	if err == nil {
		t.Fatalf("expected error for duplicate table across files")
	}
}

func TestLoadDirectory_CollectsPerFileDiagnostics(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.sql", `CREATE TABLE valid (id integer);`)
	writeFile(t, dir, "b.sql", `CREATE TABLE ( garbage `)

	schema, diags, err := LoadDirectory(dir, "public")
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	if len(schema.Tables) != 1 {
		t.Fatalf("expected the valid table to still load, got %d tables", len(schema.Tables))
	}
	if len(diags) == 0 {
		t.Fatalf("expected at least one diagnostic for the malformed file")
	}
	if diags[0].File == "" {
		t.Errorf("expected diagnostic to carry its source file")
	}
}

func TestLoadDirectory_NoSQLFilesIsError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "readme.txt", "hi")

	_, _, err := LoadDirectory(dir, "public")
	if err == nil {
		t.Fatalf("expected error when no .sql files are present")
	}
}
