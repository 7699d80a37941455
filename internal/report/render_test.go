package report

import (
	"strings"
	"testing"

	"github.com/pgdelta/pgdelta/internal/differ"
	"github.com/pgdelta/pgdelta/internal/ir"
)

func col(name, dataType string) *ir.Column {
	return &ir.Column{Name: name, DataType: dataType}
}

func table(name string, elements ...ir.TableElement) *ir.TableDef {
	return &ir.TableDef{Name: name, Elements: elements}
}

func schemaOf(tables ...*ir.TableDef) *ir.Schema {
	return &ir.Schema{Name: "public", Tables: tables}
}

func TestRender_EmptyDiffShowsFooter(t *testing.T) {
	tgt := schemaOf(table("users", col("id", "integer")))
	sd := differ.Diff(tgt, tgt, differ.Options{CompareConstraints: true})

	out := Render(sd, Options{Verbosity: VerbosityNormal, ShowIcons: true})
	if !strings.Contains(out, "No differences found") {
		t.Fatalf("expected empty-diff footer, got:\n%s", out)
	}
}

func TestRender_SummaryOmitsDetails(t *testing.T) {
	src := schemaOf()
	tgt := schemaOf(table("users", col("id", "integer")))
	sd := differ.Diff(src, tgt, differ.Options{CompareConstraints: true})

	out := Render(sd, Options{Verbosity: VerbositySummary})
	if strings.Contains(out, "Details") {
		t.Errorf("expected Summary verbosity to omit details section, got:\n%s", out)
	}
}

func TestRender_NormalIncludesDetailLines(t *testing.T) {
	src := schemaOf(table("users", col("id", "integer")))
	tgt := schemaOf(table("users", col("id", "integer"), col("email", "text")))
	sd := differ.Diff(src, tgt, differ.Options{CompareConstraints: true})

	out := Render(sd, Options{Verbosity: VerbosityNormal, ShowIcons: true})
	if !strings.Contains(out, "column added") {
		t.Fatalf("expected a column added detail line, got:\n%s", out)
	}
	if !strings.Contains(out, "email") {
		t.Errorf("expected element name email in details, got:\n%s", out)
	}
}

func TestRender_MarkdownUsesHeaderPrefixes(t *testing.T) {
	tgt := schemaOf(table("users", col("id", "integer")))
	sd := differ.Diff(schemaOf(), tgt, differ.Options{CompareConstraints: true})

	out := Render(sd, Options{Verbosity: VerbosityNormal, Format: FormatMarkdown})
	if !strings.Contains(out, "## Schema Diff Summary") {
		t.Errorf("expected markdown header prefix, got:\n%s", out)
	}
}

func TestRender_TypeChangeShowsOldAndNewArrow(t *testing.T) {
	src := schemaOf(table("users", col("age", "smallint")))
	tgt := schemaOf(table("users", col("age", "integer")))
	sd := differ.Diff(src, tgt, differ.Options{CompareConstraints: true})

	out := Render(sd, Options{Verbosity: VerbosityNormal})
	if !strings.Contains(out, "smallint → integer") {
		t.Fatalf("expected old → new rendering, got:\n%s", out)
	}
}
