package introspect

import (
	"testing"

	"github.com/pgdelta/pgdelta/internal/ir"
)

func TestMapPersistence(t *testing.T) {
	cases := map[string]ir.Persistence{
		"p": ir.PersistenceNormal,
		"t": ir.PersistenceTemporary,
		"u": ir.PersistenceUnlogged,
	}
	for in, want := range cases {
		if got := mapPersistence(in); got != want {
			t.Errorf("mapPersistence(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestMapStorage(t *testing.T) {
	cases := map[string]ir.StorageKind{
		"p": ir.StoragePlain,
		"e": ir.StorageExternal,
		"x": ir.StorageExtended,
		"m": ir.StorageMain,
		"?": ir.StorageUnset,
	}
	for in, want := range cases {
		if got := mapStorage(in); got != want {
			t.Errorf("mapStorage(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestMapConstraintKind(t *testing.T) {
	cases := map[string]ir.TableConstraintKind{
		"c": ir.TableConstraintCheck,
		"u": ir.TableConstraintUnique,
		"p": ir.TableConstraintPrimaryKey,
		"f": ir.TableConstraintForeignKey,
		"x": ir.TableConstraintExclude,
		"n": ir.TableConstraintNotNull,
	}
	for in, want := range cases {
		got, ok := mapConstraintKind(in)
		if !ok || got != want {
			t.Errorf("mapConstraintKind(%q) = %v, %v want %v, true", in, got, ok, want)
		}
	}
	if _, ok := mapConstraintKind("t"); ok {
		t.Errorf("expected trigger constraint type to be unmapped")
	}
}

func TestMapMatchType(t *testing.T) {
	if mapMatchType("f") != ir.MatchFull || mapMatchType("s") != ir.MatchSimple || mapMatchType("p") != ir.MatchPartial {
		t.Errorf("mapMatchType produced unexpected values")
	}
}

func TestMapReferentialAction(t *testing.T) {
	cases := map[string]ir.ReferentialAction{
		"a": ir.ActionNoAction,
		"r": ir.ActionRestrict,
		"c": ir.ActionCascade,
		"n": ir.ActionSetNull,
		"d": ir.ActionSetDefault,
	}
	for in, want := range cases {
		if got := mapReferentialAction(in); got != want {
			t.Errorf("mapReferentialAction(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseReloptions(t *testing.T) {
	got := parseReloptions([]string{"fillfactor=70", "autovacuum_enabled=false"})
	want := []ir.StorageParam{{Name: "fillfactor", Value: "70"}, {Name: "autovacuum_enabled", Value: "false"}}
	if len(got) != len(want) {
		t.Fatalf("got %d params, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("param %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDerefOr(t *testing.T) {
	s := "x"
	if derefOr(&s, "fallback") != "x" {
		t.Errorf("expected pointer value returned")
	}
	if derefOr(nil, "fallback") != "fallback" {
		t.Errorf("expected fallback for nil pointer")
	}
}

func TestToTableElements(t *testing.T) {
	cols := []*ir.Column{{Name: "id"}}
	cons := []*ir.TableConstraint{{Name: "users_pkey", Kind: ir.TableConstraintPrimaryKey}}

	elements := toTableElements(cols, cons)
	if len(elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(elements))
	}
	if _, ok := elements[0].(*ir.Column); !ok {
		t.Errorf("expected column first")
	}
	if _, ok := elements[1].(*ir.TableConstraint); !ok {
		t.Errorf("expected constraint second")
	}
}
