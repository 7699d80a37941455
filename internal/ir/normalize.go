package ir

import "strings"

// typeAliases is the fixed alias table from spec §4.3: internal PostgreSQL
// type names on the left, canonical SQL-standard spellings on the right.
// Lookups happen in both directions, so both list the same canonical form.
var typeAliases = map[string]string{
	"int2":               "smallint",
	"int4":               "integer",
	"int8":               "bigint",
	"float4":             "real",
	"float8":             "double precision",
	"bool":               "boolean",
	"varchar":            "character varying",
	"char":               "character",
	"smallint":           "smallint",
	"integer":            "integer",
	"bigint":             "bigint",
	"real":               "real",
	"double precision":   "double precision",
	"boolean":            "boolean",
	"character varying":  "character varying",
	"character":          "character",
}

// CanonicalTypeName implements spec §4.3's "normalize types" rules:
// lowercase, strip an all-alpha schema qualifier, drop "without time zone",
// rewrite "with time zone" timestamps/times to their tz-suffixed spelling,
// and apply the fixed alias table. precisionSuffix (e.g. "(3)" or "[]") is
// preserved verbatim wherever it appeared in the input.
func CanonicalTypeName(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	t = stripSchemaQualifier(t)

	// timestamp[(p)] with time zone -> timestamptz[(p)]; same for time.
	if rewritten, ok := rewriteTimeWithZone(t, "timestamp"); ok {
		t = rewritten
	} else if rewritten, ok := rewriteTimeWithZone(t, "time"); ok {
		t = rewritten
	} else {
		t = strings.TrimSuffix(t, " without time zone")
		// A base type with a bare "without time zone" but no "with time
		// zone" counterpart check above still needs the suffix dropped
		// for types embedding precision, e.g. "timestamp(3) without time zone".
		t = dropWithoutTimeZoneKeepingPrecision(t)
	}

	if canonical, ok := splitAliasLookup(t); ok {
		return canonical
	}
	return t
}

// stripSchemaQualifier removes an all-alpha schema prefix ("public.foo" ->
// "foo") but leaves numeric-looking dotted text (e.g. array dimensions)
// alone, per spec §4.3.
func stripSchemaQualifier(t string) string {
	idx := strings.IndexByte(t, '.')
	if idx <= 0 {
		return t
	}
	prefix := t[:idx]
	for _, r := range prefix {
		if !(r >= 'a' && r <= 'z' || r == '_') {
			return t
		}
	}
	return t[idx+1:]
}

// rewriteTimeWithZone handles "timestamp[(p)] with time zone" and
// "time[(p)] with time zone" -> "timestamptz[(p)]" / "timetz[(p)]".
func rewriteTimeWithZone(t, base string) (string, bool) {
	if !strings.HasPrefix(t, base) {
		return "", false
	}
	rest := t[len(base):]

	var precision string
	if strings.HasPrefix(rest, "(") {
		end := strings.IndexByte(rest, ')')
		if end < 0 {
			return "", false
		}
		precision = rest[:end+1]
		rest = rest[end+1:]
	}
	rest = strings.TrimSpace(rest)
	if rest != "with time zone" {
		return "", false
	}
	tzName := base + "tz"
	return tzName + precision, true
}

// dropWithoutTimeZoneKeepingPrecision strips a trailing "without time zone"
// even when precision intervenes, e.g. "timestamp(3) without time zone".
func dropWithoutTimeZoneKeepingPrecision(t string) string {
	const suffix = "without time zone"
	if strings.HasSuffix(t, suffix) {
		return strings.TrimSpace(strings.TrimSuffix(t, suffix))
	}
	return t
}

// splitAliasLookup applies typeAliases to the base type name, preserving
// any "(...)" precision or "[]" array suffix found after it.
func splitAliasLookup(t string) (string, bool) {
	base, suffix := splitTypeSuffix(t)
	canonical, ok := typeAliases[base]
	if !ok {
		return "", false
	}
	return canonical + suffix, true
}

// splitTypeSuffix separates a type name's base identifier from any trailing
// "(...)" precision and/or "[]" array markers.
func splitTypeSuffix(t string) (base, suffix string) {
	i := strings.IndexAny(t, "([")
	if i < 0 {
		return t, ""
	}
	return strings.TrimSpace(t[:i]), t[i:]
}

// EqualTypes reports whether two type spellings are equivalent under
// spec §4.3's canonicalization, or byte-identical when normalize is false.
func EqualTypes(a, b string, normalize bool) bool {
	if !normalize {
		return a == b
	}
	return CanonicalTypeName(a) == CanonicalTypeName(b)
}

// EqualNames reports name equality per spec §4.3: case-insensitive unless
// caseSensitive is set.
func EqualNames(a, b string, caseSensitive bool) bool {
	if caseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}

// CanonicalExpr implements spec §4.3's expression-equality normalization:
// truncate at the first "::" cast marker, then optionally strip all
// whitespace.
func CanonicalExpr(expr string, stripWhitespace bool) string {
	if idx := strings.Index(expr, "::"); idx >= 0 {
		expr = expr[:idx]
	}
	if stripWhitespace {
		var b strings.Builder
		b.Grow(len(expr))
		for _, r := range expr {
			if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
				continue
			}
			b.WriteRune(r)
		}
		return b.String()
	}
	return strings.TrimSpace(expr)
}

// EqualExprs reports whether two default/check/generated expressions are
// equivalent under spec §4.3's cast-stripping rule.
func EqualExprs(a, b string, stripWhitespace bool) bool {
	return CanonicalExpr(a, stripWhitespace) == CanonicalExpr(b, stripWhitespace)
}
