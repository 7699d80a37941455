package lexer

import "sort"

// keywords is the fixed, closed set of PostgreSQL DDL keywords this lexer
// recognizes (spec §4.1). Recognition is case-insensitive: lookups
// lowercase the candidate lexeme first. init sorts it so isKeyword can
// binary search it.
var keywords = []string{
	"action", "always", "as", "by", "cache", "cascade", "check", "collate",
	"column", "commit", "compression", "constraint", "create", "cycle",
	"default", "deferrable", "deferred", "delete", "distinct", "drop", "enforced",
	"exclude", "excluding", "exists", "for", "foreign", "from", "full", "generated",
	"global", "hash", "identity", "if", "immediate", "include", "including",
	"increment", "index", "inherit", "inherits", "initially", "key", "like", "list",
	"local", "match", "maxvalue", "minvalue", "no", "not", "null", "nulls",
	"of", "oids", "on", "overlaps", "owned", "partial", "partition", "period",
	"preserve", "primary", "range", "references", "restrict", "rows", "set",
	"simple", "start", "statistics", "stored", "storage", "table",
	"tablespace", "temp", "temporary", "to", "unique", "unlogged", "update",
	"using", "values", "virtual", "where", "with", "without",
}

func init() {
	sort.Strings(keywords)
}

// isKeyword reports whether lowered (already lowercased) is a recognized
// keyword via binary search over the sorted table.
func isKeyword(lowered string) bool {
	i := sort.SearchStrings(keywords, lowered)
	return i < len(keywords) && keywords[i] == lowered
}
