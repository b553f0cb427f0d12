package sql

import (
	"strings"

	"github.com/strataql/strata/dialect"
)

// Metadata is the read-only identifier-quoting configuration of a
// dialect: its reserved keywords, its quote string, and any extra
// characters it allows in bare identifiers. The formatter consults it on
// every identifier and never mutates it, so a single Metadata value may
// be shared by any number of concurrent formatting passes.
type Metadata struct {
	// Keywords is the reserved-word set, keyed by uppercase spelling.
	Keywords map[string]bool
	// Quote is the string identifiers are wrapped in when quoting is
	// required. Occurrences of Quote inside a name are doubled.
	Quote string
	// ExtraNameChars lists characters beyond letters, digits and
	// underscore that may appear in a bare identifier.
	ExtraNameChars string
}

// quoteName wraps name in the metadata quote string, doubling any
// embedded quote characters.
func (m Metadata) quoteName(name string) string {
	if strings.Contains(name, m.Quote) {
		name = strings.ReplaceAll(name, m.Quote, m.Quote+m.Quote)
	}
	return m.Quote + name + m.Quote
}

// mustQuote reports whether name cannot be emitted bare: either its
// uppercase form is a reserved keyword, or it fails the bare-identifier
// shape (first char letter/underscore/extra, rest additionally digits).
func (m Metadata) mustQuote(name string) bool {
	if name == "" {
		return true
	}
	if m.Keywords[strings.ToUpper(name)] {
		return true
	}
	for i, r := range name {
		switch {
		case r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z'):
		case '0' <= r && r <= '9':
			if i == 0 {
				return true
			}
		case strings.ContainsRune(m.ExtraNameChars, r):
		default:
			return true
		}
	}
	return false
}

// keywordSet builds an uppercase-keyed set from the given words.
func keywordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToUpper(w)] = true
	}
	return set
}

// ansiKeywords is the reserved-word core shared by all supported
// dialects. Dialect sets extend it with product-specific words.
var ansiKeywords = []string{
	"all", "and", "any", "as", "asc", "between", "by", "case", "cast",
	"check", "collate", "column", "constraint", "create", "cross",
	"current_date", "current_time", "current_timestamp", "default",
	"delete", "desc", "distinct", "drop", "else", "end", "escape",
	"except", "exists", "foreign", "from", "full", "group", "having",
	"in", "inner", "insert", "intersect", "into", "is", "join", "key",
	"left", "like", "limit", "not", "null", "offset", "on", "or",
	"order", "outer", "primary", "references", "right", "select", "set",
	"table", "then", "to", "union", "unique", "update", "using",
	"values", "when", "where", "with",
}

var (
	standardMetadata = Metadata{
		Keywords: keywordSet(ansiKeywords...),
		Quote:    `"`,
	}
	mysqlMetadata = Metadata{
		Keywords: keywordSet(append(ansiKeywords,
			"accessible", "analyze", "change", "databases", "div",
			"dual", "explain", "force", "fulltext", "ignore", "index",
			"infile", "interval", "keys", "kill", "lock", "lines",
			"load", "match", "optimize", "partition", "purge", "rename",
			"replace", "require", "rlike", "schema", "schemas",
			"separator", "show", "straight_join", "terminated",
			"unlock", "usage", "use", "zerofill",
		)...),
		Quote:          "`",
		ExtraNameChars: "$",
	}
	postgresMetadata = Metadata{
		Keywords: keywordSet(append(ansiKeywords,
			"analyse", "analyze", "array", "asymmetric", "both",
			"concurrently", "deferrable", "do", "fetch", "freeze",
			"grant", "ilike", "initially", "isnull", "lateral",
			"leading", "localtime", "localtimestamp", "notnull", "only",
			"overlaps", "placing", "returning", "session_user",
			"similar", "some", "symmetric", "trailing", "user",
			"variadic", "verbose", "window",
		)...),
		Quote:          `"`,
		ExtraNameChars: "$",
	}
	sqliteMetadata = Metadata{
		Keywords: keywordSet(append(ansiKeywords,
			"abort", "attach", "autoincrement", "conflict", "detach",
			"exclusive", "glob", "if", "indexed", "instead", "isnull",
			"notnull", "plan", "pragma", "query", "raise", "regexp",
			"reindex", "returning", "rowid", "temp", "temporary",
			"transaction", "vacuum", "virtual", "without",
		)...),
		Quote:          `"`,
		ExtraNameChars: "$",
	}
)

// MetadataFor returns the identifier metadata of the named dialect.
// Unknown names fall back to the standard (ANSI) metadata.
func MetadataFor(name string) Metadata {
	switch name {
	case dialect.MySQL:
		return mysqlMetadata
	case dialect.Postgres:
		return postgresMetadata
	case dialect.SQLite:
		return sqliteMetadata
	default:
		return standardMetadata
	}
}
