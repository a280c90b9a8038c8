package sqlite

import (
	"strings"

	"github.com/leapstack-labs/leapsqlite/pkg/core"
)

// Classify returns the kind of a statement from its leading keyword.
// Leading whitespace and comments are skipped; keywords are case-insensitive.
func Classify(sql string) core.StatementKind {
	word, rest := nextKeyword(sql)
	switch word {
	case "SELECT", "WITH", "VALUES", "EXPLAIN":
		return core.StatementSelect
	case "PRAGMA":
		return core.StatementPragma
	case "INSERT", "REPLACE":
		return core.StatementInsert
	case "UPDATE":
		return core.StatementUpdate
	case "DELETE":
		return core.StatementDelete
	case "CREATE":
		next, rest := nextKeyword(rest)
		if next == "TEMP" || next == "TEMPORARY" {
			next, _ = nextKeyword(rest)
		}
		if next == "TABLE" {
			return core.StatementCreateTable
		}
	case "DROP":
		if next, _ := nextKeyword(rest); next == "TABLE" {
			return core.StatementDropTable
		}
	}
	return core.StatementUnknown
}

// nextKeyword returns the next upper-cased word of s and the text after it.
func nextKeyword(s string) (string, string) {
	s = skipSpaceAndComments(s)
	end := 0
	for end < len(s) && isWordByte(s[end]) {
		end++
	}
	return strings.ToUpper(s[:end]), s[end:]
}

func skipSpaceAndComments(s string) string {
	for {
		s = strings.TrimLeft(s, " \t\r\n\f\v")
		switch {
		case strings.HasPrefix(s, "--"):
			i := strings.IndexByte(s, '\n')
			if i < 0 {
				return ""
			}
			s = s[i+1:]
		case strings.HasPrefix(s, "/*"):
			i := strings.Index(s[2:], "*/")
			if i < 0 {
				return ""
			}
			s = s[i+4:]
		default:
			return s
		}
	}
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
