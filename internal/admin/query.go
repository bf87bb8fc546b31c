// AngelaMos | 2026
// query.go

package admin

import (
	"regexp"
	"strings"

	"github.com/carterperez-dev/medassist/internal/core"
)

var (
	writeKeyword = regexp.MustCompile(`(?i)\b(INSERT|UPDATE|DELETE|UPSERT|MERGE|DROP|ALTER|CREATE|TRUNCATE|RENAME|ATTACH|DETACH|PRAGMA|VACUUM|REINDEX|ANALYZE|GRANT|REVOKE|CALL|EXECUTE|INTO|LOCK)\b`)

	// quoted matches string literals and quoted identifiers, doubled quotes
	// included.
	quoted = regexp.MustCompile(`'(?:[^']|'')*'|"(?:[^"]|"")*"`)
)

// CheckReadStatement accepts a single SELECT statement and returns it
// without trailing semicolons. Quoted text is skipped when looking for a
// second statement or a write keyword.
func CheckReadStatement(query string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", core.ValidationError("query is required")
	}

	if !strings.HasPrefix(strings.ToUpper(q), "SELECT") {
		return "", core.ValidationError("only SELECT queries are allowed")
	}

	q = strings.TrimSpace(strings.TrimRight(q, "; \t\r\n"))
	code := quoted.ReplaceAllString(q, "''")

	if strings.Contains(code, ";") {
		return "", core.ValidationError("multiple statements are not allowed")
	}

	if kw := writeKeyword.FindString(code); kw != "" {
		return "", core.ValidationError(
			"statement contains a forbidden keyword: " + strings.ToUpper(kw))
	}

	return q, nil
}
