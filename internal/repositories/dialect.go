package repositories

import (
	"errors"
	"strconv"
	"strings"

	"github.com/lib/pq" // For pq.Error
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// dialect captures what differs between the SQL backends. Queries are written
// with PostgreSQL placeholders ($1, $2, ...) and rebound when needed.
type dialect struct {
	name              string
	positional        bool // "?" placeholders instead of "$n"
	dateExpr          func(column string) string
	uniqueViolation   func(err error) bool
	foreignKeyFailure func(err error) bool
}

var postgresDialect = dialect{
	name: "postgres",
	dateExpr: func(column string) string {
		return "to_char(" + column + ", 'YYYY-MM-DD')"
	},
	uniqueViolation: func(err error) bool {
		var pqErr *pq.Error
		return errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation"
	},
	foreignKeyFailure: func(err error) bool {
		var pqErr *pq.Error
		return errors.As(err, &pqErr) && pqErr.Code == "23503" // foreign_key_violation
	},
}

var sqliteDialect = dialect{
	name:       "sqlite",
	positional: true,
	dateExpr:   func(column string) string { return column },
	uniqueViolation: func(err error) bool {
		var sqErr *sqlite.Error
		if !errors.As(err, &sqErr) {
			return false
		}
		code := sqErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	},
	foreignKeyFailure: func(err error) bool {
		var sqErr *sqlite.Error
		return errors.As(err, &sqErr) && sqErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	},
}

// rebind turns "$n" placeholders into "?" for positional dialects.
// Placeholders must appear in ascending order, which all queries here do.
func (d dialect) rebind(query string) string {
	if !d.positional {
		return query
	}
	var b strings.Builder
	b.Grow(len(query))
	for i := 0; i < len(query); i++ {
		if query[i] == '$' && i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
			b.WriteByte('?')
			for i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
				i++
			}
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// placeholder renders the n-th bind parameter.
func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// likePattern builds a case-insensitive substring pattern, escaping LIKE
// metacharacters with a backslash (queries declare ESCAPE '\').
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(term)) + "%"
}
