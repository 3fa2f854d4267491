package sqlstore

import (
	"strings"

	"github.com/Masterminds/squirrel"
)

// Dialect captures what differs between the supported databases.
type Dialect struct {
	Name        string
	Placeholder squirrel.PlaceholderFormat
	// ILike is set when the database has a native case-insensitive LIKE.
	ILike bool
}

var (
	SQLite   = Dialect{Name: "sqlite", Placeholder: squirrel.Question}
	Postgres = Dialect{Name: "postgres", Placeholder: squirrel.Dollar, ILike: true}
)

// contains matches rows where any of columns holds query, ignoring case.
// NULL columns never match.
func (d Dialect) contains(query string, columns ...string) squirrel.Sqlizer {
	or := make(squirrel.Or, 0, len(columns))
	for _, col := range columns {
		col = "COALESCE(" + col + ", '')"
		if d.ILike {
			or = append(or, squirrel.ILike{col: "%" + query + "%"})
		} else {
			or = append(or, squirrel.Like{"LOWER(" + col + ")": "%" + strings.ToLower(query) + "%"})
		}
	}
	return or
}
