// Package migrations holds the versioned schema for each supported dialect.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS

// SQLite returns the SQLite migrations.
func SQLite() fs.FS {
	sub, err := fs.Sub(FS, "sqlite")
	if err != nil {
		panic(err)
	}
	return sub
}

// Postgres returns the PostgreSQL migrations.
func Postgres() fs.FS {
	sub, err := fs.Sub(FS, "postgres")
	if err != nil {
		panic(err)
	}
	return sub
}
