// Package migrations embeds SQL migration files into the binary.
//
// The registry can migrate its SQLite store without the SQL files present on
// the filesystem; they are compiled into the executable.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed *.sql
var files embed.FS

// FS returns the embedded migrations with the .sql files at its root.
func FS() fs.FS {
	return files
}
