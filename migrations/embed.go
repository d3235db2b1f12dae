// Package migrations holds the SQL schema of the libsql record store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
