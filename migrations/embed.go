// Package migrations holds the SQL schema migrations of the database.
package migrations

import "embed"

// FS contains every *.sql migration, applied by cmd/migrate and the
// integration tests
//
//go:embed *.sql
var FS embed.FS
