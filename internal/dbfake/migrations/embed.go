// Package migrations embeds the fake database server's Postgres schema,
// applied via golang-migrate (internal/dbfake/migrate.go), the same
// iofs-embed pattern the teacher uses for its control-plane Postgres store.
package migrations

import "embed"

// FS holds the embedded .up.sql/.down.sql migration files.
//
//go:embed *.sql
var FS embed.FS
