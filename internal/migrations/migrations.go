// Package migrations embeds the versioned SQL migrations applied by goose at
// startup. Migrations are ordered and the applied version is persisted in the
// database itself, so re-running the set is always a no-op.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
