// Package migrations embeds the schema files for the local SQLite store and
// the remote PostgreSQL store.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
